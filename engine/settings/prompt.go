package settings

import "context"

// Prompter asks the user for a new value. Every method reports ok=false when
// the user dismissed the prompt; that is never an error and changes nothing.
type Prompter interface {
	Input(ctx context.Context, title, current string) (value string, ok bool, err error)
	Numeric(ctx context.Context, title string, current int) (value float64, ok bool, err error)
	Select(ctx context.Context, title string, options []string, preselect int) (index int, ok bool, err error)
	Confirm(ctx context.Context, title, message string) (bool, error)
	Notify(ctx context.Context, message string) error
}

// Host executes platform commands returned by actions.
type Host interface {
	Execute(ctx context.Context, command string) error
}

// ActionFunc is the side effect behind an Action setting. A non-empty
// command is handed to the Host.
type ActionFunc func(ctx context.Context) (command string, err error)
