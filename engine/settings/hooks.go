package settings

import "context"

// Hooks observe value changes of one setting.
type Hooks interface {
	// BeforeChange runs before a write. Returning false drops the write silently.
	BeforeChange(ctx context.Context, s *Setting, value any) bool
	// AfterChange runs after a successful write.
	AfterChange(ctx context.Context, s *Setting, value any)
	// AfterClear runs after the stored value is deleted.
	AfterClear(ctx context.Context, s *Setting)
}

// NopHooks accepts every change and does nothing. Embed it to implement
// only some of the Hooks methods.
type NopHooks struct{}

func (NopHooks) BeforeChange(context.Context, *Setting, any) bool { return true }
func (NopHooks) AfterChange(context.Context, *Setting, any)       {}
func (NopHooks) AfterClear(context.Context, *Setting)             {}

// HookFuncs adapts plain functions to Hooks. Nil fields are no-ops.
type HookFuncs struct {
	Before  func(ctx context.Context, s *Setting, value any) bool
	After   func(ctx context.Context, s *Setting, value any)
	Cleared func(ctx context.Context, s *Setting)
}

func (h HookFuncs) BeforeChange(ctx context.Context, s *Setting, value any) bool {
	if h.Before == nil {
		return true
	}
	return h.Before(ctx, s, value)
}

func (h HookFuncs) AfterChange(ctx context.Context, s *Setting, value any) {
	if h.After != nil {
		h.After(ctx, s, value)
	}
}

func (h HookFuncs) AfterClear(ctx context.Context, s *Setting) {
	if h.Cleared != nil {
		h.Cleared(ctx, s)
	}
}
