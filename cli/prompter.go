package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/slyguy/settings/engine/settings"
)

// FormPrompter asks for setting values with huh forms. Accessible mode
// swaps the TUI for line-based prompts, for pipes and screen readers.
type FormPrompter struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

var _ settings.Prompter = (*FormPrompter)(nil)

func NewFormPrompter(in io.Reader, out io.Writer, accessible bool) *FormPrompter {
	return &FormPrompter{in: in, out: out, accessible: accessible}
}

func (p *FormPrompter) Input(ctx context.Context, title, current string) (string, bool, error) {
	value := current
	ok, err := p.run(ctx, huh.NewInput().Title(title).Value(&value))
	if err != nil || !ok {
		return "", false, err
	}
	return value, true, nil
}

func (p *FormPrompter) Numeric(ctx context.Context, title string, current int) (float64, bool, error) {
	text := strconv.Itoa(current)
	field := huh.NewInput().
		Title(title).
		Value(&text).
		Validate(func(s string) error {
			if _, err := parseNumber(s); err != nil {
				return errors.New("enter a number")
			}
			return nil
		})
	ok, err := p.run(ctx, field)
	if err != nil || !ok {
		return 0, false, err
	}
	n, err := parseNumber(text)
	if err != nil {
		return 0, false, fmt.Errorf("invalid number %q: %w", text, err)
	}
	return n, true, nil
}

// parseNumber accepts finite decimal numbers only.
func parseNumber(text string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errors.New("not a finite number")
	}
	return n, nil
}

func (p *FormPrompter) Select(ctx context.Context, title string, options []string, preselect int) (int, bool, error) {
	opts := make([]huh.Option[int], len(options))
	for i, label := range options {
		opts[i] = huh.NewOption(label, i)
	}
	selected := preselect
	ok, err := p.run(ctx, huh.NewSelect[int]().Title(title).Options(opts...).Value(&selected))
	if err != nil || !ok {
		return -1, false, err
	}
	return selected, true, nil
}

func (p *FormPrompter) Confirm(ctx context.Context, title, message string) (bool, error) {
	var confirmed bool
	ok, err := p.run(ctx, huh.NewConfirm().Title(title).Description(message).Value(&confirmed))
	if err != nil || !ok {
		return false, err
	}
	return confirmed, nil
}

func (p *FormPrompter) Notify(_ context.Context, message string) error {
	_, err := fmt.Fprintln(p.out, message)
	return err
}

// run shows a single-field form. A user abort is reported as ok=false.
func (p *FormPrompter) run(ctx context.Context, field huh.Field) (bool, error) {
	form := huh.NewForm(huh.NewGroup(field)).
		WithInput(p.in).
		WithOutput(p.out).
		WithAccessible(p.accessible)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return true, nil
}
