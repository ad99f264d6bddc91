package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/slyguy/settings/engine/settings"
)

// renderer prints labels, styled when writing to a terminal.
type renderer struct {
	out    io.Writer
	styled bool

	heading    lipgloss.Style
	dim        lipgloss.Style
	emphasized lipgloss.Style
	suffix     lipgloss.Style
	action     lipgloss.Style
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{
		out:        out,
		styled:     isTerminal(out),
		heading:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		dim:        lipgloss.NewStyle().Faint(true),
		emphasized: lipgloss.NewStyle().Bold(true),
		suffix:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#888888")),
		action:     lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *renderer) label(l settings.Label) string {
	if !r.styled {
		return l.String()
	}
	if l.Action {
		if l.Style == settings.StyleDim {
			return r.dim.Render(l.Title)
		}
		return r.action.Render(l.Title)
	}
	text := l.Title + ": " + l.Value
	switch l.Style {
	case settings.StyleDim:
		text = r.dim.Render(text)
	case settings.StyleEmphasized:
		text = r.emphasized.Render(text)
	}
	if l.Suffix != "" {
		text += " " + r.suffix.Render(l.Suffix)
	}
	return text
}

func (r *renderer) title(text string) string {
	if !r.styled {
		return text
	}
	return r.heading.Render(text)
}

func (r *renderer) println(text string) {
	fmt.Fprintln(r.out, text)
}

// tree prints the visible part of c, settings before subcategories.
func (r *renderer) tree(ctx context.Context, c *settings.Category, depth int) {
	indent := strings.Repeat("  ", depth)
	r.println(indent + r.title(c.Title()))
	for _, s := range c.Settings(ctx) {
		r.println(fmt.Sprintf("%s  [%s] %s", indent, s.ID(), r.label(s.Label(ctx))))
	}
	for _, sub := range c.Categories(ctx) {
		r.tree(ctx, sub, depth+1)
	}
}
