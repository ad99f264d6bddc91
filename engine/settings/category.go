package settings

import (
	"context"
	"slices"
)

// CategoryID indexes a category in its registry.
type CategoryID int

// Standard categories, created by every Registry in this order.
const (
	CategoryRoot CategoryID = iota
	CategoryAddon
	CategoryPlayer
	CategoryQuality
	CategoryCodecs
	CategoryLanguage
	CategoryAdvanced
	CategoryNetwork
	CategoryInterface
	CategoryPVRLiveTV
	CategorySystem
)

// Node is an entry of the category tree: a *Category or a *Setting.
type Node interface {
	IsVisible(ctx context.Context) bool
}

// Category groups settings and subcategories for display.
type Category struct {
	id       CategoryID
	label    string
	parent   *Category
	children []Node
	reg      *Registry
}

func (c *Category) ID() CategoryID { return c.id }

// Parent is nil for the root.
func (c *Category) Parent() *Category { return c.parent }

// Title is the translated label.
func (c *Category) Title() string {
	return c.reg.text(c.label)
}

// Children returns every child in declaration order.
func (c *Category) Children() []Node {
	c.reg.mu.RLock()
	defer c.reg.mu.RUnlock()
	return slices.Clone(c.children)
}

// VisibleChildren returns the visible children in declaration order.
func (c *Category) VisibleChildren(ctx context.Context) []Node {
	children := c.Children()
	visible := children[:0]
	for _, child := range children {
		if child.IsVisible(ctx) {
			visible = append(visible, child)
		}
	}
	return visible
}

// IsVisible reports whether anything under the category is visible.
func (c *Category) IsVisible(ctx context.Context) bool {
	for _, child := range c.Children() {
		if child.IsVisible(ctx) {
			return true
		}
	}
	return false
}

// Settings returns the visible settings directly under c, those owned by the
// active namespace first.
func (c *Category) Settings(ctx context.Context) []*Setting {
	var out []*Setting
	for _, child := range c.VisibleChildren(ctx) {
		if s, ok := child.(*Setting); ok {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b *Setting) int {
		return rank(c.reg.isActive(a)) - rank(c.reg.isActive(b))
	})
	return out
}

// Categories returns the visible subcategories. Those whose visible settings
// all belong to other namespaces sort last.
func (c *Category) Categories(ctx context.Context) []*Category {
	var out []*Category
	foreign := make(map[*Category]bool)
	for _, child := range c.VisibleChildren(ctx) {
		sub, ok := child.(*Category)
		if !ok {
			continue
		}
		out = append(out, sub)
		foreign[sub] = sub.entirelyForeign(ctx)
	}
	slices.SortStableFunc(out, func(a, b *Category) int {
		return rank(!foreign[a]) - rank(!foreign[b])
	})
	return out
}

func (c *Category) entirelyForeign(ctx context.Context) bool {
	settings := c.Settings(ctx)
	if len(settings) == 0 {
		return false
	}
	for _, s := range settings {
		if c.reg.isActive(s) {
			return false
		}
	}
	return true
}

func (c *Category) add(n Node) {
	c.children = append(c.children, n)
}

// rank orders preferred entries first.
func rank(preferred bool) int {
	if preferred {
		return 0
	}
	return 1
}
