package settings

import (
	"context"
	"fmt"

	"github.com/slyguy/settings/pkg/logger"
	"github.com/slyguy/settings/pkg/tplengine"
)

const privateMask = "********"

// Style is the emphasis a renderer should give a label.
type Style int

const (
	StyleNormal Style = iota
	// StyleDim marks disabled settings.
	StyleDim
	// StyleEmphasized marks settings holding a clearable value.
	StyleEmphasized
)

// Label is the display line of a setting.
type Label struct {
	Title  string
	Value  string
	Suffix string
	Style  Style
	Action bool
}

// Inherited reports whether the value comes from the common namespace.
func (l Label) Inherited() bool {
	return l.Suffix != ""
}

func (l Label) String() string {
	if l.Action {
		return l.Title
	}
	text := l.Title + ": " + l.Value
	if l.Suffix != "" {
		text += " " + l.Suffix
	}
	return text
}

// Label renders the setting for display.
func (s *Setting) Label(ctx context.Context) Label {
	enabled := s.IsEnabled(ctx)
	l := Label{Title: s.Title()}
	if s.kind == KindAction {
		l.Action = true
		if !enabled {
			l.Style = StyleDim
		}
		return l
	}
	l.Value = s.ValueLabel(ctx)
	switch {
	case !enabled:
		l.Style = StyleDim
	case s.CanClear(ctx):
		l.Style = StyleEmphasized
	}
	if s.reg != nil && s.reg.active != s.reg.common {
		if owner, _, _ := s.ValueOwner(ctx); owner == s.reg.common {
			l.Suffix = s.translate("INHERITED_SETTING")
		}
	}
	return l
}

// ValueLabel renders the effective value.
func (s *Setting) ValueLabel(ctx context.Context) string {
	value := s.Value(ctx)
	if s.defaultLabel != "" && valuesEqual(value, s.def) {
		return s.translate(s.defaultLabel)
	}
	text, empty := s.formatValue(ctx, value)
	if s.private && !empty {
		return privateMask
	}
	return text
}

func (s *Setting) formatValue(ctx context.Context, value any) (text string, empty bool) {
	switch s.kind {
	case KindBool:
		if b, _ := value.(bool); b {
			return s.translate("YES"), false
		}
		return s.translate("NO"), false
	case KindEnum:
		if i := s.choiceIndex(value); i >= 0 {
			return s.translate(s.choices[i].Label), false
		}
	}
	if value == nil || value == "" {
		return s.translate("NO_VALUE"), true
	}
	format := s.valueFormat
	if format == "" {
		format = tplengine.DefaultValueFormat
	}
	if s.reg != nil {
		if tmpl, err := s.reg.formats.Get(format); err == nil {
			out, err := tmpl.RenderValue(value)
			if err == nil {
				return out, false
			}
			logger.FromContext(ctx).Warn("Failed to format value", "id", s.id, "error", err)
		}
	}
	return fmt.Sprint(value), false
}
