package settings

// Option configures a Setting before it is declared.
type Option func(*Setting)

// WithLabel sets the symbolic label name. The name is translated when the
// setting is declared.
func WithLabel(label string) Option {
	return func(s *Setting) { s.label = label }
}

// WithOwner sets the declared owner namespace. Settings without one belong to
// the active namespace.
func WithOwner(owner string) Option {
	return func(s *Setting) { s.owner = owner }
}

func WithDefault(v any) Option {
	return func(s *Setting) { s.def = v }
}

// WithDefaultLabel replaces the value label while the value equals the default.
func WithDefaultLabel(label string) Option {
	return func(s *Setting) { s.defaultLabel = label }
}

func WithDescription(description string) Option {
	return func(s *Setting) { s.description = description }
}

func WithVisible(p Predicate) Option {
	return func(s *Setting) { s.visible = p }
}

func WithEnable(p Predicate) Option {
	return func(s *Setting) { s.enable = p }
}

// WithDisabledValue sets the value reported while the setting is disabled.
// A nil value reports the stored value instead.
func WithDisabledValue(v any) Option {
	return func(s *Setting) {
		s.disabledValue = v
		s.disabledSet = true
	}
}

func WithDisabledReason(reason string) Option {
	return func(s *Setting) { s.disabledReason = reason }
}

// WithOverride controls whether values are stored under the active namespace
// (true, the default) or under the declared owner.
func WithOverride(override bool) Option {
	return func(s *Setting) { s.override = override }
}

// WithInherit controls whether a missing value falls back to the common namespace.
func WithInherit(inherit bool) Option {
	return func(s *Setting) { s.inherit = inherit }
}

func WithConfirmClear() Option {
	return func(s *Setting) { s.confirmClear = true }
}

// WithLegacyIDs adds identifiers the setting answers to besides its id.
func WithLegacyIDs(ids ...string) Option {
	return func(s *Setting) { s.legacyIDs = append(s.legacyIDs, ids...) }
}

// WithValueFormat sets the display template, for example "{{ .value }} days".
func WithValueFormat(format string) Option {
	return func(s *Setting) { s.valueFormat = format }
}

// WithPrivateValue masks the value in labels.
func WithPrivateValue() Option {
	return func(s *Setting) { s.private = true }
}

func WithCategory(id CategoryID) Option {
	return func(s *Setting) {
		s.category = id
		s.hasCategory = true
	}
}

func WithHooks(h Hooks) Option {
	return func(s *Setting) { s.hooks = h }
}

// WithLimits clamps Number input to [lower, upper].
func WithLimits(lower, upper int) Option {
	return func(s *Setting) {
		s.lower = &lower
		s.upper = &upper
	}
}

func WithLowerLimit(lower int) Option {
	return func(s *Setting) { s.lower = &lower }
}

func WithUpperLimit(upper int) Option {
	return func(s *Setting) { s.upper = &upper }
}

// WithLoop makes selecting an Enum advance to the next option instead of
// opening a picker.
func WithLoop() Option {
	return func(s *Setting) { s.loop = true }
}
