package settings

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/slyguy/settings/pkg/logger"
)

// Setting is one typed, ownership-aware configuration value. Settings are
// built with the kind constructors and become usable once declared in a
// Registry.
type Setting struct {
	id    string
	name  string
	label string
	kind  Kind

	owner        string
	def          any
	defaultLabel string
	description  string

	visible        Predicate
	enable         Predicate
	disabledValue  any
	disabledSet    bool
	disabledReason string

	override     bool
	inherit      bool
	confirmClear bool
	legacyIDs    []string
	valueFormat  string
	private      bool
	category     CategoryID
	hasCategory  bool
	hooks        Hooks

	lower   *int
	upper   *int
	choices []Choice
	loop    bool
	action  ActionFunc

	reg *Registry
}

func newSetting(kind Kind, id string, def any, opts []Option) *Setting {
	s := &Setting{
		id:       id,
		kind:     kind,
		def:      def,
		override: true,
		inherit:  true,
		hooks:    NopHooks{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if !s.disabledSet {
		s.disabledValue = s.def
	}
	if s.hooks == nil {
		s.hooks = NopHooks{}
	}
	return s
}

// Bool is a toggle. It defaults to false.
func Bool(id string, opts ...Option) *Setting {
	return newSetting(KindBool, id, false, opts)
}

// Text is free-form input. Empty input leaves the value unchanged.
func Text(id string, opts ...Option) *Setting {
	return newSetting(KindText, id, "", opts)
}

// Number is an integer, clamped to its limits on input.
func Number(id string, opts ...Option) *Setting {
	return newSetting(KindNumber, id, 0, opts)
}

// Enum picks one of choices. It defaults to the first choice.
func Enum(id string, choices []Choice, opts ...Option) *Setting {
	var def any
	if len(choices) > 0 {
		def = choices[0].Value
	}
	s := newSetting(KindEnum, id, def, opts)
	s.choices = append([]Choice(nil), choices...)
	return s
}

// Dict holds arbitrary JSON data. It is never prompted for.
func Dict(id string, opts ...Option) *Setting {
	return newSetting(KindDict, id, map[string]any{}, opts)
}

// Action runs fn when selected and stores nothing. Its id is assigned on
// declaration.
func Action(fn ActionFunc, opts ...Option) *Setting {
	s := newSetting(KindAction, "", nil, opts)
	s.action = fn
	s.disabledValue = nil
	return s
}

func (s *Setting) ID() string   { return s.id }
func (s *Setting) Name() string { return s.name }
func (s *Setting) Kind() Kind   { return s.kind }
func (s *Setting) Default() any { return s.def }

func (s *Setting) LegacyIDs() []string {
	return append([]string(nil), s.legacyIDs...)
}

// Title is the translated label text.
func (s *Setting) Title() string {
	if s.reg == nil {
		return s.label
	}
	return s.reg.text(s.label)
}

// Choices returns the options of an Enum.
func (s *Setting) Choices() []Choice {
	return append([]Choice(nil), s.choices...)
}

// Limits returns the Number bounds; nil means unbounded.
func (s *Setting) Limits() (lower, upper *int) {
	return s.lower, s.upper
}

func (s *Setting) Category() CategoryID {
	return s.category
}

// IsPrivate reports whether the value must be masked in labels and output.
func (s *Setting) IsPrivate() bool {
	return s.private
}

// DeclaredOwner is the namespace the setting was declared for.
func (s *Setting) DeclaredOwner() string {
	return s.owner
}

// Owner is the namespace writes go to.
func (s *Setting) Owner() string {
	if s.override && s.reg != nil {
		return s.reg.active
	}
	return s.owner
}

// MatchesID reports whether key names this setting, ignoring case. The id
// prefixed with an underscore also matches.
func (s *Setting) MatchesID(key string) bool {
	if strings.EqualFold(s.id, key) || strings.EqualFold("_"+s.id, key) {
		return true
	}
	for _, legacy := range s.legacyIDs {
		if strings.EqualFold(legacy, key) {
			return true
		}
	}
	return false
}

func (s *Setting) IsVisible(ctx context.Context) bool {
	return s.visible.eval(ctx, s.conditions())
}

func (s *Setting) IsEnabled(ctx context.Context) bool {
	return s.enable.eval(ctx, s.conditions())
}

// Description is the help text, or the disabled reason while disabled.
func (s *Setting) Description(ctx context.Context) string {
	if s.disabledReason != "" && !s.IsEnabled(ctx) {
		return s.translate(s.disabledReason)
	}
	return s.translate(s.description)
}

// ValueOwner resolves the current value and the namespace it came from.
// found is false when nothing is stored; owner is then the declared owner.
func (s *Setting) ValueOwner(ctx context.Context) (owner string, value any, found bool) {
	if s.reg == nil || s.kind == KindAction {
		return s.owner, nil, false
	}
	if s.disabledValue != nil && !s.IsEnabled(ctx) {
		return s.owner, s.disabledValue, true
	}
	res := s.reg.storage.Get(ctx, s.Owner(), s.id, s.inherit)
	raw, ok := res.Value()
	if !ok {
		return s.owner, nil, false
	}
	v, err := s.normalize(raw)
	if err != nil {
		logger.FromContext(ctx).Warn("Ignoring stored value", "id", s.id, "owner", res.Owner(), "error", err)
		return s.owner, nil, false
	}
	return res.Owner(), v, true
}

// Value is the effective value: the disabled value, the stored value or the
// default, in that order.
func (s *Setting) Value(ctx context.Context) any {
	_, v, found := s.ValueOwner(ctx)
	if !found {
		return s.def
	}
	return v
}

func (s *Setting) IsDefault(ctx context.Context) bool {
	return valuesEqual(s.Value(ctx), s.def)
}

// SetValue validates v and stores it under Owner. A BeforeChange hook may
// drop the write.
func (s *Setting) SetValue(ctx context.Context, v any) error {
	if err := s.bound(); err != nil {
		return err
	}
	value, err := s.normalize(v)
	if err != nil {
		return err
	}
	if !s.hooks.BeforeChange(ctx, s, value) {
		logger.FromContext(ctx).Debug("Setting change rejected by hook", "id", s.id)
		return nil
	}
	if err := s.write(ctx, value); err != nil {
		return err
	}
	s.hooks.AfterChange(ctx, s, value)
	return nil
}

// Clear deletes the stored value under Owner.
func (s *Setting) Clear(ctx context.Context) error {
	if err := s.bound(); err != nil {
		return err
	}
	if s.kind == KindAction {
		return nil
	}
	if err := s.reg.storage.Delete(ctx, s.Owner(), s.id); err != nil {
		return fmt.Errorf("settings: clear %s: %w", s.id, err)
	}
	s.hooks.AfterClear(ctx, s)
	return nil
}

// CanClear reports whether clearing would remove a value the user can see
// and change.
func (s *Setting) CanClear(ctx context.Context) bool {
	if s.reg == nil || s.kind == KindAction {
		return false
	}
	owner, _, found := s.ValueOwner(ctx)
	if s.override && owner != s.reg.active {
		return false
	}
	if owner == s.owner && !found {
		return false
	}
	return s.IsEnabled(ctx) && s.IsVisible(ctx)
}

// CanBulkClear reports whether a reset-all pass may clear the setting
// without asking.
func (s *Setting) CanBulkClear(ctx context.Context) bool {
	return s.reg != nil && s.Owner() == s.reg.active && !s.confirmClear && s.CanClear(ctx)
}

// Select handles the user picking the setting and reports whether the
// resolved value changed.
func (s *Setting) Select(ctx context.Context, p Prompter) (bool, error) {
	if err := s.bound(); err != nil {
		return false, err
	}
	if !s.IsEnabled(ctx) {
		reason := s.disabledReason
		if reason == "" {
			reason = "DISABLED"
		}
		return false, p.Notify(ctx, s.translate(reason))
	}
	if !s.IsVisible(ctx) {
		return false, nil
	}
	if s.kind == KindAction {
		return true, s.run(ctx)
	}
	beforeOwner, before, beforeFound := s.ValueOwner(ctx)
	if err := s.prompt(ctx, p); err != nil {
		return false, err
	}
	afterOwner, after, afterFound := s.ValueOwner(ctx)
	return changed(beforeOwner, before, beforeFound, afterOwner, after, afterFound), nil
}

// OnClear clears the setting on user request, confirming first when
// configured, and reports whether the resolved value changed.
func (s *Setting) OnClear(ctx context.Context, p Prompter) (bool, error) {
	if !s.CanClear(ctx) {
		return false, nil
	}
	if s.confirmClear {
		ok, err := p.Confirm(ctx, s.translate("ARE_YOU_SURE"), s.translate("RESET_TO_DEFAULT"))
		if err != nil || !ok {
			return false, err
		}
	}
	beforeOwner, before, beforeFound := s.ValueOwner(ctx)
	if err := s.Clear(ctx); err != nil {
		return false, err
	}
	afterOwner, after, afterFound := s.ValueOwner(ctx)
	return changed(beforeOwner, before, beforeFound, afterOwner, after, afterFound), nil
}

func (s *Setting) prompt(ctx context.Context, p Prompter) error {
	switch s.kind {
	case KindBool:
		current, _ := s.Value(ctx).(bool)
		return s.SetValue(ctx, !current)
	case KindText:
		current, _ := s.Value(ctx).(string)
		input, ok, err := p.Input(ctx, s.Title(), current)
		if err != nil || !ok || input == "" {
			return err
		}
		return s.SetValue(ctx, input)
	case KindNumber:
		current, _ := toInt(s.Value(ctx))
		input, ok, err := p.Numeric(ctx, s.Title(), current)
		if err != nil || !ok {
			return err
		}
		n, ok := s.clamp(input)
		if !ok {
			return fmt.Errorf("%w: %s: %v is not a finite number", ErrInvalidValue, s.id, input)
		}
		return s.SetValue(ctx, n)
	case KindEnum:
		if len(s.choices) == 0 {
			return nil
		}
		current := s.choiceIndex(s.Value(ctx))
		if s.loop {
			return s.SetValue(ctx, s.choices[(current+1)%len(s.choices)].Value)
		}
		labels := make([]string, len(s.choices))
		for i, c := range s.choices {
			labels[i] = s.translate(c.Label)
		}
		index, ok, err := p.Select(ctx, s.Title(), labels, current)
		if err != nil || !ok || index < 0 || index >= len(s.choices) {
			return err
		}
		return s.SetValue(ctx, s.choices[index].Value)
	default:
		return nil
	}
}

func (s *Setting) run(ctx context.Context) error {
	if s.action == nil {
		return nil
	}
	command, err := s.action(ctx)
	if err != nil {
		return fmt.Errorf("settings: action %s: %w", s.id, err)
	}
	if command == "" {
		return nil
	}
	if s.reg.host == nil {
		logger.FromContext(ctx).Warn("No host to execute action command", "id", s.id, "command", command)
		return nil
	}
	return s.reg.host.Execute(ctx, command)
}

// clamp bounds f by the setting's limits before truncating it.
func (s *Setting) clamp(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if s.lower != nil && f < float64(*s.lower) {
		return *s.lower, true
	}
	if s.upper != nil && f > float64(*s.upper) {
		return *s.upper, true
	}
	return truncate(f)
}

// write stores value without running hooks.
func (s *Setting) write(ctx context.Context, value any) error {
	if err := s.reg.storage.Set(ctx, s.Owner(), s.id, value); err != nil {
		return fmt.Errorf("settings: set %s: %w", s.id, err)
	}
	return nil
}

func (s *Setting) bound() error {
	if s.reg == nil {
		return fmt.Errorf("%w: %q", ErrNotDeclared, s.id)
	}
	return nil
}

func (s *Setting) conditions() ConditionEvaluator {
	if s.reg == nil {
		return nil
	}
	return s.reg.conditions
}

func (s *Setting) translate(name string) string {
	if s.reg == nil {
		return name
	}
	return s.reg.text(name)
}

func (s *Setting) String() string {
	return fmt.Sprintf("%s(%s)", s.kind, s.id)
}

func changed(ownerA string, a any, foundA bool, ownerB string, b any, foundB bool) bool {
	return ownerA != ownerB || foundA != foundB || !valuesEqual(a, b)
}
