package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/slyguy/settings/engine/store"
	"github.com/slyguy/settings/pkg/logger"
	"github.com/slyguy/settings/pkg/tplengine"
)

// Identifiers of the settings every registry declares.
const (
	MigratedID = "migrated"
	UserdataID = "userdata"
)

const baseModule = "base"

// Storage resolves values by (owner, id). *store.Resolver implements it.
type Storage interface {
	Get(ctx context.Context, owner, id string, inherit bool) store.Result
	Set(ctx context.Context, owner, id string, value any) error
	Delete(ctx context.Context, owner, id string) error
	Reset()
}

// Translator maps symbolic names to display text.
type Translator interface {
	Lookup(name string) (string, bool)
}

// Declaration binds a setting to the name a module exposes it under.
type Declaration struct {
	Name    string
	Setting *Setting
}

// Module is a named group of declarations, such as one plugin's settings.
type Module interface {
	Name() string
	Declarations() []Declaration
}

type staticModule struct {
	name  string
	decls []Declaration
}

func (m staticModule) Name() string { return m.name }
func (m staticModule) Declarations() []Declaration { return m.decls }

// NewModule returns a Module with a fixed declaration list.
func NewModule(name string, decls ...Declaration) Module {
	return staticModule{name: name, decls: decls}
}

type declared struct {
	module  string
	setting *Setting
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

func WithTranslator(t Translator) RegistryOption {
	return func(r *Registry) { r.translator = t }
}

func WithConditions(c ConditionEvaluator) RegistryOption {
	return func(r *Registry) { r.conditions = c }
}

func WithHost(h Host) RegistryOption {
	return func(r *Registry) { r.host = h }
}

// WithPluginName sets the title of the add-on category.
func WithPluginName(name string) RegistryOption {
	return func(r *Registry) { r.pluginName = name }
}

// Registry holds the settings declared in one process for one active
// namespace.
type Registry struct {
	mu         sync.RWMutex
	storage    Storage
	active     string
	common     string
	pluginName string
	translator Translator
	conditions ConditionEvaluator
	host       Host
	formats    tplengine.Cache

	settings   map[string]*Setting
	order      []*Setting
	names      map[string]declared
	categories []*Category
	actions    int

	migrated *Setting
	userdata *Setting
}

// NewRegistry creates a registry with the standard categories and the base
// settings.
func NewRegistry(storage Storage, active, common string, opts ...RegistryOption) (*Registry, error) {
	if storage == nil {
		return nil, errors.New("settings: storage is required")
	}
	if active == "" || common == "" {
		return nil, errors.New("settings: active and common namespaces are required")
	}
	r := &Registry{
		storage:  storage,
		active:   active,
		common:   common,
		settings: make(map[string]*Setting),
		names:    make(map[string]declared),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pluginName == "" {
		r.pluginName = active
	}
	r.standardCategories()
	r.migrated = Bool(MigratedID,
		WithVisible(Literal(false)), WithOverride(false), WithInherit(false))
	r.userdata = Dict(UserdataID,
		WithVisible(Literal(false)), WithOverride(false), WithInherit(false))
	if err := r.Declare(baseModule,
		Declaration{Name: "MIGRATED", Setting: r.migrated},
		Declaration{Name: "USERDATA", Setting: r.userdata},
	); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) standardCategories() {
	root := r.newCategory("SETTINGS", nil)
	r.newCategory(r.pluginName, root)
	player := r.newCategory("PLAYER", root)
	r.newCategory("QUALITY", player)
	r.newCategory("CODECS", player)
	r.newCategory("LANGUAGE", player)
	r.newCategory("ADVANCED", player)
	r.newCategory("NETWORK", root)
	r.newCategory("INTERFACE", root)
	r.newCategory("PVR_LIVE_TV", root)
	r.newCategory("SYSTEM", root)
}

func (r *Registry) newCategory(label string, parent *Category) *Category {
	c := &Category{id: CategoryID(len(r.categories)), label: label, parent: parent, reg: r}
	r.categories = append(r.categories, c)
	if parent != nil {
		parent.add(c)
	}
	return c
}

// NewCategory adds a category under parent.
func (r *Registry) NewCategory(label string, parent CategoryID) (*Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.category(parent)
	if err != nil {
		return nil, err
	}
	return r.newCategory(label, p), nil
}

func (r *Registry) category(id CategoryID) (*Category, error) {
	if id < 0 || int(id) >= len(r.categories) {
		return nil, fmt.Errorf("settings: unknown category %d", id)
	}
	return r.categories[id], nil
}

// Category returns the category with id.
func (r *Registry) Category(id CategoryID) (*Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, err := r.category(id)
	return c, err == nil
}

func (r *Registry) Root() *Category {
	c, _ := r.Category(CategoryRoot)
	return c
}

func (r *Registry) Active() string { return r.active }
func (r *Registry) Common() string { return r.common }
func (r *Registry) PluginName() string { return r.pluginName }

// Declare registers decls on behalf of module. A setting already declared
// here may be declared again under any name; reusing a name or id for a
// different setting fails.
func (r *Registry) Declare(module string, decls ...Declaration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range decls {
		if err := r.declare(module, d); err != nil {
			return fmt.Errorf("settings: declare %s.%s: %w", module, d.Name, err)
		}
	}
	return nil
}

func (r *Registry) declare(module string, d Declaration) error {
	s := d.Setting
	if s == nil {
		return fmt.Errorf("%w: nil setting", ErrInvalidValue)
	}
	name := d.Name
	if name == "" {
		name = strings.ToUpper(s.id)
	}
	if name == "" {
		return fmt.Errorf("%w: declaration needs a name", ErrInvalidValue)
	}
	if prev, ok := r.names[name]; ok {
		if prev.setting == s {
			return nil
		}
		return fmt.Errorf("%w: %q already declared by %s", ErrDuplicateName, name, prev.module)
	}
	if s.reg != nil {
		if s.reg == r && r.settings[strings.ToLower(s.id)] == s {
			r.names[name] = declared{module: module, setting: s}
			return nil
		}
		return fmt.Errorf("%w: %q is already declared", ErrDuplicateID, s.id)
	}
	if s.kind == KindAction {
		r.actions++
		s.id = fmt.Sprintf("action_%d", r.actions)
	}
	if err := r.validate(s); err != nil {
		return err
	}
	key := strings.ToLower(s.id)
	if _, ok := r.settings[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateID, s.id)
	}
	if s.owner == "" {
		s.owner = r.active
	}
	if !s.hasCategory {
		s.category = CategoryAddon
		if s.owner == r.common {
			s.category = CategoryRoot
		}
	}
	cat, err := r.category(s.category)
	if err != nil {
		return err
	}
	s.name = name
	if s.label == "" {
		s.label = r.labelFor(name)
	}
	s.reg = r
	r.settings[key] = s
	r.order = append(r.order, s)
	r.names[name] = declared{module: module, setting: s}
	cat.add(s)
	return nil
}

func (r *Registry) validate(s *Setting) error {
	if s.id == "" {
		return fmt.Errorf("%w: setting id is required", ErrInvalidValue)
	}
	if err := s.visible.validate(r.conditions); err != nil {
		return err
	}
	if err := s.enable.validate(r.conditions); err != nil {
		return err
	}
	if s.valueFormat != "" {
		if _, err := r.formats.Get(s.valueFormat); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidFormat, err)
		}
	}
	if s.kind == KindEnum && len(s.choices) == 0 {
		return fmt.Errorf("%w: enum %q has no options", ErrInvalidValue, s.id)
	}
	if s.lower != nil && s.upper != nil && *s.lower > *s.upper {
		return fmt.Errorf("%w: %q has lower limit above upper limit", ErrInvalidValue, s.id)
	}
	if s.kind == KindAction || s.kind == KindDict {
		return nil
	}
	if s.def != nil {
		def, err := s.normalize(s.def)
		if err != nil {
			return fmt.Errorf("invalid default: %w", err)
		}
		s.def = def
	}
	if s.disabledValue != nil {
		v, err := s.normalize(s.disabledValue)
		if err != nil {
			return fmt.Errorf("invalid disabled value: %w", err)
		}
		s.disabledValue = v
	}
	return nil
}

func (r *Registry) labelFor(name string) string {
	if r.translator != nil {
		if _, ok := r.translator.Lookup(name); ok {
			return name
		}
	}
	return strings.ToUpper(name)
}

// Load declares every module in order.
func (r *Registry) Load(ctx context.Context, modules ...Module) error {
	log := logger.FromContext(ctx)
	for _, m := range modules {
		decls := m.Declarations()
		if err := r.Declare(m.Name(), decls...); err != nil {
			return err
		}
		log.Debug("Loaded settings module", "module", m.Name(), "settings", len(decls))
	}
	return nil
}

// MustLoad is like Load but panics on error.
func (r *Registry) MustLoad(ctx context.Context, modules ...Module) {
	if err := r.Load(ctx, modules...); err != nil {
		panic(err)
	}
}

// Lookup finds a declared setting by id or legacy id, ignoring case.
func (r *Registry) Lookup(key string) (*Setting, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(key)
}

func (r *Registry) lookup(key string) (*Setting, bool) {
	if s, ok := r.settings[strings.ToLower(key)]; ok {
		return s, true
	}
	for _, s := range r.order {
		if s.MatchesID(key) {
			return s, true
		}
	}
	return nil, false
}

// Setting finds key like Lookup. Unknown keys get an invisible Dict setting
// owned by the active namespace with def as its default.
func (r *Registry) Setting(ctx context.Context, key string, def any) *Setting {
	if s, ok := r.Lookup(key); ok {
		return s
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.lookup(key); ok {
		return s
	}
	logger.FromContext(ctx).Warn("Setting not declared, creating it", "id", key)
	s := Dict(key,
		WithOwner(r.active),
		WithDefault(def),
		WithOverride(false),
		WithInherit(false),
		WithVisible(Literal(false)),
	)
	s.disabledValue = nil
	s.name = key
	s.label = r.labelFor(key)
	s.category = CategoryAddon
	s.reg = r
	r.settings[strings.ToLower(key)] = s
	r.order = append(r.order, s)
	r.categories[CategoryAddon].add(s)
	return s
}

// Settings returns every setting in declaration order.
func (r *Registry) Settings() []*Setting {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Setting(nil), r.order...)
}

// Get returns the value of key.
func (r *Registry) Get(ctx context.Context, key string) any {
	return r.Setting(ctx, key, nil).Value(ctx)
}

// GetDefault returns the value of key, using def for undeclared keys.
func (r *Registry) GetDefault(ctx context.Context, key string, def any) any {
	return r.Setting(ctx, key, def).Value(ctx)
}

func (r *Registry) GetBool(ctx context.Context, key string) bool {
	b, _ := r.Get(ctx, key).(bool)
	return b
}

func (r *Registry) GetInt(ctx context.Context, key string) int {
	n, _ := toInt(r.Get(ctx, key))
	return n
}

func (r *Registry) GetString(ctx context.Context, key string) string {
	switch v := r.Get(ctx, key).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (r *Registry) GetDict(ctx context.Context, key string) map[string]any {
	m, _ := r.Get(ctx, key).(map[string]any)
	return m
}

// Set stores value for key.
func (r *Registry) Set(ctx context.Context, key string, value any) error {
	return r.Setting(ctx, key, nil).SetValue(ctx, value)
}

// Remove clears the stored value of key.
func (r *Registry) Remove(ctx context.Context, key string) error {
	return r.Setting(ctx, key, nil).Clear(ctx)
}

// Reset drops cached reads. Call it at the start of every dispatch.
func (r *Registry) Reset() {
	r.storage.Reset()
}

// ClearAll clears every setting that allows it without confirmation and
// returns how many were cleared.
func (r *Registry) ClearAll(ctx context.Context) (int, error) {
	cleared := 0
	for _, s := range r.Settings() {
		if !s.CanBulkClear(ctx) {
			continue
		}
		if err := s.Clear(ctx); err != nil {
			return cleared, err
		}
		cleared++
	}
	logger.FromContext(ctx).Info("Cleared settings", "count", cleared)
	return cleared, nil
}

// Migrated reports whether the legacy import already ran.
func (r *Registry) Migrated(ctx context.Context) bool {
	b, _ := r.migrated.Value(ctx).(bool)
	return b
}

// UserData returns one entry of the free-form userdata setting.
func (r *Registry) UserData(ctx context.Context, key string) (any, bool) {
	m, _ := r.userdata.Value(ctx).(map[string]any)
	v, ok := m[key]
	return v, ok
}

// SetUserData stores one entry of the free-form userdata setting.
func (r *Registry) SetUserData(ctx context.Context, key string, value any) error {
	current, _ := r.userdata.Value(ctx).(map[string]any)
	next := make(map[string]any, len(current)+1)
	for k, v := range current {
		next[k] = v
	}
	next[key] = value
	return r.userdata.SetValue(ctx, next)
}

func (r *Registry) isActive(s *Setting) bool {
	return s.owner == r.active
}

func (r *Registry) text(name string) string {
	if r.translator != nil {
		if v, ok := r.translator.Lookup(name); ok {
			return v
		}
	}
	return name
}
