package settings

import (
	"context"
	"testing"

	"github.com/slyguy/settings/engine/condition"
	"github.com/slyguy/settings/engine/infra/memory"
	"github.com/slyguy/settings/engine/language"
	"github.com/slyguy/settings/engine/store"
	"github.com/stretchr/testify/require"
)

const (
	testActive = "plugin.video.disney.plus"
	testCommon = "script.module.slyguy"
)

type testEnv struct {
	reg      *Registry
	resolver *store.Resolver
	backend  *memory.Store
}

func newTestEnv(t *testing.T, platform string, opts ...RegistryOption) *testEnv {
	t.Helper()
	return newTestEnvFor(t, testActive, platform, opts...)
}

func newTestEnvFor(t *testing.T, active, platform string, opts ...RegistryOption) *testEnv {
	t.Helper()
	backend := memory.NewStore()
	resolver, err := store.NewResolver(backend, testCommon)
	require.NoError(t, err)
	catalog, err := language.New("en")
	require.NoError(t, err)
	evaluator, err := condition.NewEvaluator(condition.Host{Platform: platform})
	require.NoError(t, err)
	base := []RegistryOption{
		WithTranslator(catalog),
		WithConditions(evaluator),
		WithPluginName("Disney+"),
	}
	reg, err := NewRegistry(resolver, active, testCommon, append(base, opts...)...)
	require.NoError(t, err)
	return &testEnv{reg: reg, resolver: resolver, backend: backend}
}

func (e *testEnv) declare(t *testing.T, decls ...Declaration) {
	t.Helper()
	require.NoError(t, e.reg.Declare("test", decls...))
}

// stored reads the raw value at (owner, id) without inheritance.
func (e *testEnv) stored(ctx context.Context, owner, id string) (any, bool) {
	return e.resolver.Get(ctx, owner, id, false).Value()
}

type fakePrompter struct {
	input     string
	inputOK   bool
	numeric   float64
	numericOK bool
	index     int
	selectOK  bool
	confirm   bool

	selects  int
	confirms int
	notified []string
}

func (p *fakePrompter) Input(context.Context, string, string) (string, bool, error) {
	return p.input, p.inputOK, nil
}

func (p *fakePrompter) Numeric(context.Context, string, int) (float64, bool, error) {
	return p.numeric, p.numericOK, nil
}

func (p *fakePrompter) Select(context.Context, string, []string, int) (int, bool, error) {
	p.selects++
	return p.index, p.selectOK, nil
}

func (p *fakePrompter) Confirm(context.Context, string, string) (bool, error) {
	p.confirms++
	return p.confirm, nil
}

func (p *fakePrompter) Notify(_ context.Context, message string) error {
	p.notified = append(p.notified, message)
	return nil
}

type fakeHost struct {
	commands []string
}

func (h *fakeHost) Execute(_ context.Context, command string) error {
	h.commands = append(h.commands, command)
	return nil
}

type fakeLegacy struct {
	entries []LegacyEntry
	err     error
	reads   int
}

func (f *fakeLegacy) Entries(context.Context) ([]LegacyEntry, error) {
	f.reads++
	return f.entries, f.err
}
