// Package plugin assembles the settings engine for one plugin process and
// runs its dispatch cycles.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/slyguy/settings/engine/builtin"
	"github.com/slyguy/settings/engine/condition"
	"github.com/slyguy/settings/engine/infra/repo"
	"github.com/slyguy/settings/engine/language"
	"github.com/slyguy/settings/engine/legacy"
	"github.com/slyguy/settings/engine/settings"
	"github.com/slyguy/settings/engine/store"
	"github.com/slyguy/settings/pkg/config"
	"github.com/slyguy/settings/pkg/logger"
)

type options struct {
	modules    []settings.Module
	host       settings.Host
	registerer prometheus.Registerer
	legacy     settings.LegacySource
	backend    store.Backend
}

// Option configures New.
type Option func(*options)

// WithModules declares plugin modules after the common one.
func WithModules(modules ...settings.Module) Option {
	return func(o *options) { o.modules = append(o.modules, modules...) }
}

func WithHost(h settings.Host) Option {
	return func(o *options) { o.host = h }
}

// WithRegisterer enables resolver metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithLegacySource replaces the configured legacy settings file.
func WithLegacySource(src settings.LegacySource) Option {
	return func(o *options) { o.legacy = src }
}

// WithBackend uses b instead of the configured store driver. The plugin
// takes ownership of b.
func WithBackend(b store.Backend) Option {
	return func(o *options) { o.backend = b }
}

// Plugin is the settings engine of one process.
type Plugin struct {
	cfg       *config.Config
	backend   store.Backend
	resolver  *store.Resolver
	catalog   *language.Catalog
	registry  *settings.Registry
	legacy    settings.LegacySource
	migration settings.Report
	closeOnce sync.Once
	closeErr  error
}

// New builds the engine from cfg. A nil cfg is taken from ctx. Migration
// runs when enabled; its failure is logged and retried on the next start.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Plugin, error) {
	if cfg == nil {
		cfg = config.FromContext(ctx)
	}
	if cfg == nil {
		return nil, errors.New("plugin: configuration is required")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	log := logger.FromContext(ctx).With("plugin", cfg.Plugin.ID)
	ctx = logger.ContextWithLogger(ctx, log)

	backend := o.backend
	if backend == nil {
		b, err := repo.NewBackend(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("plugin: open store: %w", err)
		}
		backend = b
	}
	p := &Plugin{cfg: cfg, backend: backend, legacy: o.legacy}
	if p.legacy == nil {
		p.legacy = legacy.NewFile(cfg.LegacyFile())
	}
	if err := p.build(ctx, o); err != nil {
		if cerr := backend.Close(ctx); cerr != nil {
			log.Error("Failed to close store", "error", cerr)
		}
		return nil, err
	}
	if cfg.Migration.Enabled {
		report, err := p.registry.Migrate(ctx, p.legacy)
		if err != nil {
			log.Error("Legacy migration failed", "error", err)
		}
		p.migration = report
	}
	log.Info("Settings engine ready",
		"driver", cfg.Store.Driver,
		"common", cfg.Plugin.Common,
		"locale", p.catalog.Tag().String(),
		"settings", len(p.registry.Settings()),
	)
	return p, nil
}

func (p *Plugin) build(ctx context.Context, o *options) error {
	resolverOpts := []store.Option{store.WithCacheSize(p.cfg.Cache.Size)}
	if o.registerer != nil {
		metrics, err := store.NewMetrics(o.registerer)
		if err != nil {
			return fmt.Errorf("plugin: register metrics: %w", err)
		}
		resolverOpts = append(resolverOpts, store.WithMetrics(metrics))
	}
	resolver, err := store.NewResolver(p.backend, p.cfg.Plugin.Common, resolverOpts...)
	if err != nil {
		return fmt.Errorf("plugin: create resolver: %w", err)
	}
	p.resolver = resolver

	catalog, err := language.New(p.cfg.Language.Locale, p.cfg.Language.Paths...)
	if err != nil {
		return fmt.Errorf("plugin: load language: %w", err)
	}
	p.catalog = catalog

	evaluator, err := condition.NewEvaluator(condition.Host{
		Platform:   p.cfg.Host.Platform,
		Conditions: p.cfg.Host.Conditions,
	})
	if err != nil {
		return fmt.Errorf("plugin: create condition evaluator: %w", err)
	}

	registryOpts := []settings.RegistryOption{
		settings.WithTranslator(catalog),
		settings.WithConditions(evaluator),
		settings.WithPluginName(p.cfg.Plugin.Name),
	}
	if o.host != nil {
		registryOpts = append(registryOpts, settings.WithHost(o.host))
	}
	registry, err := settings.NewRegistry(resolver, p.cfg.Plugin.ID, p.cfg.Plugin.Common, registryOpts...)
	if err != nil {
		return fmt.Errorf("plugin: create registry: %w", err)
	}
	p.registry = registry

	modules := append([]settings.Module{builtin.Common(p.cfg.Plugin.Common, p.clearCache)}, o.modules...)
	if err := registry.Load(ctx, modules...); err != nil {
		return fmt.Errorf("plugin: load settings: %w", err)
	}
	return nil
}

func (p *Plugin) clearCache(ctx context.Context) error {
	p.resolver.Reset()
	logger.FromContext(ctx).Info("Settings cache cleared")
	return nil
}

func (p *Plugin) Config() *config.Config { return p.cfg }
func (p *Plugin) Registry() *settings.Registry { return p.registry }
func (p *Plugin) Resolver() *store.Resolver { return p.resolver }
func (p *Plugin) Catalog() *language.Catalog { return p.catalog }
func (p *Plugin) MigrationReport() settings.Report { return p.migration }

// Dispatch runs one request cycle. Cached reads are dropped first so values
// written by other processes become visible.
func (p *Plugin) Dispatch(ctx context.Context, fn func(ctx context.Context, reg *settings.Registry) error) error {
	p.registry.Reset()
	return fn(ctx, p.registry)
}

// Migrate runs the legacy import now. It does nothing once it has completed.
func (p *Plugin) Migrate(ctx context.Context) (settings.Report, error) {
	p.registry.Reset()
	report, err := p.registry.Migrate(ctx, p.legacy)
	if err == nil {
		p.migration = report
	}
	return report, err
}

// Close releases the store. It is safe to call more than once.
func (p *Plugin) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.closeErr = p.resolver.Close(ctx)
	})
	return p.closeErr
}
