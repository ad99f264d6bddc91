package config

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/slyguy/settings/pkg/logger"
)

// Manager holds the active configuration and the sources it was built from.
type Manager struct {
	Service   Service
	current   atomic.Value // stores *Config
	sources   []Source
	reloadMu  sync.Mutex
	closeOnce sync.Once
}

// NewManager creates a new configuration manager.
func NewManager(service Service) *Manager {
	if service == nil {
		service = NewService()
	}
	return &Manager{Service: service}
}

// Load loads configuration from sources and makes it current.
func (m *Manager) Load(ctx context.Context, sources ...Source) (*Config, error) {
	m.reloadMu.Lock()
	m.sources = append([]Source(nil), sources...)
	m.reloadMu.Unlock()

	config, err := m.Service.Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.current.Store(config)
	return config, nil
}

// Get returns the current configuration, or nil before the first Load.
func (m *Manager) Get() *Config {
	if cfg, ok := m.current.Load().(*Config); ok {
		return cfg
	}
	return nil
}

// Reload re-reads every source. The previous configuration stays current on error.
func (m *Manager) Reload(ctx context.Context) error {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	config, err := m.Service.Load(ctx, m.sources...)
	if err != nil {
		logger.FromContext(ctx).Error("Failed to reload configuration", "error", err)
		return fmt.Errorf("failed to reload configuration: %w", err)
	}
	m.current.Store(config)
	return nil
}

// Close releases all sources. It is safe to call more than once.
func (m *Manager) Close(_ context.Context) error {
	var errs []error
	m.closeOnce.Do(func() {
		m.reloadMu.Lock()
		defer m.reloadMu.Unlock()
		for _, source := range m.sources {
			if source == nil {
				continue
			}
			if err := source.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s source: %w", source.Type(), err))
			}
		}
	})
	return errors.Join(errs...)
}
