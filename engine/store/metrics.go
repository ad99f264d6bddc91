package store

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "settings"

const (
	lookupHit    = "hit"
	lookupMiss   = "miss"
	lookupError  = "error"
	sourceCache  = "cache"
	sourceStore  = "backend"
	opSet        = "set"
	opDelete     = "delete"
	outcomeOK    = "ok"
	outcomeError = "error"
)

// Metrics instruments Resolver lookups, writes and cache resets.
// A nil *Metrics records nothing.
type Metrics struct {
	lookups *prometheus.CounterVec
	writes  *prometheus.CounterVec
	resets  prometheus.Counter
}

// NewMetrics creates the resolver collectors and registers them with reg.
// Collectors that are already registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "resolver",
			Name:      "lookups_total",
			Help:      "Setting lookups by outcome and the layer that answered them.",
		}, []string{"result", "source"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "resolver",
			Name:      "writes_total",
			Help:      "Setting writes and deletes by outcome.",
		}, []string{"op", "outcome"}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "resolver",
			Name:      "cache_resets_total",
			Help:      "Number of times the lookup cache was purged.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	var err error
	if m.lookups, err = register(reg, m.lookups); err != nil {
		return nil, err
	}
	if m.writes, err = register(reg, m.writes); err != nil {
		return nil, err
	}
	if m.resets, err = register(reg, m.resets); err != nil {
		return nil, err
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("store: register metrics: %w", err)
	}
	return c, nil
}

func (m *Metrics) lookup(result, source string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(result, source).Inc()
}

func (m *Metrics) write(op string, err error) {
	if m == nil {
		return
	}
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	m.writes.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) reset() {
	if m == nil {
		return
	}
	m.resets.Inc()
}
