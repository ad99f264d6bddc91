package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	common = "script.module.slyguy"
	active = "plugin.video.disneyplus"
)

type countingBackend struct {
	mu      sync.Mutex
	data    map[Key][]byte
	gets    int
	failGet error
	failSet error
	closed  bool
}

func newCountingBackend() *countingBackend {
	return &countingBackend{data: make(map[Key][]byte)}
}

func (b *countingBackend) Get(_ context.Context, owner, id string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gets++
	if b.failGet != nil {
		return nil, b.failGet
	}
	v, ok := b.data[Key{owner, id}]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (b *countingBackend) Set(_ context.Context, owner, id string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failSet != nil {
		return b.failSet
	}
	b.data[Key{owner, id}] = value
	return nil
}

func (b *countingBackend) Delete(_ context.Context, owner, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, Key{owner, id})
	return nil
}

func (b *countingBackend) Close(context.Context) error {
	b.closed = true
	return nil
}

func (b *countingBackend) getCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gets
}

func newTestResolver(t *testing.T, backend Backend, opts ...Option) *Resolver {
	t.Helper()
	r, err := NewResolver(backend, common, opts...)
	require.NoError(t, err)
	return r
}

func TestNewResolver(t *testing.T) {
	t.Run("Should require a backend", func(t *testing.T) {
		_, err := NewResolver(nil, common)
		assert.Error(t, err)
	})

	t.Run("Should require a common owner", func(t *testing.T) {
		_, err := NewResolver(newCountingBackend(), "")
		assert.Error(t, err)
	})

	t.Run("Should fall back to the default cache size", func(t *testing.T) {
		r := newTestResolver(t, newCountingBackend(), WithCacheSize(0))
		assert.Equal(t, DefaultCacheSize, r.cacheSize)
		assert.Equal(t, common, r.Common())
	})
}

func TestResolver_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Should report NotFound for a missing entry", func(t *testing.T) {
		r := newTestResolver(t, newCountingBackend())

		res := r.Get(ctx, active, "wv_secure", false)

		assert.False(t, res.IsFound())
		assert.Equal(t, active, res.Owner())
	})

	t.Run("Should distinguish stored zero values from no entry", func(t *testing.T) {
		r := newTestResolver(t, newCountingBackend())
		require.NoError(t, r.Set(ctx, active, "flag", false))
		require.NoError(t, r.Set(ctx, active, "text", ""))
		require.NoError(t, r.Set(ctx, active, "blob", nil))

		for _, id := range []string{"flag", "text", "blob"} {
			res := r.Get(ctx, active, id, false)
			assert.True(t, res.IsFound(), id)
		}
		v, _ := r.Get(ctx, active, "flag", false).Value()
		assert.Equal(t, false, v)
	})

	t.Run("Should fall back to the common owner when inheriting", func(t *testing.T) {
		r := newTestResolver(t, newCountingBackend())
		require.NoError(t, r.Set(ctx, common, "max_bandwidth", 10))

		res := r.Get(ctx, active, "max_bandwidth", true)

		require.True(t, res.IsFound())
		assert.Equal(t, common, res.Owner())
		v, _ := res.Value()
		assert.Equal(t, float64(10), v)
	})

	t.Run("Should not fall back without inherit", func(t *testing.T) {
		r := newTestResolver(t, newCountingBackend())
		require.NoError(t, r.Set(ctx, common, "max_bandwidth", 10))

		res := r.Get(ctx, active, "max_bandwidth", false)

		assert.False(t, res.IsFound())
		assert.Equal(t, active, res.Owner())
	})

	t.Run("Should return the common pair when both owners miss", func(t *testing.T) {
		r := newTestResolver(t, newCountingBackend())

		res := r.Get(ctx, active, "missing", true)

		assert.False(t, res.IsFound())
		assert.Equal(t, common, res.Owner())
	})

	t.Run("Should prefer the active owner's own entry", func(t *testing.T) {
		r := newTestResolver(t, newCountingBackend())
		require.NoError(t, r.Set(ctx, common, "epg_days", 3))
		require.NoError(t, r.Set(ctx, active, "epg_days", 5))

		res := r.Get(ctx, active, "epg_days", true)

		assert.Equal(t, active, res.Owner())
		v, _ := res.Value()
		assert.Equal(t, float64(5), v)
	})

	t.Run("Should treat backend failures as no entry", func(t *testing.T) {
		backend := newCountingBackend()
		backend.failGet = errors.New("disk on fire")
		r := newTestResolver(t, backend)

		res := r.Get(ctx, active, "anything", false)

		assert.False(t, res.IsFound())
	})

	t.Run("Should treat undecodable entries as no entry", func(t *testing.T) {
		backend := newCountingBackend()
		backend.data[Key{active, "bad"}] = []byte("{not json")
		r := newTestResolver(t, backend)

		assert.False(t, r.Get(ctx, active, "bad", false).IsFound())
	})
}

func TestResolver_Cache(t *testing.T) {
	ctx := context.Background()

	t.Run("Should serve repeated lookups from cache including misses", func(t *testing.T) {
		backend := newCountingBackend()
		r := newTestResolver(t, backend)

		r.Get(ctx, active, "missing", false)
		r.Get(ctx, active, "missing", false)

		assert.Equal(t, 1, backend.getCount())
	})

	t.Run("Should see external writes only after Reset", func(t *testing.T) {
		backend := newCountingBackend()
		r := newTestResolver(t, backend)
		assert.False(t, r.Get(ctx, active, "skip_intros", false).IsFound())

		backend.data[Key{active, "skip_intros"}] = []byte("true")
		assert.False(t, r.Get(ctx, active, "skip_intros", false).IsFound())

		r.Reset()
		res := r.Get(ctx, active, "skip_intros", false)
		require.True(t, res.IsFound())
		v, _ := res.Value()
		assert.Equal(t, true, v)
	})

	t.Run("Should refresh only the written key", func(t *testing.T) {
		backend := newCountingBackend()
		r := newTestResolver(t, backend)
		r.Get(ctx, active, "a", false)
		r.Get(ctx, active, "b", false)
		gets := backend.getCount()

		require.NoError(t, r.Set(ctx, active, "a", "x"))
		v, _ := r.Get(ctx, active, "a", false).Value()
		r.Get(ctx, active, "b", false)

		assert.Equal(t, "x", v)
		assert.Equal(t, gets, backend.getCount())
	})

	t.Run("Should expose inherited values again after delete", func(t *testing.T) {
		r := newTestResolver(t, newCountingBackend())
		require.NoError(t, r.Set(ctx, common, "epg_days", 3))
		require.NoError(t, r.Set(ctx, active, "epg_days", 7))

		require.NoError(t, r.Delete(ctx, active, "epg_days"))
		res := r.Get(ctx, active, "epg_days", true)

		assert.Equal(t, common, res.Owner())
		v, _ := res.Value()
		assert.Equal(t, float64(3), v)
	})

	t.Run("Should not cache a failed write", func(t *testing.T) {
		backend := newCountingBackend()
		r := newTestResolver(t, backend)
		backend.failSet = errors.New("read-only")

		err := r.Set(ctx, active, "a", 1)

		require.Error(t, err)
		assert.False(t, r.Get(ctx, active, "a", false).IsFound())
	})

	t.Run("Should close the backend", func(t *testing.T) {
		backend := newCountingBackend()
		r := newTestResolver(t, backend)
		require.NoError(t, r.Close(ctx))
		assert.True(t, backend.closed)
	})
}

func TestResolver_Metrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Should count lookups writes and resets", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m, err := NewMetrics(reg)
		require.NoError(t, err)
		r := newTestResolver(t, newCountingBackend(), WithMetrics(m))

		r.Get(ctx, active, "a", false)
		r.Get(ctx, active, "a", false)
		require.NoError(t, r.Set(ctx, active, "a", 1))
		require.NoError(t, r.Delete(ctx, active, "a"))
		r.Reset()

		assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues(lookupMiss, sourceStore)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.lookups.WithLabelValues(lookupMiss, sourceCache)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.writes.WithLabelValues(opSet, outcomeOK)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.writes.WithLabelValues(opDelete, outcomeOK)))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.resets))
	})

	t.Run("Should reuse collectors registered twice", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		first, err := NewMetrics(reg)
		require.NoError(t, err)
		second, err := NewMetrics(reg)
		require.NoError(t, err)

		first.reset()
		assert.Equal(t, 1.0, testutil.ToFloat64(second.resets))
	})

	t.Run("Should ignore a nil metrics receiver", func(t *testing.T) {
		var m *Metrics
		assert.NotPanics(t, func() {
			m.lookup(lookupHit, sourceCache)
			m.write(opSet, nil)
			m.reset()
		})
	})
}

func TestResult(t *testing.T) {
	t.Run("Should carry owner and value", func(t *testing.T) {
		res := Found(active, "x")
		v, ok := res.Value()
		assert.True(t, ok)
		assert.Equal(t, "x", v)
		assert.Equal(t, active, res.Owner())
	})

	t.Run("Should report absence without a value", func(t *testing.T) {
		v, ok := NotFound(common).Value()
		assert.False(t, ok)
		assert.Nil(t, v)
	})

	assert.Equal(t, "a/b", Key{Owner: "a", ID: "b"}.String())
}
