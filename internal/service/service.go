package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/aamijar/tokenomics/internal/data"
	"github.com/aamijar/tokenomics/internal/metrics"
	"github.com/aamijar/tokenomics/internal/model"
	"github.com/aamijar/tokenomics/internal/upstream"
)

// Cache TTLs per domain
const (
	PricesTTL    = 30 * time.Second
	QuotesTTL    = 15 * time.Second
	TxTTL        = QuotesTTL
	PoolsTTL     = 60 * time.Second
	ActivityTTL  = 30 * time.Second
	AddressesTTL = time.Hour
)

// Defaults for Deps
const (
	DefaultUpstreamTimeout = upstream.DefaultTimeout
	DefaultSnapshotTTL     = 24 * time.Hour
	snapshotTimeout        = time.Second
)

var errNoSources = errors.New("no upstream sources configured")

// Deps holds what every aggregation service shares
type Deps struct {
	Cache       *data.Cache
	Snapshots   data.SnapshotStore // optional
	Logger      *slog.Logger
	Timeout     time.Duration
	SnapshotTTL time.Duration
}

// fetcher runs the cache-check / upstream / fallback cycle for one service
type fetcher struct {
	cache       *data.Cache
	snapshots   data.SnapshotStore
	logger      *slog.Logger
	timeout     time.Duration
	snapshotTTL time.Duration
	group       singleflight.Group
}

func newFetcher(deps Deps) *fetcher {
	if deps.Cache == nil {
		deps.Cache = data.NewCache()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Timeout <= 0 {
		deps.Timeout = DefaultUpstreamTimeout
	}
	if deps.SnapshotTTL <= 0 {
		deps.SnapshotTTL = DefaultSnapshotTTL
	}

	return &fetcher{
		cache:       deps.Cache,
		snapshots:   deps.Snapshots,
		logger:      deps.Logger,
		timeout:     deps.Timeout,
		snapshotTTL: deps.SnapshotTTL,
	}
}

func (f *fetcher) now() time.Time {
	return f.cache.Clock().Now()
}

// lookup describes one read-through request
type lookup[T any] struct {
	domain   string
	key      string
	ttl      time.Duration
	fetch    func(ctx context.Context) (T, error)
	fallback func() T
	// degrade annotates a stale value before it is returned; optional
	degrade func(T) T
}

// readThrough serves l from cache, else from upstream, else from stale data or
// the static fallback. It never returns an error: upstream failures only
// change the Source.
//
// The upstream call is detached from ctx cancellation so a client disconnect
// does not abort it, and concurrent misses on the same key share one call.
func readThrough[T any](ctx context.Context, f *fetcher, l lookup[T]) (T, model.Source) {
	if v, ok := data.GetAs[T](f.cache, l.key); ok {
		metrics.CacheLookups.WithLabelValues(l.domain, "hit").Inc()
		return v, model.SourceCache
	}
	metrics.CacheLookups.WithLabelValues(l.domain, "miss").Inc()

	v, cached, err := fetchShared(ctx, f, l)
	if err == nil {
		if cached {
			return v, model.SourceCache
		}
		return v, model.SourceFresh
	}

	f.logFailure(l.domain, l.key, err)

	if stale, ok := data.StaleAs[T](f.cache, l.key); ok {
		metrics.DegradedResponses.WithLabelValues(l.domain, string(model.SourceStale)).Inc()
		return applyDegrade(l, stale), model.SourceStale
	}

	if snap, ok := loadSnapshot[T](ctx, f, l.key); ok {
		metrics.DegradedResponses.WithLabelValues(l.domain, string(model.SourceStale)).Inc()
		return applyDegrade(l, snap), model.SourceStale
	}

	metrics.DegradedResponses.WithLabelValues(l.domain, string(model.SourceFallback)).Inc()
	return l.fallback(), model.SourceFallback
}

// flight is the value shared by callers waiting on one singleflight key
type flight struct {
	value  any
	cached bool
}

// fetchShared calls upstream for l once per key across concurrent callers.
// cached is set when another caller stored the value before this one got in.
func fetchShared[T any](ctx context.Context, f *fetcher, l lookup[T]) (T, bool, error) {
	res, err, _ := f.group.Do(l.key, func() (any, error) {
		if v, ok := data.GetAs[T](f.cache, l.key); ok {
			return flight{value: v, cached: true}, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()

		start := time.Now()
		v, err := l.fetch(fetchCtx)
		metrics.UpstreamLatency.WithLabelValues(l.domain).Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.UpstreamCalls.WithLabelValues(l.domain, "failure").Inc()
			return nil, err
		}
		metrics.UpstreamCalls.WithLabelValues(l.domain, "success").Inc()

		f.saveSnapshot(ctx, l.key, v)
		return flight{value: data.Store(f.cache, l.key, v, l.ttl)}, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	fl := res.(flight)
	return fl.value.(T), fl.cached, nil
}

func applyDegrade[T any](l lookup[T], v T) T {
	if l.degrade == nil {
		return v
	}
	return l.degrade(v)
}

func (f *fetcher) logFailure(domain, key string, err error) {
	if errors.Is(err, upstream.ErrNotConfigured) {
		f.logger.Debug("upstream not configured, serving degraded data",
			slog.String("domain", domain),
			slog.String("key", key),
			slog.String("error", err.Error()))
		return
	}
	f.logger.Warn("upstream call failed, serving degraded data",
		slog.String("domain", domain),
		slog.String("key", key),
		slog.String("error", err.Error()))
}

func (f *fetcher) saveSnapshot(ctx context.Context, key string, v any) {
	if f.snapshots == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotTimeout)
	defer cancel()

	if err := f.snapshots.Save(ctx, key, v, f.snapshotTTL); err != nil {
		f.logger.Warn("failed to save snapshot", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func loadSnapshot[T any](ctx context.Context, f *fetcher, key string) (T, bool) {
	var snap T
	if f.snapshots == nil {
		return snap, false
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotTimeout)
	defer cancel()

	found, err := f.snapshots.Load(ctx, key, &snap)
	if err != nil {
		f.logger.Warn("failed to load snapshot", slog.String("key", key), slog.String("error", err.Error()))
		return snap, false
	}
	return snap, found
}

// fanOut calls every source concurrently and waits for all of them. It returns
// the successful results in source order; err joins the failures and is set
// even when some sources succeeded. One failing source never cancels another.
func fanOut[S any, T any](ctx context.Context, sources []S, call func(ctx context.Context, s S) (T, error)) ([]T, error) {
	if len(sources) == 0 {
		return nil, errNoSources
	}

	values := make([]T, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			values[i], errs[i] = call(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	results := make([]T, 0, len(sources))
	var failures []error
	for i := range sources {
		if errs[i] != nil {
			failures = append(failures, errs[i])
			continue
		}
		results = append(results, values[i])
	}
	return results, errors.Join(failures...)
}

// allFailed reports whether a fan-out produced nothing usable
func allFailed[T any](results []T, err error) error {
	if len(results) > 0 {
		return nil
	}
	if err == nil {
		err = errNoSources
	}
	return fmt.Errorf("all upstream sources failed: %w", err)
}

// forEach runs fn for every input concurrently and keeps input order
func forEach[I any, O any](ctx context.Context, inputs []I, fn func(ctx context.Context, in I) O) []O {
	out := make([]O, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = fn(ctx, in)
		}()
	}
	wg.Wait()
	return out
}
