package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval matches the shortest server-side cache TTL that views poll against
const DefaultInterval = 15 * time.Second

// FetchFunc loads one snapshot of a view
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Update is one poll result
type Update[T any] struct {
	Value T
	Err   error
	At    time.Time
}

// Poller re-fetches a view on an interval and publishes every result on a channel
type Poller[T any] struct {
	name     string
	fetch    FetchFunc[T]
	interval time.Duration
	clock    clockwork.Clock
	updates  chan Update[T]
	started  bool
	mu       sync.Mutex
	logger   *slog.Logger
}

// NewPoller creates a poller. A nil clock uses the real clock.
func NewPoller[T any](name string, fetch FetchFunc[T], interval time.Duration, clock clockwork.Clock, logger *slog.Logger) *Poller[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller[T]{
		name:     name,
		fetch:    fetch,
		interval: interval,
		clock:    clock,
		updates:  make(chan Update[T], 1),
		logger:   logger.With(slog.String("poller", name)),
	}
}

// Start polls once immediately, then every interval until ctx is cancelled.
// The updates channel is closed when polling stops. Calling Start twice is a no-op.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	p.logger.Debug("starting poller", slog.Duration("interval", p.interval))

	go func() {
		defer close(p.updates)
		defer p.logger.Debug("poller stopped")

		ticker := p.clock.NewTicker(p.interval)
		defer ticker.Stop()

		if !p.poll(ctx) {
			return
		}
		for {
			select {
			case <-ticker.Chan():
				if !p.poll(ctx) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// poll fetches once and publishes the result; false means ctx ended first
func (p *Poller[T]) poll(ctx context.Context) bool {
	value, err := p.fetch(ctx)
	if err != nil && ctx.Err() == nil {
		p.logger.Warn("poll failed", slog.String("error", err.Error()))
	}

	select {
	case p.updates <- Update[T]{Value: value, Err: err, At: p.clock.Now()}:
		return true
	case <-ctx.Done():
		return false
	}
}

// Updates returns the channel poll results are published on
func (p *Poller[T]) Updates() <-chan Update[T] {
	return p.updates
}
