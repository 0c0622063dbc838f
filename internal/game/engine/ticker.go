package engine

import (
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Ticker fires registered callbacks on a fixed interval, passing the wall time
// elapsed since the previous tick clamped to a maximum. The clamp keeps a
// suspended process from crediting hours of production in a single tick.
//
// Invariant: each callback is invoked at most once per interval, in name order.
type Ticker struct {
	interval time.Duration
	maxDelta time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu    sync.Mutex
	ticks map[string]func(delta time.Duration)

	stopOnce sync.Once
	stop     chan struct{}
}

// NewTicker returns a Ticker firing every interval. A maxDelta <= 0 disables
// the clamp.
//
// Precondition: interval must be > 0.
func NewTicker(interval, maxDelta time.Duration, logger *zap.Logger) *Ticker {
	if interval <= 0 {
		panic("engine.NewTicker: interval must be > 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ticker{
		interval: interval,
		maxDelta: maxDelta,
		now:      time.Now,
		logger:   logger,
		ticks:    make(map[string]func(time.Duration)),
		stop:     make(chan struct{}),
	}
}

// RegisterTick registers fn under name, replacing any existing callback.
func (t *Ticker) RegisterTick(name string, fn func(delta time.Duration)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ticks[name] = fn
}

// Unregister removes the callback registered under name.
func (t *Ticker) Unregister(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.ticks, name)
}

// Start runs the tick loop and blocks until Stop is called.
func (t *Ticker) Start() error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	last := t.now()
	for {
		select {
		case <-t.stop:
			return nil
		case <-ticker.C:
			now := t.now()
			t.fire(t.clamp(now.Sub(last)))
			last = now
		}
	}
}

// Stop ends the tick loop. It is safe to call more than once.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

func (t *Ticker) clamp(delta time.Duration) time.Duration {
	if t.maxDelta > 0 && delta > t.maxDelta {
		t.logger.Warn("tick delta clamped",
			zap.Duration("delta", delta),
			zap.Duration("max", t.maxDelta),
		)
		return t.maxDelta
	}
	return max(delta, 0)
}

func (t *Ticker) fire(delta time.Duration) {
	t.mu.Lock()
	names := make([]string, 0, len(t.ticks))
	for name := range t.ticks {
		names = append(names, name)
	}
	slices.Sort(names)
	callbacks := make([]func(time.Duration), len(names))
	for i, name := range names {
		callbacks[i] = t.ticks[name]
	}
	t.mu.Unlock()
	for _, fn := range callbacks {
		fn(delta)
	}
}
