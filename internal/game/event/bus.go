package event

import (
	"sync"

	"go.uber.org/zap"
)

type subscription struct {
	id int
	fn func(Event)
}

// Bus dispatches events synchronously to subscribers, in subscription order,
// on the publishing goroutine. Handlers may publish further events.
// All methods are safe for concurrent use.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Name][]subscription
	all      []subscription
	nextID   int
	logger   *zap.Logger
}

// NewBus creates an empty Bus. A nil logger disables debug tracing.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{handlers: make(map[Name][]subscription), logger: logger}
}

// Subscribe registers fn for every event of payload type E and returns a
// function that removes the subscription.
//
// Precondition: b and fn must be non-nil.
func Subscribe[E Event](b *Bus, fn func(E)) (unsubscribe func()) {
	var zero E
	name := zero.EventName()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.handlers[name] = append(b.handlers[name], subscription{
		id: id,
		fn: func(e Event) {
			if typed, ok := e.(E); ok {
				fn(typed)
			}
		},
	})
	return func() { b.remove(name, id) }
}

// SubscribeAll registers fn for every event regardless of type.
func (b *Bus) SubscribeAll(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, fn: fn})
	return func() { b.remove("", id) }
}

func (b *Bus) remove(name Name, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if name == "" {
		b.all = without(b.all, id)
		return
	}
	b.handlers[name] = without(b.handlers[name], id)
	if len(b.handlers[name]) == 0 {
		delete(b.handlers, name)
	}
}

func without(subs []subscription, id int) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

// Publish delivers e to its typed subscribers, then to catch-all subscribers.
// A nil Bus discards the event.
func (b *Bus) Publish(e Event) {
	if b == nil || e == nil {
		return
	}
	b.mu.RLock()
	typed := append([]subscription(nil), b.handlers[e.EventName()]...)
	all := append([]subscription(nil), b.all...)
	b.mu.RUnlock()

	b.logger.Debug("event published",
		zap.String("event", string(e.EventName())),
		zap.Int("subscribers", len(typed)+len(all)),
	)
	for _, s := range typed {
		s.fn(e)
	}
	for _, s := range all {
		s.fn(e)
	}
}
