package event

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Bus is a topic-keyed publish/subscribe channel. Handler bodies always run
// one at a time on the publishing goroutine; only Pending work returned by
// an AsyncHandler may run concurrently. A failing handler never affects the
// publisher or the handlers after it.
type Bus struct {
	mu       sync.RWMutex // only protects subscription bookkeeping
	handlers map[string]map[uint64]AsyncHandler
	nextID   uint64
	log      *zap.Logger
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[string]map[uint64]AsyncHandler),
		log:      log,
	}
}

// Subscribe registers fn for topic. Every call yields a distinct
// Subscription; Go funcs have no identity, so the handle is the identity.
func (b *Bus) Subscribe(topic string, fn Handler) Subscription {
	return b.SubscribeAsync(topic, func(ev Event) (Pending, error) {
		return nil, fn(ev)
	})
}

// SubscribeAsync registers fn for topic. The Pending work fn returns is
// awaited by PublishAsync and run inline by Publish.
func (b *Bus) SubscribeAsync(topic string, fn AsyncHandler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	set, ok := b.handlers[topic]
	if !ok {
		set = make(map[uint64]AsyncHandler, 4)
		b.handlers[topic] = set
	}
	set[b.nextID] = fn
	return Subscription{topic: topic, id: b.nextID}
}

// Unsubscribe removes sub. The topic is discarded once it has no handlers.
// Unsubscribing twice is a no-op.
func (b *Bus) Unsubscribe(sub Subscription) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.handlers[sub.topic]
	if !ok {
		return false
	}
	if _, ok := set[sub.id]; !ok {
		return false
	}
	delete(set, sub.id)
	if len(set) == 0 {
		delete(b.handlers, sub.topic)
	}
	return true
}

// HasSubscribers reports whether topic currently has at least one handler.
func (b *Bus) HasSubscribers(topic string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic]) > 0
}

// Publish delivers payload to every handler of topic synchronously. Pending
// work is run to completion right after its handler. Handler errors and
// panics are logged and swallowed.
func (b *Bus) Publish(topic string, payload any) {
	ev := Event{Topic: topic, Payload: payload}
	for _, h := range b.snapshot(topic) {
		if p := b.invoke(ev, h); p != nil {
			b.settle(context.Background(), ev, p)
		}
	}
}

// PublishAsync calls every handler of topic in order on the calling
// goroutine, then waits for the Pending work they returned to settle. Only
// that work runs concurrently. Failures are logged one by one. The only
// error returned is ctx's, when the caller stops waiting early.
func (b *Bus) PublishAsync(ctx context.Context, topic string, payload any) error {
	ev := Event{Topic: topic, Payload: payload}
	var pending []Pending
	for _, h := range b.snapshot(topic) {
		if p := b.invoke(ev, h); p != nil {
			pending = append(pending, p)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	var g errgroup.Group
	for _, p := range pending {
		p := p
		g.Go(func() error {
			b.settle(ctx, ev, p)
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// snapshot copies the handlers of topic in subscription order so handlers
// may subscribe or unsubscribe while being invoked.
func (b *Bus) snapshot(topic string) []AsyncHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	set := b.handlers[topic]
	if len(set) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]AsyncHandler, len(ids))
	for i, id := range ids {
		out[i] = set[id]
	}
	return out
}

func (b *Bus) invoke(ev Event, h AsyncHandler) (p Pending) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("event handler panicked",
				zap.String("topic", ev.Topic),
				zap.Any("panic", r))
			p = nil
		}
	}()
	var err error
	if p, err = h(ev); err != nil {
		b.log.Error("event handler failed",
			zap.String("topic", ev.Topic),
			zap.Error(err))
	}
	return p
}

func (b *Bus) settle(ctx context.Context, ev Event, p Pending) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("pending event work panicked",
				zap.String("topic", ev.Topic),
				zap.Any("panic", r))
		}
	}()
	if err := p(ctx); err != nil {
		b.log.Error("pending event work failed",
			zap.String("topic", ev.Topic),
			zap.Error(err))
	}
}

// SubscribeTo registers a handler receiving typed payloads. A payload of any
// other type is reported as a handler failure.
func SubscribeTo[T any](b *Bus, topic string, fn func(T) error) Subscription {
	return b.Subscribe(topic, func(ev Event) error {
		p, ok := ev.Payload.(T)
		if !ok {
			var zero T
			return fmt.Errorf("topic %s: payload %T is not %T", ev.Topic, ev.Payload, zero)
		}
		return fn(p)
	})
}
