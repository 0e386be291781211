package event

import "context"

// Event is one published message. Payload is topic specific and may be nil.
type Event struct {
	Topic   string
	Payload any
}

// Handler processes an event. A returned error is logged by the Bus.
type Handler func(Event) error

// Pending is follow-up work returned by an AsyncHandler. It must not touch
// ECS state; everything that does belongs in the handler body.
type Pending func(ctx context.Context) error

// AsyncHandler processes an event on the publishing goroutine and may hand
// back Pending work. A nil Pending means there is nothing left to wait for.
type AsyncHandler func(Event) (Pending, error)

// Subscription identifies one registered handler.
type Subscription struct {
	topic string
	id    uint64
}

func (s Subscription) Topic() string { return s.topic }
