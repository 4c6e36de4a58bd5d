package audit

import (
	"context"
	"errors"
	"time"
)

// ErrQueueFull is returned by Emit when the worker has fallen behind.
var ErrQueueFull = errors.New("audit queue full")

// Publisher captures structured audit events. Without a queue it appends
// synchronously; with one it hands events to a Worker and never blocks.
type Publisher struct {
	store Store
	queue chan<- Event
}

type PublisherOption func(*Publisher)

// WithQueue routes events through ch instead of writing to the store inline.
func WithQueue(ch chan<- Event) PublisherOption {
	return func(p *Publisher) {
		p.queue = ch
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	if p.queue == nil {
		return p.store.Append(ctx, base)
	}
	select {
	case p.queue <- base:
		return nil
	default:
		return ErrQueueFull
	}
}
