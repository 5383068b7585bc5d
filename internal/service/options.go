package service

import (
	"context"
	"time"

	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

// EventPublisher receives approval lifecycle events after the write that
// produced them has committed. Implementations must not fail the caller.
type EventPublisher interface {
	PublishApprovalEvent(ctx context.Context, eventType string, req *repository.ApprovalRequest, data map[string]interface{})
}

type nopPublisher struct{}

func (nopPublisher) PublishApprovalEvent(context.Context, string, *repository.ApprovalRequest, map[string]interface{}) {
}

type options struct {
	now       func() time.Time
	publisher EventPublisher
}

// Option configures a service.
type Option func(*options)

// WithClock overrides the time source used to stamp posted and request dates.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithPublisher sets the approval event publisher. A nil publisher is ignored.
func WithPublisher(p EventPublisher) Option {
	return func(o *options) {
		if p != nil {
			o.publisher = p
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:       func() time.Time { return time.Now().UTC() },
		publisher: nopPublisher{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
