package client

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/pesio-ai/be-product-catalog/internal/repository"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
}

// NotificationPublisher publishes approval lifecycle events to NATS.
//
// Subject convention: <prefix>.approval.<kind>
// Kinds: queued, approved, rejected
//
// All publish operations are non-fatal. Errors are logged but never returned,
// so a notification failure never interrupts a catalog operation.
type NotificationPublisher struct {
	conn   Conn
	prefix string
	log    zerolog.Logger
}

// NotificationEvent is the JSON schema published to NATS.
type NotificationEvent struct {
	EventType    string                 `json:"event_type"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	ProductID    *string                `json:"product_id,omitempty"`
	Name         string                 `json:"name"`
	Price        *string                `json:"price,omitempty"`
	Status       string                 `json:"status"`
	OccurredAt   time.Time              `json:"occurred_at"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
}

// NewNotificationPublisher creates a publisher backed by the given connection.
// A nil connection yields a publisher that drops every event.
func NewNotificationPublisher(conn Conn, prefix string, log zerolog.Logger) *NotificationPublisher {
	if prefix == "" {
		prefix = "catalog"
	}
	return &NotificationPublisher{conn: conn, prefix: prefix, log: log}
}

// Subject returns the subject an event type is published on.
func (p *NotificationPublisher) Subject(eventType string) string {
	kind := eventType
	switch eventType {
	case "approval_queued":
		kind = "queued"
	case "approval_approved":
		kind = "approved"
	case "approval_rejected":
		kind = "rejected"
	}
	return fmt.Sprintf("%s.approval.%s", p.prefix, kind)
}

// PublishApprovalEvent publishes an approval event for req.
func (p *NotificationPublisher) PublishApprovalEvent(ctx context.Context, eventType string, req *repository.ApprovalRequest, payload map[string]interface{}) {
	if p == nil || p.conn == nil || req == nil {
		return
	}

	event := &NotificationEvent{
		EventType:    eventType,
		ResourceType: "approval_request",
		ResourceID:   req.ID,
		ProductID:    req.ProductID,
		Name:         req.Name,
		Status:       string(req.Status),
		OccurredAt:   time.Now().UTC(),
		Payload:      payload,
	}
	if req.Price.Valid {
		s := req.Price.Decimal.String()
		event.Price = &s
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.log.Warn().Err(err).Str("event_type", eventType).Msg("notification: failed to marshal event")
		return
	}

	subject := p.Subject(eventType)
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Warn().Err(err).
			Str("subject", subject).
			Str("approval_id", req.ID).
			Msg("notification: failed to publish NATS event (non-fatal)")
		return
	}

	p.log.Debug().
		Str("subject", subject).
		Str("approval_id", req.ID).
		Msg("notification: event published")
}

// Connect dials NATS with reconnect logging.
func Connect(url, name string, log zerolog.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
}
