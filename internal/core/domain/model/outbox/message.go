// Package outbox models integration messages written in the same transaction
// as the state change they announce and published later by a background job.
package outbox

import (
	"encoding/json"
	"errors"
	"time"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/pkg/errs"
)

// EventTypeOrderStatusChanged is the event type of every status change message.
// Payload versions are carried inside the payload as event_version.
const (
	EventTypeOrderStatusChanged = "order.status_changed"
	eventVersion                = 1
)

// ErrMessageIsNotConstructed is returned by Message.Validate for a nil or zero value Message.
var ErrMessageIsNotConstructed = errors.New("Message must be created via NewStatusChangedMessage or RestoreMessage")

// Message is an integration event waiting in the outbox, or one already sent.
//
// Messages are added in the same transaction as the change they announce, so a
// message exists exactly when its change was committed. A background job reads
// the pending ones oldest first, publishes them and marks them sent. Delivery is
// at least once.
type Message struct {
	id          kernel.UUID
	aggregateID kernel.UUID
	eventType   string
	payload     []byte
	occurredAt  time.Time
	sentAt      *time.Time
}

// StatusChangedPayload is the wire format of order.status_changed.
type StatusChangedPayload struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	EventVersion  int       `json:"event_version"`
	OccurredAt    time.Time `json:"occurred_at"`
	OrderID       string    `json:"order_id"`
	CustomerID    string    `json:"customer_id"`
	FromStatus    *string   `json:"from_status"`
	ToStatus      string    `json:"to_status"`
	Actor         string    `json:"actor"`
	Comment       string    `json:"comment,omitempty"`
	Total         string    `json:"total"`
	Currency      string    `json:"currency"`
	PaymentStatus string    `json:"payment_status"`
	Sequence      int64     `json:"sequence"`
}

// NewStatusChangedMessage announces a stored status change event of o.
// The event must be the one returned by HistoryRepository.Append, so the payload
// carries its sequence and timestamp.
//
// Example:
//
//	stored, err := uow.HistoryRepository().Append(ctx, event)
//	if err != nil {
//	    return err
//	}
//	msg, err := outbox.NewStatusChangedMessage(o, stored)
//	if err != nil {
//	    return err
//	}
//	return uow.OutboxRepository().Add(ctx, msg)
func NewStatusChangedMessage(o *order.Order, event *history.Event) (*Message, error) {
	if err := errors.Join(o.Validate(), event.Validate()); err != nil {
		return nil, err
	}
	if event.Kind() != history.KindStatusChange {
		return nil, errs.NewValueIsInvalidError("event kind")
	}

	var from *string
	if f := event.FromStatus(); f != nil {
		name := f.String()
		from = &name
	}

	id := kernel.NewUUID()
	payload, err := json.Marshal(StatusChangedPayload{
		EventID:       id.String(),
		EventType:     EventTypeOrderStatusChanged,
		EventVersion:  eventVersion,
		OccurredAt:    event.OccurredAt(),
		OrderID:       o.ID().String(),
		CustomerID:    o.CustomerID().String(),
		FromStatus:    from,
		ToStatus:      event.ToStatus().String(),
		Actor:         event.Actor(),
		Comment:       event.Comment(),
		Total:         o.Total().Amount().StringFixed(2),
		Currency:      o.Currency(),
		PaymentStatus: o.PaymentStatus().String(),
		Sequence:      event.Sequence(),
	})
	if err != nil {
		return nil, err
	}

	return &Message{
		id:          id,
		aggregateID: o.ID(),
		eventType:   EventTypeOrderStatusChanged,
		payload:     payload,
		occurredAt:  event.OccurredAt(),
	}, nil
}

// RestoreMessage rebuilds a stored message.
//
// Example:
//
//	m, err := outbox.RestoreMessage(dto.ID, dto.AggregateID, dto.EventType, dto.Payload, dto.OccurredAt, dto.SentAt)
func RestoreMessage(
	id, aggregateID kernel.UUID,
	eventType string,
	payload []byte,
	occurredAt time.Time,
	sentAt *time.Time,
) (*Message, error) {
	if err := errors.Join(id.Validate(), aggregateID.Validate()); err != nil {
		return nil, err
	}
	if eventType == "" {
		return nil, errs.NewValueIsRequiredError("eventType")
	}
	return &Message{
		id:          id,
		aggregateID: aggregateID,
		eventType:   eventType,
		payload:     payload,
		occurredAt:  occurredAt.UTC(),
		sentAt:      sentAt,
	}, nil
}

// Validate ensures the message was built by one of its constructors.
func (m *Message) Validate() error {
	if m == nil || m.id.Validate() != nil {
		return ErrMessageIsNotConstructed
	}
	return nil
}

// ID is the message identifier. Consumers dedupe on it.
func (m *Message) ID() kernel.UUID { return m.id }

// AggregateID is the order the message is about. Publishers use it as the
// partition key so one order's messages stay in sequence.
func (m *Message) AggregateID() kernel.UUID { return m.aggregateID }

// EventType names the payload schema, for example EventTypeOrderStatusChanged.
func (m *Message) EventType() string { return m.eventType }

// OccurredAt is the time of the state change the message announces.
func (m *Message) OccurredAt() time.Time { return m.occurredAt }

// SentAt is nil until the message was published.
func (m *Message) SentAt() *time.Time { return m.sentAt }

// IsSent reports whether MarkSent was called or the stored row was sent.
func (m *Message) IsSent() bool { return m.sentAt != nil }

// Payload returns a copy of the encoded body.
func (m *Message) Payload() []byte {
	out := make([]byte, len(m.payload))
	copy(out, m.payload)
	return out
}

// MarkSent records the publication time.
func (m *Message) MarkSent(at time.Time) {
	t := at.UTC()
	m.sentAt = &t
}
