package history

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/pkg/errs"
	"ordermgmt/internal/pkg/guard"
)

// ErrEventIsNotConstructed is returned by Event.Validate for a nil or zero value Event.
var ErrEventIsNotConstructed = errors.New("Event must be created via NewStatusChangeEvent or NewNoteEvent")

// Limits on the free-text fields of an event. Values are measured in bytes
// after trimming.
const (
	MaxContentLength = 4000
	MaxActorLength   = 255
)

// Event is one entry of an order's audit trail: a status change or a note.
//
// Events are immutable. The store assigns Sequence on append and may move
// OccurredAt forward so that the timeline of an order never goes backwards;
// Stored returns that copy and leaves the original untouched.
//
// A status change carries FromStatus (nil for the creation event), ToStatus and
// an optional Comment. A note carries Content and the IsInternal flag.
type Event struct {
	// id uniquely identifies the event
	id kernel.UUID
	// orderID is the order the event belongs to
	orderID kernel.UUID
	// kind tells status changes and notes apart
	kind Kind
	// occurredAt is a UTC instant, never earlier than the previous event's
	occurredAt time.Time
	// sequence is the position in the order's log, zero until stored
	sequence int64
	// actor identifies who caused the event
	actor string

	// status change
	fromStatus *order.Status
	toStatus   order.Status
	comment    string

	// note
	content    string
	isInternal bool

	// guard ensures the event was built by a constructor
	guard guard.ConstructorGuard
}

// NewStatusChangeEvent records a move from -> to. A nil from marks the creation
// of the order and requires to be pending; otherwise from -> to must be an edge
// of the status graph.
//
// Parameters:
//   - orderID: the order that moved
//   - from: the status left, nil only for creation
//   - to: the status entered
//   - actor: who moved it, at most MaxActorLength bytes
//   - comment: optional, at most MaxContentLength bytes
//   - occurredAt: when the move happened
//
// Example:
//
//	from := order.Pending
//	e, err := history.NewStatusChangeEvent(orderID, &from, order.Processing,
//	    "staff-1", "", clock.Now())
//	stored, err := uow.HistoryRepository().Append(ctx, e)
func NewStatusChangeEvent(
	orderID kernel.UUID,
	from *order.Status,
	to order.Status,
	actor string,
	comment string,
	occurredAt time.Time,
) (*Event, error) {
	e := &Event{
		id:         kernel.NewUUID(),
		kind:       KindStatusChange,
		occurredAt: occurredAt.UTC(),
		toStatus:   to,
		comment:    strings.TrimSpace(comment),
	}

	var edgeErr error
	switch {
	case from == nil && to != order.Pending:
		edgeErr = order.NewInvalidTransitionError(orderID, order.Unknown, to)
	case from != nil && !order.IsValidTransition(*from, to):
		edgeErr = order.NewInvalidTransitionError(orderID, *from, to)
	}
	if from != nil {
		f := *from
		e.fromStatus = &f
	}

	var commentErr error
	if len(e.comment) > MaxContentLength {
		commentErr = errs.NewValueIsOutOfRangeError("comment", len(e.comment), 0, MaxContentLength)
	}

	if err := errors.Join(
		e.setOrderID(orderID),
		e.setActor(actor),
		e.setOccurredAt(occurredAt),
		edgeErr,
		commentErr,
	); err != nil {
		return nil, err
	}

	e.guard = guard.NewConstructorGuard()
	return e, nil
}

// NewNoteEvent records a free-text annotation. Content is trimmed and must not be empty.
//
// Example:
//
//	note, err := history.NewNoteEvent(orderID, "staff-1", "Customer asked for a call", true, clock.Now())
func NewNoteEvent(orderID kernel.UUID, actor, content string, isInternal bool, occurredAt time.Time) (*Event, error) {
	e := &Event{
		id:         kernel.NewUUID(),
		kind:       KindNote,
		occurredAt: occurredAt.UTC(),
		isInternal: isInternal,
	}

	if err := errors.Join(
		e.setOrderID(orderID),
		e.setActor(actor),
		e.setContent(content),
		e.setOccurredAt(occurredAt),
	); err != nil {
		return nil, err
	}

	e.guard = guard.NewConstructorGuard()
	return e, nil
}

// Record is the stored form of an event. Persistence adapters and the timeline
// cache convert to and from it with Event.Record and RestoreEvent.
type Record struct {
	ID         kernel.UUID
	OrderID    kernel.UUID
	Kind       Kind
	OccurredAt time.Time
	Sequence   int64
	Actor      string
	FromStatus *order.Status
	ToStatus   order.Status
	Comment    string
	Content    string
	IsInternal bool
}

// RestoreEvent rebuilds a stored event. Graph edges are not re-checked: an edge
// was legal when it was appended, which is the only moment that matters.
//
// Example:
//
//	e, err := history.RestoreEvent(history.Record{
//	    ID:         id,
//	    OrderID:    orderID,
//	    Kind:       history.KindNote,
//	    OccurredAt: occurredAt,
//	    Sequence:   3,
//	    Actor:      "staff-1",
//	    Content:    "Called the customer",
//	    IsInternal: true,
//	})
func RestoreEvent(r Record) (*Event, error) {
	var kindErr error
	switch r.Kind {
	case KindStatusChange:
		kindErr = r.ToStatus.Validate()
	case KindNote:
	default:
		kindErr = errs.NewValueIsInvalidErrorWithCause("kind", fmt.Errorf("%d is not an event kind", r.Kind))
	}

	var sequenceErr error
	if r.Sequence < 1 {
		sequenceErr = errs.NewValueIsOutOfRangeError("sequence", r.Sequence, 1, "unbounded")
	}

	var idErr error
	if err := r.ID.Validate(); err != nil {
		idErr = errs.NewValueIsRequiredErrorWithCause("id", err)
	}

	if err := errors.Join(idErr, r.OrderID.Validate(), kindErr, sequenceErr); err != nil {
		return nil, err
	}

	e := &Event{
		id:         r.ID,
		orderID:    r.OrderID,
		kind:       r.Kind,
		occurredAt: r.OccurredAt.UTC(),
		sequence:   r.Sequence,
		actor:      r.Actor,
		toStatus:   r.ToStatus,
		comment:    r.Comment,
		content:    r.Content,
		isInternal: r.IsInternal,
		guard:      guard.NewConstructorGuard(),
	}
	if r.FromStatus != nil {
		f := *r.FromStatus
		e.fromStatus = &f
	}
	return e, nil
}

// Stored returns a copy carrying the store-assigned sequence and timestamp.
// The receiver is not modified.
func (e *Event) Stored(sequence int64, occurredAt time.Time) *Event {
	c := *e
	c.sequence = sequence
	c.occurredAt = occurredAt.UTC()
	if e.fromStatus != nil {
		f := *e.fromStatus
		c.fromStatus = &f
	}
	return &c
}

// Record exposes the event fields for persistence.
func (e *Event) Record() Record {
	return Record{
		ID:         e.id,
		OrderID:    e.orderID,
		Kind:       e.kind,
		OccurredAt: e.occurredAt,
		Sequence:   e.sequence,
		Actor:      e.actor,
		FromStatus: e.FromStatus(),
		ToStatus:   e.toStatus,
		Comment:    e.comment,
		Content:    e.content,
		IsInternal: e.isInternal,
	}
}

// Validate ensures the event was built by one of its constructors.
func (e *Event) Validate() error {
	if e == nil {
		return ErrEventIsNotConstructed
	}
	return e.guard.Validate(ErrEventIsNotConstructed)
}

// ID returns the event identifier, assigned when the event is built.
func (e *Event) ID() kernel.UUID { return e.id }

// OrderID returns the order the event belongs to.
func (e *Event) OrderID() kernel.UUID { return e.orderID }

// Kind tells status changes and notes apart.
func (e *Event) Kind() Kind { return e.kind }

// OccurredAt returns the UTC instant of the event. For a stored event it is
// the store's timestamp, never earlier than the previous event of the order.
func (e *Event) OccurredAt() time.Time { return e.occurredAt }

// Actor identifies who caused the event: a user id, or a system name.
func (e *Event) Actor() string { return e.actor }

// ToStatus returns the status entered. Unknown for notes.
func (e *Event) ToStatus() order.Status { return e.toStatus }

// Comment returns the status change comment. Empty for notes.
func (e *Event) Comment() string { return e.comment }

// Content returns the note text. Empty for status changes.
func (e *Event) Content() string { return e.content }

// IsInternal marks notes hidden from customers on the timeline.
func (e *Event) IsInternal() bool { return e.isInternal }

// Sequence is zero until the store assigned one.
func (e *Event) Sequence() int64 {
	return e.sequence
}

// FromStatus is nil for the creation event and for notes.
func (e *Event) FromStatus() *order.Status {
	if e.fromStatus == nil {
		return nil
	}
	f := *e.fromStatus
	return &f
}

// Before reports whether e sorts before other on the timeline.
func (e *Event) Before(other *Event) bool {
	if !e.occurredAt.Equal(other.occurredAt) {
		return e.occurredAt.Before(other.occurredAt)
	}
	return e.sequence < other.sequence
}

// setOrderID sets the owning order with validation.
func (e *Event) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	e.orderID = id
	return nil
}

// setActor trims the actor and bounds it by MaxActorLength.
// This is an internal setter used by both constructors.
func (e *Event) setActor(actor string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return errs.NewValueIsRequiredError("actor")
	}
	if len(actor) > MaxActorLength {
		return errs.NewValueIsOutOfRangeError("actor", len(actor), 1, MaxActorLength)
	}
	e.actor = actor
	return nil
}

// setContent trims a note body; an empty note is rejected.
func (e *Event) setContent(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errs.NewValueIsRequiredError("content")
	}
	if len(content) > MaxContentLength {
		return errs.NewValueIsOutOfRangeError("content", len(content), 1, MaxContentLength)
	}
	e.content = content
	return nil
}

// setOccurredAt only validates. The constructors keep the UTC instant.
func (e *Event) setOccurredAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("occurredAt")
	}
	return nil
}
