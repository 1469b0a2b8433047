// Package historyrepo stores the append-only order history log.
package historyrepo

import (
	"time"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// EventDTO is a row of order_history. (order_id, sequence) is unique, which
// rejects a second writer that read the same tail.
type EventDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_order_history_sequence,priority:1"`
	Sequence   int64     `gorm:"not null;uniqueIndex:uq_order_history_sequence,priority:2"`
	Kind       string    `gorm:"type:varchar(20);not null"`
	OccurredAt time.Time `gorm:"not null"`
	Actor      string    `gorm:"type:varchar(255);not null"`
	FromStatus *string   `gorm:"type:varchar(20)"`
	ToStatus   *string   `gorm:"type:varchar(20)"`
	Comment    string    `gorm:"type:text;not null"`
	Content    string    `gorm:"type:text;not null"`
	IsInternal bool      `gorm:"not null"`
}

// TableName implements gorm's tabler.
func (EventDTO) TableName() string {
	return "order_history"
}

func fromDomain(e *history.Event) EventDTO {
	r := e.Record()
	dto := EventDTO{
		ID:         r.ID.Bytes(),
		OrderID:    r.OrderID.Bytes(),
		Sequence:   r.Sequence,
		Kind:       r.Kind.String(),
		OccurredAt: r.OccurredAt,
		Actor:      r.Actor,
		Comment:    r.Comment,
		Content:    r.Content,
		IsInternal: r.IsInternal,
	}
	if r.Kind == history.KindStatusChange {
		to := r.ToStatus.String()
		dto.ToStatus = &to
		if r.FromStatus != nil {
			from := r.FromStatus.String()
			dto.FromStatus = &from
		}
	}
	return dto
}

func toDomain(dto EventDTO) (*history.Event, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	kind, err := history.ParseKind(dto.Kind)
	if err != nil {
		return nil, err
	}

	r := history.Record{
		ID:         id,
		OrderID:    orderID,
		Kind:       kind,
		OccurredAt: dto.OccurredAt,
		Sequence:   dto.Sequence,
		Actor:      dto.Actor,
		Comment:    dto.Comment,
		Content:    dto.Content,
		IsInternal: dto.IsInternal,
	}
	if dto.ToStatus != nil {
		if r.ToStatus, err = order.ParseStatus(*dto.ToStatus); err != nil {
			return nil, err
		}
	}
	if dto.FromStatus != nil {
		from, fromErr := order.ParseStatus(*dto.FromStatus)
		if fromErr != nil {
			return nil, fromErr
		}
		r.FromStatus = &from
	}

	return history.RestoreEvent(r)
}
