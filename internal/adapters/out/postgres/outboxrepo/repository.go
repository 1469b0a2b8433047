// Package outboxrepo stores integration messages next to the state change they describe.
package outboxrepo

import (
	"context"
	"time"

	"ordermgmt/internal/adapters/out/postgres/pgerr"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/outbox"
	"ordermgmt/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageDTO is a row of outbox_messages. SentAt is NULL until delivery.
type MessageDTO struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	AggregateID uuid.UUID  `gorm:"type:uuid;not null"`
	EventType   string     `gorm:"type:varchar(100);not null"`
	Payload     []byte     `gorm:"type:jsonb;not null"`
	OccurredAt  time.Time  `gorm:"not null"`
	SentAt      *time.Time
}

// TableName implements gorm's tabler.
func (MessageDTO) TableName() string {
	return "outbox_messages"
}

// GormOutboxRepository implements ports.OutboxRepository on PostgreSQL.
type GormOutboxRepository struct {
	db *gorm.DB
}

// NewGormOutboxRepository binds the repository to db.
//
// Example:
//
//	pending, err := NewGormOutboxRepository(tx).ListPending(ctx, 100)
func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

// Add inserts the message in the caller's transaction, so it commits or rolls
// back with the change it announces.
func (r *GormOutboxRepository) Add(ctx context.Context, message *outbox.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	dto := MessageDTO{
		ID:          message.ID().Bytes(),
		AggregateID: message.AggregateID().Bytes(),
		EventType:   message.EventType(),
		Payload:     message.Payload(),
		OccurredAt:  message.OccurredAt(),
		SentAt:      message.SentAt(),
	}
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return pgerr.Classify("add outbox message", err)
	}
	return nil
}

// ListPending locks the returned rows until the transaction ends. Rows locked
// by another dispatcher are skipped.
func (r *GormOutboxRepository) ListPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}

	var dtos []MessageDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("sent_at IS NULL").
		Order("occurred_at ASC, id ASC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Classify("list outbox messages", err)
	}

	messages := make([]*outbox.Message, 0, len(dtos))
	for _, dto := range dtos {
		id, idErr := kernel.UUIDFromBytes(dto.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		aggregateID, idErr := kernel.UUIDFromBytes(dto.AggregateID[:])
		if idErr != nil {
			return nil, idErr
		}
		m, restoreErr := outbox.RestoreMessage(id, aggregateID, dto.EventType, dto.Payload, dto.OccurredAt, dto.SentAt)
		if restoreErr != nil {
			return nil, restoreErr
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// MarkSent stores the delivery time of message.
func (r *GormOutboxRepository) MarkSent(ctx context.Context, message *outbox.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	if !message.IsSent() {
		return errs.NewValueIsRequiredError("sentAt")
	}

	result := r.db.WithContext(ctx).
		Model(&MessageDTO{}).
		Where("id = ?", message.ID().Bytes()).
		Update("sent_at", message.SentAt())
	if result.Error != nil {
		return pgerr.Classify("mark outbox message sent", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("outbox message", message.ID().String())
	}
	return nil
}
