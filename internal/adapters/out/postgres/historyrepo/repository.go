package historyrepo

import (
	"context"
	"errors"
	"time"

	"ordermgmt/internal/adapters/out/postgres/pgerr"
	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormHistoryRepository implements ports.HistoryRepository on PostgreSQL.
type GormHistoryRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormHistoryRepository binds the repository to db, which is either an open
// transaction or the pool. tracker learns about every order whose history
// was appended to.
//
// Example:
//
//	repo := NewGormHistoryRepository(tx, uow)
//	stored, err := repo.Append(ctx, event)
//	// stored.Sequence() follows the previous tail
func NewGormHistoryRepository(db *gorm.DB, tracker aggregateTracker) *GormHistoryRepository {
	return &GormHistoryRepository{
		db:      db,
		tracker: tracker,
	}
}

type orderRow struct {
	ID uuid.UUID
}

type tailRow struct {
	Sequence   int64
	OccurredAt time.Time
}

// Append locks the owning order row so appends to one order are serialized,
// then stores the event after the current tail of the log.
func (r *GormHistoryRepository) Append(ctx context.Context, event *history.Event) (*history.Event, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	db := r.db.WithContext(ctx)
	orderID := event.OrderID()

	var owner orderRow
	err := db.Table("orders").
		Select("id").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", orderID.Bytes()).
		Take(&owner).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("order", orderID.String())
	}
	if err != nil {
		return nil, pgerr.Classify("lock order", err)
	}

	var tail tailRow
	err = db.Model(&EventDTO{}).
		Select("sequence, occurred_at").
		Where("order_id = ?", orderID.Bytes()).
		Order("sequence DESC").
		Take(&tail).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pgerr.Classify("read history tail", err)
	}

	occurredAt := event.OccurredAt()
	if occurredAt.Before(tail.OccurredAt) {
		occurredAt = tail.OccurredAt
	}
	stored := event.Stored(tail.Sequence+1, occurredAt)

	dto := fromDomain(stored)
	if err = db.Create(&dto).Error; err != nil {
		if pgerr.IsUniqueViolation(err) {
			return nil, errs.NewConcurrencyConflictErrorWithCause("order history", orderID.String(), tail.Sequence, err)
		}
		return nil, pgerr.Classify("append history", err)
	}

	r.tracker.TrackAggregate(orderID, stored)
	return stored, nil
}

// ListByOrder returns every event of the order oldest first. An unknown order
// yields an empty slice.
func (r *GormHistoryRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*history.Event, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}

	var dtos []EventDTO
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("occurred_at ASC, sequence ASC").
		Find(&dtos).Error
	if err != nil {
		return nil, pgerr.Classify("list history", err)
	}

	events := make([]*history.Event, 0, len(dtos))
	for _, dto := range dtos {
		e, convErr := toDomain(dto)
		if convErr != nil {
			return nil, convErr
		}
		events = append(events, e)
	}
	return events, nil
}
