// Package postgres implements the unit of work over gorm. Repositories handed
// out after Begin share one database transaction.
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//	if _, err := uow.HistoryRepository().Append(ctx, event); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
package postgres

import (
	"context"

	"ordermgmt/internal/adapters/out/postgres/historyrepo"
	"ordermgmt/internal/adapters/out/postgres/orderrepo"
	"ordermgmt/internal/adapters/out/postgres/outboxrepo"
	"ordermgmt/internal/adapters/out/postgres/pgerr"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/ports"
	"ordermgmt/internal/pkg/errs"

	"gorm.io/gorm"
)

// CommitHook runs after a commit with the ids of the aggregates the transaction
// wrote. It also runs when the commit failed with an unknown outcome, since the
// writes may be visible. It must not fail the operation.
type CommitHook func(ctx context.Context, aggregateIDs []kernel.UUID)

// trackedAggregate is one write recorded during the transaction.
type trackedAggregate struct {
	// ID is the order the write belongs to; history appends report their order
	ID kernel.UUID
	// Aggregate is the written value, kept for diagnostics
	Aggregate any
}

// GormUnitOfWorkFactory creates units of work over one connection pool.
type GormUnitOfWorkFactory struct {
	db    *gorm.DB
	hooks []CommitHook
}

// FactoryOption configures a GormUnitOfWorkFactory.
type FactoryOption func(*GormUnitOfWorkFactory)

// WithCommitHook adds a hook to every unit of work the factory creates.
func WithCommitHook(hook CommitHook) FactoryOption {
	return func(f *GormUnitOfWorkFactory) {
		f.hooks = append(f.hooks, hook)
	}
}

// NewGormUnitOfWorkFactory returns a factory over db.
//
// Example:
//
//	factory := NewGormUnitOfWorkFactory(db, WithCommitHook(cache.InvalidateAfterCommit))
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
func NewGormUnitOfWorkFactory(db *gorm.DB, opts ...FactoryOption) *GormUnitOfWorkFactory {
	f := &GormUnitOfWorkFactory{db: db}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns an idle unit of work; nothing is opened until Begin.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:    f.db,
		hooks: f.hooks,
	}
}

// GormUnitOfWork wraps one gorm transaction. Without Begin, its repositories
// run each statement in autocommit mode, which is how the queries use it.
type GormUnitOfWork struct {
	// db is the pool, used for reads outside of a transaction
	db *gorm.DB
	// tx is the open transaction, nil before Begin and after Commit or Rollback
	tx *gorm.DB
	// hooks run after Commit with the ids of every tracked aggregate
	hooks []CommitHook
	// trackedAggregates collects the writes of the current transaction
	trackedAggregates []trackedAggregate
}

// Begin is idempotent while a transaction is open.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return pgerr.Classify("begin transaction", tx.Error)
	}
	uow.tx = tx
	return nil
}

// Commit ends the transaction. A failure that proves nothing was applied is a
// transient StorageError; any other failure is non-transient and the caller
// must not replay the transaction. See pgerr.ClassifyCommit.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	ids := uow.trackedIDs()
	uow.trackedAggregates = nil
	if err != nil {
		err = pgerr.ClassifyCommit("commit transaction", err)
		// The transaction may have been applied. Hooks still run so nothing
		// keeps serving what was there before it.
		if !errs.IsTransient(err) {
			uow.runHooks(ctx, ids)
		}
		return err
	}

	uow.runHooks(ctx, ids)
	return nil
}

// runHooks calls every hook in registration order.
func (uow *GormUnitOfWork) runHooks(ctx context.Context, ids []kernel.UUID) {
	for _, hook := range uow.hooks {
		hook(ctx, ids)
	}
}

// Rollback aborts the transaction and forgets the tracked aggregates.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = nil
	return err
}

// OrderRepository returns a repository on the open transaction, or on the pool.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

// HistoryRepository returns a repository on the open transaction, or on the pool.
func (uow *GormUnitOfWork) HistoryRepository() ports.HistoryRepository {
	return historyrepo.NewGormHistoryRepository(uow.conn(), uow)
}

// OutboxRepository returns a repository on the open transaction, or on the pool.
func (uow *GormUnitOfWork) OutboxRepository() ports.OutboxRepository {
	return outboxrepo.NewGormOutboxRepository(uow.conn())
}

// TrackAggregate is called by repositories for every aggregate they write.
// The ids are handed to the commit hooks; a rolled back transaction forgets
// them.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// conn returns the transaction when one is open.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// trackedIDs returns each tracked id once, in first-write order.
func (uow *GormUnitOfWork) trackedIDs() []kernel.UUID {
	seen := make(map[kernel.UUID]struct{}, len(uow.trackedAggregates))
	ids := make([]kernel.UUID, 0, len(uow.trackedAggregates))
	for _, t := range uow.trackedAggregates {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		ids = append(ids, t.ID)
	}
	return ids
}
