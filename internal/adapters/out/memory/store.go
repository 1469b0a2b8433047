// Package memory is an in-process implementation of the unit of work and its
// repositories. Reads see committed state plus the transaction's own writes;
// writers are serialized by a single write lock taken at the first write and
// held until Commit or Rollback, the same shape as row locks in PostgreSQL.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"
	"ordermgmt/internal/pkg/errs"
)

// ErrNoTransaction is returned by Commit and Rollback outside of Begin.
var ErrNoTransaction = errors.New("no active transaction")

// CommitHook runs once a commit's writes are visible, with the ids of the
// written aggregates.
type CommitHook func(ctx context.Context, aggregateIDs []kernel.UUID)

// FaultInjector lets tests fail a named storage operation. A fault on any
// operation but OpAcknowledgeCommit leaves the store untouched and surfaces as a
// transient StorageError.
type FaultInjector func(operation string) error

// OpAcknowledgeCommit names the point after a commit was applied. A fault there
// is reported as a non-transient StorageError, the way a connection lost while
// waiting for the COMMIT reply is.
const OpAcknowledgeCommit = "acknowledge commit"

// Option configures a Store.
type Option func(*Store)

// WithCommitHook adds hook; hooks run in the order they were added.
func WithCommitHook(hook CommitHook) Option {
	return func(s *Store) {
		s.hooks = append(s.hooks, hook)
	}
}

type messageRow struct {
	id          kernel.UUID
	aggregateID kernel.UUID
	eventType   string
	payload     []byte
	occurredAt  time.Time
	sentAt      *time.Time
}

// Store keeps committed orders, history and outbox rows in maps. It is safe
// for concurrent use by any number of units of work.
type Store struct {
	writer chan struct{}
	hooks  []CommitHook

	mu       sync.RWMutex
	orders   map[kernel.UUID]order.Snapshot
	events   map[kernel.UUID][]history.Record
	messages map[kernel.UUID]messageRow
	faults   FaultInjector
}

// NewStore returns an empty store.
//
// Example:
//
//	store := NewStore(WithCommitHook(func(ctx context.Context, ids []kernel.UUID) {
//	    _ = cache.Invalidate(ctx, ids...)
//	}))
//	uow := store.Create()
func NewStore(opts ...Option) *Store {
	s := &Store{
		writer:   make(chan struct{}, 1),
		orders:   make(map[kernel.UUID]order.Snapshot),
		events:   make(map[kernel.UUID][]history.Record),
		messages: make(map[kernel.UUID]messageRow),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create satisfies ports.UnitOfWorkFactory.
func (s *Store) Create() ports.UnitOfWork {
	return &UnitOfWork{store: s}
}

// InjectFaults installs f; nil removes it.
func (s *Store) InjectFaults(f FaultInjector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = f
}

func (s *Store) injected(operation string) error {
	s.mu.RLock()
	f := s.faults
	s.mu.RUnlock()
	if f == nil {
		return nil
	}
	return f(operation)
}

func (s *Store) fault(operation string) error {
	if err := s.injected(operation); err != nil {
		return errs.NewTransientStorageError(operation, err)
	}
	return nil
}

// check fails fast on an expired context or an injected fault.
func (s *Store) check(ctx context.Context, operation string) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return errs.NewTransientStorageError(operation, err)
		}
		return errs.NewStorageError(operation, err)
	}
	return s.fault(operation)
}

// UnitOfWork buffers writes until Commit. It must not be shared between
// goroutines.
type UnitOfWork struct {
	store       *Store
	active      bool
	holdsWriter bool

	orders   map[kernel.UUID]order.Snapshot
	events   map[kernel.UUID][]history.Record
	messages map[kernel.UUID]messageRow
	tracked  []kernel.UUID
}

// Begin starts a transaction. Calling it on an active unit is a no-op.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return nil
	}
	if err := u.store.check(ctx, "begin transaction"); err != nil {
		return err
	}
	u.active = true
	u.orders = make(map[kernel.UUID]order.Snapshot)
	u.events = make(map[kernel.UUID][]history.Record)
	u.messages = make(map[kernel.UUID]messageRow)
	u.tracked = nil
	return nil
}

// Commit publishes the buffered writes, runs the commit hooks and releases
// the write lock. A failure before the writes are applied leaves the store as
// it was and is transient.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if !u.active {
		return ErrNoTransaction
	}
	if err := u.store.check(ctx, "commit transaction"); err != nil {
		u.reset()
		return err
	}

	u.store.mu.Lock()
	for id, snapshot := range u.orders {
		u.store.orders[id] = snapshot
	}
	for id, records := range u.events {
		u.store.events[id] = append(u.store.events[id], records...)
	}
	for id, row := range u.messages {
		u.store.messages[id] = row
	}
	u.store.mu.Unlock()

	tracked := dedupe(u.tracked)
	u.reset()
	for _, hook := range u.store.hooks {
		hook(ctx, tracked)
	}

	// A fault here is a lost reply: the writes above are already visible.
	if err := u.store.injected(OpAcknowledgeCommit); err != nil {
		return errs.NewStorageError(OpAcknowledgeCommit, err)
	}
	return nil
}

// Rollback drops the buffered writes and releases the write lock.
func (u *UnitOfWork) Rollback(_ context.Context) error {
	if !u.active {
		return ErrNoTransaction
	}
	u.reset()
	return nil
}

// OrderRepository returns a repository bound to this transaction.
func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &orderRepository{uow: u}
}

// HistoryRepository returns a repository bound to this transaction.
func (u *UnitOfWork) HistoryRepository() ports.HistoryRepository {
	return &historyRepository{uow: u}
}

// OutboxRepository returns a repository bound to this transaction.
func (u *UnitOfWork) OutboxRepository() ports.OutboxRepository {
	return &outboxRepository{uow: u}
}

func (u *UnitOfWork) reset() {
	u.active = false
	u.orders = nil
	u.events = nil
	u.messages = nil
	u.tracked = nil
	if u.holdsWriter {
		u.holdsWriter = false
		<-u.store.writer
	}
}

// write runs fn inside the transaction, or in a transaction of its own when
// none is active.
func (u *UnitOfWork) write(ctx context.Context, operation string, fn func(tx *UnitOfWork) error) error {
	if !u.active {
		auto := &UnitOfWork{store: u.store}
		if err := auto.Begin(ctx); err != nil {
			return err
		}
		if err := auto.write(ctx, operation, fn); err != nil {
			_ = auto.Rollback(ctx)
			return err
		}
		return auto.Commit(ctx)
	}

	if err := u.store.check(ctx, operation); err != nil {
		return err
	}
	if !u.holdsWriter {
		select {
		case u.store.writer <- struct{}{}:
			u.holdsWriter = true
		case <-ctx.Done():
			return errs.NewTransientStorageError(operation, ctx.Err())
		}
	}
	return fn(u)
}

func (u *UnitOfWork) track(id kernel.UUID) {
	u.tracked = append(u.tracked, id)
}

func (u *UnitOfWork) order(id kernel.UUID) (order.Snapshot, bool) {
	if u.active {
		if s, ok := u.orders[id]; ok {
			return s, true
		}
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	s, ok := u.store.orders[id]
	return s, ok
}

func (u *UnitOfWork) history(id kernel.UUID) []history.Record {
	u.store.mu.RLock()
	committed := u.store.events[id]
	out := make([]history.Record, 0, len(committed)+len(u.events[id]))
	out = append(out, committed...)
	u.store.mu.RUnlock()
	if u.active {
		out = append(out, u.events[id]...)
	}
	return out
}

func dedupe(ids []kernel.UUID) []kernel.UUID {
	seen := make(map[kernel.UUID]struct{}, len(ids))
	out := make([]kernel.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
