// Package commands contains the operations that change order state.
// Every handler validates its command first, then runs one Unit of Work
// transaction: load, mutate, persist, commit.
package commands

import (
	"context"

	"ordermgmt/internal/core/ports"
)

type (
	// TxManager controls the transaction of a unit of work.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory hands out the order repository bound to the transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// HistoryRepoFactory hands out the history repository bound to the transaction.
	HistoryRepoFactory interface {
		HistoryRepository() ports.HistoryRepository
	}

	// OutboxRepoFactory hands out the outbox repository bound to the transaction.
	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// LifecycleUoW spans the order row, its history and the outbox, so a status
	// change and its audit event are committed together or not at all.
	//
	// Example:
	//   uow := factory.Create()
	//   if err := uow.Begin(ctx); err != nil { ... }
	//   defer func() { _ = uow.Rollback(ctx) }()
	//
	//   _ = uow.OrderRepository().Update(ctx, o)
	//   _, _ = uow.HistoryRepository().Append(ctx, event)
	//
	//   err = uow.Commit(ctx)
	LifecycleUoW interface {
		TxManager
		OrderRepoFactory
		HistoryRepoFactory
		OutboxRepoFactory
	}

	// LifecycleUoWFactory creates a fresh LifecycleUoW per attempt. Units of work
	// are not reused across retries.
	LifecycleUoWFactory interface {
		Create() LifecycleUoW
	}

	// OutboxUoW is used by the dispatcher, which touches nothing but the outbox.
	OutboxUoW interface {
		TxManager
		OutboxRepoFactory
	}

	// OutboxUoWFactory creates a fresh OutboxUoW per dispatch.
	OutboxUoWFactory interface {
		Create() OutboxUoW
	}
)
