// Package jobs provides scheduled background tasks built on
// github.com/robfig/cron/v3 with second-level schedules.
//
// OutboxDispatchJob publishes order status events written to the outbox by
// the lifecycle commands. Delivery is at least once: a message is marked sent
// only after the broker acknowledged it, so a crash in between republishes it.
//
//	manager := jobs.NewJobManager()
//	manager.Add("outbox dispatch", jobs.NewOutboxDispatchJob(handler, "*/2 * * * * *", 100, 10*time.Second, logger))
//	if err := manager.StartAll(); err != nil {
//		return err
//	}
//	defer manager.StopAll()
package jobs
