package jobs

import (
	"context"
	"time"

	"ordermgmt/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// OutboxPublisher is the use case the dispatch job drives.
type OutboxPublisher interface {
	Handle(ctx context.Context, cmd commands.PublishOutboxCommand) (int, error)
}

// OutboxDispatchJob pushes pending outbox messages to the broker on a cron
// schedule. A tick that finds the previous run still busy is skipped.
type OutboxDispatchJob struct {
	handler   OutboxPublisher
	schedule  string
	batchSize int
	timeout   time.Duration
	cron      *cron.Cron
	logger    *zap.Logger
}

// NewOutboxDispatchJob creates the job. schedule is a six-field cron spec with
// seconds; timeout bounds each run.
//
// Example:
//
//	job := NewOutboxDispatchJob(&handler, "*/2 * * * * *", 100, 5*time.Second, logger)
//	if err := job.Start(); err != nil {
//	    return err
//	}
//	defer job.Stop()
func NewOutboxDispatchJob(
	handler OutboxPublisher,
	schedule string,
	batchSize int,
	timeout time.Duration,
	logger *zap.Logger,
) *OutboxDispatchJob {
	return &OutboxDispatchJob{
		handler:   handler,
		schedule:  schedule,
		batchSize: batchSize,
		timeout:   timeout,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With(zap.String("component", "outbox_dispatch_job")),
	}
}

// Start validates the batch size and schedule, then starts the cron.
func (j *OutboxDispatchJob) Start() error {
	cmd, err := commands.NewPublishOutboxCommand(j.batchSize)
	if err != nil {
		return err
	}
	if _, err = j.cron.AddFunc(j.schedule, func() { j.run(cmd) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("outbox dispatch job started", zap.String("schedule", j.schedule))
	return nil
}

func (j *OutboxDispatchJob) run(cmd commands.PublishOutboxCommand) {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	sent, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.Error("outbox dispatch failed", zap.Error(err))
		return
	}
	if sent > 0 {
		j.logger.Debug("outbox messages published", zap.Int("count", sent))
	}
}

// Stop waits for a running dispatch to finish.
func (j *OutboxDispatchJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("outbox dispatch job stopped")
}
