package cmd

import (
	httpin "ordermgmt/internal/adapters/in/http"
	"ordermgmt/internal/adapters/out/policy"
	"ordermgmt/internal/adapters/out/postgres"
	"ordermgmt/internal/adapters/out/redis"
	"ordermgmt/internal/core/application/usecases/commands"
	"ordermgmt/internal/core/application/usecases/queries"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/ports"
	"ordermgmt/internal/jobs"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Infrastructure holds the connections built by main.
type Infrastructure struct {
	DB        *gorm.DB
	Cache     *redis.TimelineCache // nil disables the timeline cache
	Publisher ports.MessagePublisher // nil leaves the outbox undelivered
	Metrics   ports.LifecycleMetrics
	Logger    *zap.Logger
}

// CompositionRoot wires the use cases to the adapters. It owns no
// connections; main builds them and passes them in through Infrastructure.
type CompositionRoot struct {
	cfg        Config
	infra      Infrastructure
	uowFactory *postgres.GormUnitOfWorkFactory
	clock      ports.Clock
	checker    ports.PermissionChecker
	cache      ports.TimelineCache
}

// NewCompositionRoot builds the unit of work factory and picks the permission
// checker. With a timeline cache configured, every commit that touched an
// order invalidates its cached timeline.
//
// Parameters:
//   - cfg: the loaded configuration
//   - infra: the connections and sinks built by main
//
// Example:
//
//	root := NewCompositionRoot(cfg, Infrastructure{
//	    DB:      db,
//	    Cache:   redis.NewTimelineCache(client, cfg.TimelineCacheTTL, logger),
//	    Metrics: metrics.NewLifecycle(prometheus.DefaultRegisterer),
//	    Logger:  logger,
//	})
//	server := root.CreateHTTPServer()
func NewCompositionRoot(cfg Config, infra Infrastructure) CompositionRoot {
	var (
		opts  []postgres.FactoryOption
		cache ports.TimelineCache
	)
	if infra.Cache != nil {
		opts = append(opts, postgres.WithCommitHook(infra.Cache.InvalidateAfterCommit))
		cache = infra.Cache
	}

	var checker ports.PermissionChecker = policy.AllowAll{}
	if cfg.AuthorizationEnabled {
		checker = policy.NewRolePolicy()
	}

	return CompositionRoot{
		cfg:        cfg,
		infra:      infra,
		uowFactory: postgres.NewGormUnitOfWorkFactory(infra.DB, opts...),
		clock:      kernel.NewMonotonicClock(),
		checker:    checker,
		cache:      cache,
	}
}

func (c *CompositionRoot) retryPolicy() commands.RetryPolicy {
	p := commands.DefaultRetryPolicy()
	p.MaxRetries = c.cfg.StorageMaxRetries
	p.Timeout = c.cfg.StorageTimeout
	return p
}

func (c *CompositionRoot) lifecycleUoWFactory() commands.LifecycleUoWFactory {
	return FuncLifecycleUoWFactory(func() commands.LifecycleUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) readerFactory() queries.LifecycleReaderFactory {
	return FuncLifecycleReaderFactory(func() queries.LifecycleReader {
		return c.uowFactory.Create()
	})
}

// CreateCreateOrderCommandHandler returns a handler sharing the root's clock and retry policy.
func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(
		c.lifecycleUoWFactory(), c.clock, c.checker, c.retryPolicy(), c.infra.Metrics, c.infra.Logger)
}

// CreateTransitionStatusCommandHandler returns the handler for status moves.
func (c *CompositionRoot) CreateTransitionStatusCommandHandler() commands.TransitionStatusCommandHandler {
	return commands.NewTransitionStatusCommandHandler(
		c.lifecycleUoWFactory(), c.clock, c.checker, c.retryPolicy(), c.infra.Metrics, c.infra.Logger)
}

// CreateCancelOrderCommandHandler returns the handler for cancellations.
func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(
		c.lifecycleUoWFactory(), c.clock, c.checker, c.retryPolicy(), c.infra.Metrics, c.infra.Logger)
}

// CreateAddNoteCommandHandler returns the handler for notes.
func (c *CompositionRoot) CreateAddNoteCommandHandler() commands.AddNoteCommandHandler {
	return commands.NewAddNoteCommandHandler(
		c.lifecycleUoWFactory(), c.clock, c.checker, c.retryPolicy(), c.infra.Metrics, c.infra.Logger)
}

// CreatePublishOutboxCommandHandler returns the outbox dispatcher. It is only
// useful when Infrastructure.Publisher is set.
func (c *CompositionRoot) CreatePublishOutboxCommandHandler() commands.PublishOutboxCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPublishOutboxCommandHandler(f, c.infra.Publisher, c.clock, c.infra.Logger)
}

// CreateGetOrderQueryHandler returns a reader bounded by StorageTimeout.
func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.readerFactory(), c.cfg.StorageTimeout)
}

// CreateGetTimelineQueryHandler returns the timeline reader, cached when Redis is configured.
func (c *CompositionRoot) CreateGetTimelineQueryHandler() queries.GetTimelineQueryHandler {
	return queries.NewGetTimelineQueryHandler(c.readerFactory(), c.cache, c.cfg.StorageTimeout, c.infra.Logger)
}

// CreateListValidNextStatusesQueryHandler returns the next statuses reader.
func (c *CompositionRoot) CreateListValidNextStatusesQueryHandler() queries.ListValidNextStatusesQueryHandler {
	return queries.NewListValidNextStatusesQueryHandler(c.readerFactory(), c.cfg.StorageTimeout)
}

// CreateListOrdersQueryHandler returns the paged listing, bounded by StorageTimeout.
func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.infra.DB, c.cfg.StorageTimeout)
}

// CreateHTTPServer builds the HTTP adapter over every handler. main registers
// it on its echo instance.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	create := c.CreateCreateOrderCommandHandler()
	transition := c.CreateTransitionStatusCommandHandler()
	cancel := c.CreateCancelOrderCommandHandler()
	addNote := c.CreateAddNoteCommandHandler()

	return httpin.NewServer(httpin.Handlers{
		CreateOrder:           &create,
		TransitionStatus:      &transition,
		CancelOrder:           &cancel,
		AddNote:               &addNote,
		GetOrder:              c.CreateGetOrderQueryHandler(),
		GetTimeline:           c.CreateGetTimelineQueryHandler(),
		ListValidNextStatuses: c.CreateListValidNextStatusesQueryHandler(),
		ListOrders:            c.CreateListOrdersQueryHandler(),
		StatusCatalogue:       queries.NewGetStatusCatalogueQueryHandler(),
	}, c.checker, c.infra.Logger)
}

// CreateJobManager schedules the outbox dispatch when a publisher is configured.
// Without one, status messages stay pending in the outbox.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	manager := jobs.NewJobManager()
	if c.infra.Publisher == nil {
		return manager
	}

	publish := c.CreatePublishOutboxCommandHandler()
	manager.Add("outbox dispatch", jobs.NewOutboxDispatchJob(
		&publish, c.cfg.OutboxSchedule, c.cfg.OutboxBatchSize, c.cfg.StorageTimeout, c.infra.Logger))
	return manager
}

// FuncLifecycleUoWFactory adapts a function to commands.LifecycleUoWFactory.
type FuncLifecycleUoWFactory func() commands.LifecycleUoW

// Create calls f.
func (f FuncLifecycleUoWFactory) Create() commands.LifecycleUoW {
	return f()
}

// FuncOutboxUoWFactory adapts a function to commands.OutboxUoWFactory.
type FuncOutboxUoWFactory func() commands.OutboxUoW

// Create calls f.
func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}

// FuncLifecycleReaderFactory adapts a function to queries.LifecycleReaderFactory.
type FuncLifecycleReaderFactory func() queries.LifecycleReader

// Create calls f.
func (f FuncLifecycleReaderFactory) Create() queries.LifecycleReader {
	return f()
}
