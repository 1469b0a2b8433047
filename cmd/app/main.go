package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"ordermgmt/api"
	"ordermgmt/cmd"
	"ordermgmt/docs"
	httpin "ordermgmt/internal/adapters/in/http"
	"ordermgmt/internal/adapters/out/kafka"
	"ordermgmt/internal/adapters/out/postgres/migrations"
	"ordermgmt/internal/adapters/out/redis"
	"ordermgmt/internal/pkg/logging"
	"ordermgmt/internal/pkg/metrics"
	"ordermgmt/internal/pkg/shutdown"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configs, err := cmd.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(logging.Config{
		ServiceName: "ordermgmt",
		Env:         configs.AppEnv,
		Level:       configs.LogLevel,
		AddCaller:   true,
	})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logging.Sync(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shutdowns := shutdown.New(configs.ShutdownTimeout, logger)

	if err = migrations.Up(ctx, configs.DSN()); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	shutdowns.Add("postgres", func(context.Context) error { return sqlDB.Close() })

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	infra := cmd.Infrastructure{
		DB:      gormDB,
		Metrics: metrics.NewLifecycle(registry),
		Logger:  logger,
	}

	if configs.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: configs.RedisAddr})
		if pingErr := client.Ping(ctx).Err(); pingErr != nil {
			return fmt.Errorf("redis: %w", pingErr)
		}
		shutdowns.Add("redis", func(context.Context) error { return client.Close() })
		infra.Cache = redis.NewTimelineCache(client, configs.TimelineCacheTTL, logger)
	} else {
		logger.Info("timeline cache disabled")
	}

	if len(configs.KafkaBrokers) > 0 {
		publisher := kafka.NewOrderEventPublisher(logger, configs.KafkaBrokers, configs.KafkaOrderStatusTopic)
		shutdowns.Add("kafka", func(context.Context) error { return publisher.Close() })
		infra.Publisher = publisher
	} else {
		logger.Warn("no kafka brokers configured, outbox messages will not be published")
	}

	app := cmd.NewCompositionRoot(configs, infra)

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	shutdowns.Add("jobs", func(context.Context) error {
		jobManager.StopAll()
		return nil
	})

	e, err := newWebServer(app, registry, logger)
	if err != nil {
		return err
	}
	shutdowns.Add("http", e.Shutdown)

	go func() {
		logger.Info("http server listening", zap.String("port", configs.HTTPPort))
		if startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); startErr != nil &&
			!errors.Is(startErr, http.ErrServerClosed) {
			logger.Error("http server stopped", zap.Error(startErr))
			cancel()
		}
	}()

	shutdowns.Wait(ctx)
	return nil
}

func newWebServer(app cmd.CompositionRoot, registry *prometheus.Registry, logger *zap.Logger) (*echo.Echo, error) {
	doc, err := api.Load()
	if err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}
	if err = docs.Register(doc); err != nil {
		return nil, fmt.Errorf("swagger: %w", err)
	}
	validator, err := httpin.RequestValidator(doc)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.WARN)

	httpMetrics := metrics.NewHTTP(registry)
	e.Use(middleware.Recover(), httpMetrics.Middleware())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler(registry)))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	app.CreateHTTPServer().Register(e, validator)
	logger.Debug("routes registered", zap.Int("count", len(e.Routes())))
	return e, nil
}
