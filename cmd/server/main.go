package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/chequebook/internal/adapter/http"
	"github.com/iho/chequebook/internal/adapter/http/handler"
	"github.com/iho/chequebook/internal/adapter/http/middleware"
	"github.com/iho/chequebook/internal/adapter/report"
	postgresRepo "github.com/iho/chequebook/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/chequebook/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/chequebook/internal/adapter/repository/sqlite"
	"github.com/iho/chequebook/internal/infrastructure/config"
	"github.com/iho/chequebook/internal/infrastructure/eventpublisher"
	"github.com/iho/chequebook/internal/infrastructure/logger"
	"github.com/iho/chequebook/internal/infrastructure/metrics"
	"github.com/iho/chequebook/internal/infrastructure/postgres"
	"github.com/iho/chequebook/internal/infrastructure/redis"
	"github.com/iho/chequebook/internal/infrastructure/reminder"
	"github.com/iho/chequebook/internal/usecase"
)

const (
	rateLimitJanitorInterval = time.Minute
	rateLimitMaxIdle         = 10 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Component: "server"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	a, err := newApp(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer a.close()

	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()
	for _, job := range a.background {
		go func(job func(context.Context) error) {
			if err := job(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("background job stopped")
			}
		}(job)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("backend", cfg.StorageBackend).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// app is the wired server: its HTTP handler, the background jobs to run
// alongside it and the resources to release afterwards.
type app struct {
	handler    http.Handler
	background []func(ctx context.Context) error
	closers    []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg prometheus.Registerer) (*app, error) {
	a := &app{}

	repo, storeName, err := openStore(ctx, cfg, log, a)
	if err != nil {
		a.close()
		return nil, err
	}

	var (
		idempotency *middleware.IdempotencyMiddleware
		redisPinger handler.Pinger
	)
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { redisClient.Close() })
		log.Info().Msg("connected to redis")

		idempotency = middleware.NewIdempotencyMiddleware(redisRepo.NewIdempotencyStore(redisClient), cfg.IdempotencyTTL, log)
		redisPinger = redis.Pinger{Client: redisClient}
	}

	m := metrics.New(reg)

	publisher, err := newPublisher(cfg, log, a)
	if err != nil {
		a.close()
		return nil, err
	}
	dispatcher := eventpublisher.NewDispatcher(eventpublisher.Config{
		Publisher: publisher,
		Recorder:  m,
		Logger:    log,
	})
	a.background = append(a.background, dispatcher.Start)

	chequeUC := usecase.NewChequeUseCase(repo, postgresRepo.NewULIDGenerator(),
		usecase.WithPublisher(dispatcher),
		usecase.WithMetrics(m),
		usecase.WithLogger(log),
	)
	viewUC := usecase.NewViewUseCase(repo, nil)

	if cfg.ReminderInterval > 0 {
		worker := reminder.New(reminder.Config{
			Lister:    viewUC,
			Publisher: dispatcher,
			Recorder:  m,
			Logger:    log,
			Interval:  cfg.ReminderInterval,
		})
		a.background = append(a.background, worker.Start)
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		a.background = append(a.background, func(ctx context.Context) error {
			limiter.RunJanitor(ctx, rateLimitJanitorInterval, rateLimitMaxIdle)
			return ctx.Err()
		})
	}

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ChequeHandler: handler.NewChequeHandler(chequeUC),
		ViewHandler:   handler.NewViewHandler(viewUC, report.NewBuilder(cfg.CurrencyLabel)),
		HealthHandler: handler.NewHealthHandler(storeName, repo, redisPinger),
		Logger:        log,
		Idempotency:   idempotency,
		RateLimiter:   limiter,
	})

	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger, a *app) (usecase.ChequeRepository, string, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		repo, err := sqliteRepo.Open(cfg.SQLitePath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to open sqlite: %w", err)
		}
		a.closers = append(a.closers, func() { repo.Close() })
		log.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite store")
		return repo, config.BackendSQLite, nil

	default:
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, "", fmt.Errorf("failed to connect to postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		log.Info().Msg("connected to postgres")

		if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
			return nil, "", err
		}
		return postgresRepo.NewChequeRepository(pool, log), config.BackendPostgres, nil
	}
}

func newPublisher(cfg *config.Config, log zerolog.Logger, a *app) (eventpublisher.Publisher, error) {
	if cfg.AMQPURL == "" {
		return eventpublisher.NewLogPublisher(log), nil
	}

	p, err := eventpublisher.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to amqp: %w", err)
	}
	a.closers = append(a.closers, func() { p.Close() })
	log.Info().Str("exchange", cfg.AMQPExchange).Msg("publishing events to amqp")
	return p, nil
}
