package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/vadimbarashkov/base62-shortener/internal/adapter/repository/cache"
	"github.com/vadimbarashkov/base62-shortener/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/base62-shortener/internal/codec"
	"github.com/vadimbarashkov/base62-shortener/internal/config"
	"github.com/vadimbarashkov/base62-shortener/internal/entity"
	"github.com/vadimbarashkov/base62-shortener/internal/usecase"
	"github.com/vadimbarashkov/base62-shortener/pkg/middleware/metrics"
	"github.com/vadimbarashkov/base62-shortener/pkg/postgres"
	"github.com/vadimbarashkov/base62-shortener/pkg/tracing"

	delivery "github.com/vadimbarashkov/base62-shortener/internal/adapter/delivery/http"
	pgrepo "github.com/vadimbarashkov/base62-shortener/internal/adapter/repository/postgres"
)

type urlRepository interface {
	GetOrCreate(ctx context.Context, originalURL string) (*entity.URL, error)
	GetByID(ctx context.Context, id int64) (*entity.URL, error)
}

// NewLogger builds the application logger from cfg.
func NewLogger(cfg config.Log) *httplog.Logger {
	return httplog.NewLogger("base62-shortener", httplog.Options{
		LogLevel: httplog.LevelByName(cfg.Level),
		JSON:     cfg.JSON,
		Concise:  cfg.Concise,
	})
}

// Run wires the service from cfg and serves HTTP until ctx is done.
func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := NewLogger(cfg.Log)

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
		if err != nil {
			return fmt.Errorf("%s: failed to init tracing: %w", op, err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
			defer cancel()

			if err := shutdown(shutdownCtx); err != nil {
				logger.Error("failed to shutdown tracing", slog.Any("err", err))
			}
		}()
	}

	urlRepo, closeRepo, err := newURLRepository(ctx, cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeRepo()

	urlCodec, err := codec.New(cfg.Codec.Kind, cfg.Codec.Alphabet, cfg.Codec.MinLength)
	if err != nil {
		return fmt.Errorf("%s: failed to build codec: %w", op, err)
	}

	urlUseCase := usecase.New(urlRepo, urlCodec)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("%s: failed to register metrics: %w", op, err)
	}

	routerOpts := []delivery.Option{
		delivery.WithBaseURL(cfg.BaseURL),
		delivery.WithCORS(cfg.CORS),
		delivery.WithMetrics(m, reg),
	}
	if cfg.Tracing.Enabled {
		routerOpts = append(routerOpts, delivery.WithTracing())
	}

	var handler http.Handler = delivery.NewRouter(logger, urlUseCase, routerOpts...)
	if cfg.Tracing.Enabled {
		handler = otelhttp.NewHandler(handler, "http")
	}

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        handler,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

// newURLRepository opens the configured registry and wraps it with the
// enabled cache levels. The returned func releases every opened resource.
func newURLRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (urlRepository, func(), error) {
	const op = "app.newURLRepository"

	var (
		next    urlRepository
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Storage {
	case config.StorageMemory:
		next = memory.NewURLRepository()
	default:
		db, err := openPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		closers = append(closers, func() { db.Close() })

		next = pgrepo.NewURLRepository(db)
	}

	var opts []cache.Option

	if cfg.LocalCache.Enabled {
		local, err := cache.NewLocal(cfg.LocalCache.MaxItems)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}
		closers = append(closers, local.Close)

		opts = append(opts, cache.WithLocal(local, cfg.LocalCache.TTL))
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { client.Close() })

		if err := client.Ping(ctx).Err(); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("%s: failed to ping redis: %w", op, err)
		}

		opts = append(opts, cache.WithRedis(client, cfg.Redis.TTL))
	}

	if len(opts) == 0 {
		return next, closeAll, nil
	}

	opts = append(opts, cache.WithLogger(logger))

	return cache.NewURLRepository(next, opts...), closeAll, nil
}

func openPostgres(ctx context.Context, cfg config.Postgres, logger *slog.Logger) (*sqlx.DB, error) {
	const op = "app.openPostgres"

	db, err := postgres.New(
		ctx,
		cfg.DSN(),
		postgres.WithConnMaxIdleTime(cfg.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.MaxOpenConns),
		postgres.WithConnectAttempts(cfg.ConnectAttempts, cfg.ConnectRetryInterval),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	version, err := postgres.RunMigrations(cfg.MigrationsPath, cfg.DSN())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	logger.Info("database ready", slog.Uint64("schema_version", uint64(version)))

	return db, nil
}
