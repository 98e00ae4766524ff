package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/readify/readify/pkg/api"
	"github.com/readify/readify/pkg/auth"
	"github.com/readify/readify/pkg/books"
	"github.com/readify/readify/pkg/cache"
	"github.com/readify/readify/pkg/config"
	"github.com/readify/readify/pkg/middleware"
	"github.com/readify/readify/pkg/observability"
	"github.com/readify/readify/pkg/storage/postgres"
	"github.com/readify/readify/pkg/users"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	log := setupLogger(cfg)

	ctx, stop := observability.WaitForSignal(context.Background())
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("readify exited with error")
	}
	log.Info("readify stopped")
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	log.SetLevel(cfg.LogLevel())
	return log
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	trustedProxies, err := cfg.Server.TrustedProxyNets()
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	// Database
	cm, err := postgres.NewConnectionManager(postgres.ConnectionConfig{
		PrimaryURL:  cfg.Database.PostgresURL,
		ReplicaURLs: splitURLs(cfg.Database.ReplicaURLs),
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		Timeout:     cfg.Database.Timeout,
	}, log)
	if err != nil {
		return err
	}
	if err := postgres.Migrate(ctx, cm); err != nil {
		_ = cm.Close()
		return err
	}
	if err := metrics.RegisterDBStats(cm.Primary(), "primary"); err != nil {
		log.WithError(err).Warn("failed to register database stats collector")
	}
	if cfg.Database.ReplicaURLs != "" {
		cm.StartHealthCheckRoutine(ctx, cfg.Database.HealthCheckInterval)
	}

	// Cache and limiters
	var (
		store        cache.Store
		cacheChecker observability.CacheChecker
		limiter      middleware.Limiter
		loginLimiter middleware.Limiter
	)
	limitConfig := &middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}
	if cfg.Redis.URL != "" {
		redisStore, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			URL:        cfg.Redis.URL,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			MaxRetries: cfg.Redis.MaxRetries,
			PoolSize:   cfg.Redis.PoolSize,
		})
		if err != nil {
			_ = cm.Close()
			return err
		}
		store = redisStore
		cacheChecker = redisStore
		limiter = middleware.NewDistributedRateLimiter(redisStore.Client(), limitConfig, "readify:ratelimit:caller")
		loginLimiter = middleware.NewDistributedRateLimiter(redisStore.Client(), middleware.LoginRateLimitConfig(), "readify:ratelimit:login")
		log.Info("using redis for book cache and rate limits")
	} else {
		store = cache.NewMemoryStore(cfg.BookCache.Size, cfg.BookCache.TTL, cache.WithClock(clock))
		callerLimiter := middleware.NewRateLimiter(limitConfig)
		callerLimiter.StartCleanup(ctx, 5*time.Minute)
		ipLimiter := middleware.NewRateLimiter(middleware.LoginRateLimitConfig())
		ipLimiter.StartCleanup(ctx, 5*time.Minute)
		limiter, loginLimiter = callerLimiter, ipLimiter
		log.Info("using in-process book cache and rate limits")
	}

	// Services
	tokenRepo := postgres.NewTokenRepository(cm)
	userService := users.NewService(postgres.NewUserRepository(cm), clock, log)
	sessions := auth.NewSessionManager(tokenRepo, userService,
		auth.WithLogger(log),
		auth.WithClock(clock),
		auth.WithTokenTTL(cfg.Session.TokenTTL),
	)
	bookRepo := postgres.NewBookRepository(cm)
	bookCache := books.NewCache(store, bookRepo, cfg.BookCache.TTL, metrics, log)
	bookService := books.NewService(bookRepo, bookCache, cfg.BookCache.InvalidateOnWrite, log)

	sweeper := auth.NewSweeper(tokenRepo, clock, log)
	sweeper.SetRecorder(metrics)
	if err := sweeper.Start(cfg.Session.SweepSchedule); err != nil {
		_ = store.Close()
		_ = cm.Close()
		return err
	}

	deps := api.Dependencies{
		Sessions:       sessions,
		Users:          userService,
		Books:          bookService,
		Limiter:        limiter,
		LoginLimiter:   loginLimiter,
		TrustedProxies: trustedProxies,
		Log:            log,
		RequestTimeout: cfg.Server.RequestTimeout,
	}
	if cfg.Observability.MetricsEnabled {
		deps.Metrics = metrics
	}
	server := api.NewServer(deps)

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(cm, cacheChecker))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, metrics.Registry())
	}
	healthServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler:      healthMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	shutdown := observability.NewShutdownManager(log, cfg.Server.ShutdownTimeout, apiServer, healthServer)
	shutdown.RegisterShutdownFunc("token sweeper", sweeper.Stop)
	shutdown.RegisterShutdownFunc("book cache", func(context.Context) error { return store.Close() })
	shutdown.RegisterShutdownFunc("database", func(context.Context) error { return cm.Close() })

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer observability.RecoverPanicError(log, "api server", &err)
		log.WithField("addr", apiServer.Addr).Info("starting API server")
		return serve(apiServer)
	})
	g.Go(func() (err error) {
		defer observability.RecoverPanicError(log, "health server", &err)
		log.WithField("addr", healthServer.Addr).Info("starting health server")
		return serve(healthServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		return shutdown.Shutdown()
	})

	return g.Wait()
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func splitURLs(raw string) []string {
	var urls []string
	for _, u := range strings.Split(raw, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
