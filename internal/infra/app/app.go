package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/infra/config"
	"github.com/Redabouizer/crealik-auth/internal/infra/database"
	"github.com/Redabouizer/crealik-auth/internal/infra/identity"
	kafkainfra "github.com/Redabouizer/crealik-auth/internal/infra/kafka"
	"github.com/Redabouizer/crealik-auth/internal/infra/logger"
	redisinfra "github.com/Redabouizer/crealik-auth/internal/infra/redis"
	"github.com/Redabouizer/crealik-auth/internal/infra/security"
	"github.com/Redabouizer/crealik-auth/internal/infra/telemetry"
	memoryrepo "github.com/Redabouizer/crealik-auth/internal/repository/memory"
	postgresrepo "github.com/Redabouizer/crealik-auth/internal/repository/postgres"
	redisrepo "github.com/Redabouizer/crealik-auth/internal/repository/redis"
	"github.com/Redabouizer/crealik-auth/internal/transport/http/middleware"
	"github.com/Redabouizer/crealik-auth/internal/transport/http/routes"
	"github.com/Redabouizer/crealik-auth/internal/usecase"
)

// Application wires configuration, infrastructure, and transport together.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	tracer *telemetry.TracerProvider
}

// New builds the application graph from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	if err := security.ConfigureArgon2(security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	provider, err := buildIdentityProvider(cfg, repos, log)
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, err
	}

	var federated port.FederatedProvider
	if cfg.Google.ClientID != "" {
		google, err := identity.NewGoogleProvider(ctx, cfg.Google)
		if err != nil {
			_ = redisClient.Close()
			pool.Close()
			return nil, fmt.Errorf("init google provider: %w", err)
		}
		federated = google
	} else {
		log.Info("google oauth not configured, federated login disabled")
	}

	keyPrefix := cfg.Redis.KeyPrefix

	var attemptStore port.AttemptStore
	if cfg.RateLimit.Store == "memory" {
		log.Info("using in-memory login attempt store")
		attemptStore = memoryrepo.NewAttemptRepository()
	} else {
		attemptStore = redisrepo.NewAttemptRepository(redisClient.Client(), prefixed(keyPrefix, "login_attempts"))
	}

	verificationStore := redisrepo.NewVerificationRepository(redisClient.Client(), prefixed(keyPrefix, "verify"))
	sessionStore := redisrepo.NewSessionRepository(redisClient.Client(), prefixed(keyPrefix, "session"))

	limiter := usecase.NewLoginAttemptLimiter(attemptStore, cfg.RateLimit.LoginMaxAttempts, cfg.RateLimit.LoginWindow)
	sessionService := usecase.NewSessionService(sessionStore, cfg.Session.IdleTimeout)
	authService := usecase.NewAuthService(provider, federated, repos.Profiles, sessionService, limiter, eventPublisher, security.DefaultPasswordValidator())
	verificationService := usecase.NewVerificationService(verificationStore, provider, authService, eventPublisher, cfg.Verification.CodeTTL, cfg.Verification.HistoryTTL)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	engine := routes.Register(routes.Dependencies{
		Config:   cfg,
		Logger:   log,
		Metrics:  metrics,
		Database: pool,
		Cache:    redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Verification: verificationService,
			Sessions:     sessionService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		tracer: tracer,
	}, nil
}

// Run serves HTTP until the context is canceled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.tracer.Shutdown(shutdownCtx)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting auth API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

func buildIdentityProvider(cfg *config.AppConfig, repos *postgresrepo.Repositories, log *zap.Logger) (port.IdentityProvider, error) {
	switch cfg.Identity.Mode {
	case "rest":
		provider, err := identity.NewRESTProvider(cfg.Identity, log)
		if err != nil {
			return nil, fmt.Errorf("init rest identity provider: %w", err)
		}
		return provider, nil
	case "", "local":
		if cfg.Identity.TokenSecret == "" {
			return nil, fmt.Errorf("identity token secret is required in local mode")
		}
		return identity.NewLocalProvider(repos.Credentials, cfg.Identity, cfg.App.Name), nil
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.Identity.Mode)
	}
}

func prefixed(keyPrefix, name string) string {
	if keyPrefix == "" {
		return name
	}
	return keyPrefix + ":" + name
}
