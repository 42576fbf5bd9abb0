package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/tortaquiz/internal/auth"
	"github.com/gokatarajesh/tortaquiz/internal/auth/jwt"
	"github.com/gokatarajesh/tortaquiz/internal/config"
	"github.com/gokatarajesh/tortaquiz/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/tortaquiz/internal/db/sqlc"
	"github.com/gokatarajesh/tortaquiz/internal/logging"
	"github.com/gokatarajesh/tortaquiz/internal/question"
	"github.com/gokatarajesh/tortaquiz/internal/question/ai"
	"github.com/gokatarajesh/tortaquiz/internal/server"
	"github.com/gokatarajesh/tortaquiz/internal/stats"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	prewarmer *question.Prewarmer
	bgCancels []context.CancelFunc
}

// Infra holds the clients shared by the API and the admin CLI.
type Infra struct {
	Pool      *pgxpool.Pool
	Redis     *redis.Client
	Questions *repository.QuestionRepository
}

// Connect opens Postgres and Redis from config.
func Connect(ctx context.Context, cfg *config.App) (*Infra, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.Postgres.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.Postgres.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	return &Infra{
		Pool:      pool,
		Redis:     redisClient,
		Questions: repository.NewQuestionRepository(sqlcgen.New(pool)),
	}, nil
}

// Close releases the pool and the Redis client.
func (i *Infra) Close() error {
	i.Pool.Close()
	return i.Redis.Close()
}

// NewAuthService builds the admin auth service from config.
func NewAuthService(cfg *config.App, logger zerolog.Logger) *auth.Service {
	return auth.NewService(auth.ServiceOptions{
		TokenConfig: jwt.TokenConfig{
			Secret: []byte(cfg.Admin.JWTSecret),
			TTL:    cfg.Admin.TokenTTL,
			Issuer: cfg.Name,
		},
		PasswordHash: cfg.Admin.PasswordHash,
	}, logger)
}

// New bootstraps configs, logger, Postgres, Redis and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	infra, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.AI.APIKey == "" {
		logger.Warn().Msg("AI_API_KEY not configured; requests that need a new batch will fail")
	}
	generator := ai.NewGenerator(ai.Config{
		GatewayURL:  cfg.AI.GatewayURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AI.HTTPTimeout,
	}, logger)

	statsSvc := stats.NewService(infra.Redis, logger, stats.ServiceOptions{
		KeyPrefix: cfg.Stats.KeyPrefix,
		DailyTTL:  cfg.Stats.DailyTTL,
	})

	questionSvc := question.NewService(infra.Questions, generator, statsSvc, logger, question.ServiceOptions{
		BatchSize: cfg.AI.BatchSize,
	})
	prewarmer := question.NewPrewarmer(infra.Questions, questionSvc.Batches(), logger, question.PrewarmOptions{
		MinUnused: cfg.Prewarm.MinUnused,
		QueueSize: cfg.Prewarm.QueueSize,
		Timeout:   cfg.Prewarm.Timeout,
	})

	authSvc := NewAuthService(cfg, logger)
	if !authSvc.Enabled() {
		logger.Warn().Msg("ADMIN_JWT_SECRET or ADMIN_PASSWORD_HASH not configured; admin APIs disabled")
	}

	limiter := server.NewRateLimiter(infra.Redis, server.RateLimitConfig{
		MaxRequests: cfg.RateLimit.Requests,
		Window:      cfg.RateLimit.Window,
	}, logger)

	apiServer := server.NewHTTPServer(cfg, logger, server.Dependencies{
		DB:           infra.Pool,
		Redis:        infra.Redis,
		Questions:    question.NewHTTPHandlers(questionSvc, prewarmer, logger),
		Auth:         authSvc,
		AuthHandlers: auth.NewHTTPHandlers(authSvc, logger),
		Stats:        stats.NewHTTPHandler(statsSvc, logger),
		Limiter:      limiter,
	})

	return &Application{
		cfg:       cfg,
		logger:    logger,
		pool:      infra.Pool,
		redis:     infra.Redis,
		http:      apiServer,
		prewarmer: prewarmer,
		bgCancels: make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.prewarmer != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.prewarmer.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("question prewarmer stopped")
			}
		}()
	}
}
