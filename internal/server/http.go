package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/tortaquiz/internal/auth"
	"github.com/gokatarajesh/tortaquiz/internal/config"
	"github.com/gokatarajesh/tortaquiz/internal/logging"
	"github.com/gokatarajesh/tortaquiz/internal/question"
	"github.com/gokatarajesh/tortaquiz/internal/stats"
	httperrors "github.com/gokatarajesh/tortaquiz/pkg/http/errors"
)

// DBPinger is satisfied by *pgxpool.Pool.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// RedisPinger is satisfied by *redis.Client.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Dependencies are the handlers and clients the router needs. Nil handlers leave their routes unregistered.
type Dependencies struct {
	DB           DBPinger
	Redis        RedisPinger
	Questions    *question.HTTPHandlers
	Auth         *auth.Service
	AuthHandlers *auth.HTTPHandlers
	Stats        *stats.HTTPHandler
	Limiter      *RateLimiter
}

// NewHTTPServer wires every route of the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, deps Dependencies) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, logger, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the handler tree: CORS, recovery and request logging around the mux.
func NewRouter(cfg *config.App, logger zerolog.Logger, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), deps.DB, deps.Redis); err != nil {
			log := logging.FromContext(r.Context())
			log.Error().Err(err).Msg("dependency ping failed")
			httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeServiceUnavailable, "upstream error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if deps.Questions != nil {
		generate := http.Handler(http.HandlerFunc(deps.Questions.Generate))
		if deps.Limiter != nil {
			generate = deps.Limiter.Limit(generate)
		}
		mux.Handle("/v1/questions", generate)
		// Path used by existing game clients.
		mux.Handle("/functions/v1/generate-question", generate)
	}

	if deps.AuthHandlers != nil {
		mux.HandleFunc("/v1/admin/login", deps.AuthHandlers.Login)
	}

	if deps.Questions != nil && deps.Auth != nil {
		admin := auth.RequireAdmin(deps.Auth, logger)
		mux.Handle("/v1/admin/questions/used", admin(http.HandlerFunc(deps.Questions.CountUsed)))
		mux.Handle("/v1/admin/questions/reset", admin(http.HandlerFunc(deps.Questions.ResetUsed)))
		mux.Handle("/v1/admin/questions/pool", admin(http.HandlerFunc(deps.Questions.Pool)))
		mux.Handle("/v1/admin/questions/prewarm", admin(http.HandlerFunc(deps.Questions.Prewarm)))
	}

	if deps.Stats != nil {
		mux.HandleFunc("/v1/stats", deps.Stats.HandleGet)
	}

	return withMiddleware(mux, cfg.CORS, logger)
}

// withMiddleware keeps CORS outermost so recovered panics still carry the allow-origin headers.
func withMiddleware(h http.Handler, cors config.CORS, logger zerolog.Logger) http.Handler {
	return Chain(h,
		CORS(cors),
		Recover(logger),
		RequestLogger(logger),
	)
}

func pingDependencies(ctx context.Context, db DBPinger, rdb RedisPinger) error {
	if db != nil {
		if err := db.Ping(ctx); err != nil {
			return err
		}
	}
	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}
