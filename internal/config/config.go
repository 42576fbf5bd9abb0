package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"tortaquiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres  Postgres
	Redis     Redis
	AI        AI
	Admin     Admin
	RateLimit RateLimit
	Prewarm   Prewarm
	Stats     Stats
	CORS      CORS
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// DSN renders a libpq-style connection string understood by pgx and the goose stdlib driver.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Redis holds rate limiter + stats configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// AI configures the chat-completions gateway used for batch generation.
// The key is not required at boot; a missing key fails the first generation.
type AI struct {
	GatewayURL  string        `env:"AI_GATEWAY_URL" envDefault:"https://ai.gateway.lovable.dev/v1/chat/completions"`
	APIKey      string        `env:"AI_API_KEY" envDefault:""`
	Model       string        `env:"AI_MODEL" envDefault:"google/gemini-3-flash-preview"`
	Temperature float64       `env:"AI_TEMPERATURE" envDefault:"0.8"`
	MaxTokens   int           `env:"AI_MAX_TOKENS" envDefault:"4000"`
	HTTPTimeout time.Duration `env:"AI_HTTP_TIMEOUT" envDefault:"60s"`
	BatchSize   int           `env:"AI_BATCH_SIZE" envDefault:"20"`
}

// Admin secures the pool maintenance endpoints.
type Admin struct {
	JWTSecret    string        `env:"ADMIN_JWT_SECRET" envDefault:""`
	PasswordHash string        `env:"ADMIN_PASSWORD_HASH" envDefault:""`
	TokenTTL     time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"1h"`
}

// RateLimit bounds public question requests per client IP.
type RateLimit struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"30"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// Prewarm governs the admin-triggered batch prewarm worker.
type Prewarm struct {
	MinUnused int           `env:"PREWARM_MIN_UNUSED" envDefault:"5"`
	QueueSize int           `env:"PREWARM_QUEUE_SIZE" envDefault:"32"`
	Timeout   time.Duration `env:"PREWARM_TIMEOUT" envDefault:"90s"`
}

// Stats configures the Redis usage counters.
type Stats struct {
	KeyPrefix string        `env:"STATS_KEY_PREFIX" envDefault:"tq:stats"`
	DailyTTL  time.Duration `env:"STATS_DAILY_TTL" envDefault:"168h"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	AllowedMethods []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"authorization,x-client-info,apikey,content-type"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
