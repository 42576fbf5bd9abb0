package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/tortaquiz/internal/logging"
	httperrors "github.com/gokatarajesh/tortaquiz/pkg/http/errors"
)

const rateLimitedMessage = "Limite de requisições excedido. Tente novamente em alguns segundos."

// RateLimitClient is the subset of go-redis used by RateLimiter.
type RateLimitClient interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	TTL(ctx context.Context, key string) *redis.DurationCmd
}

var _ RateLimitClient = (*redis.Client)(nil)

// RateLimitConfig bounds requests per client IP in a fixed window.
type RateLimitConfig struct {
	MaxRequests int
	Window      time.Duration
	KeyPrefix   string
}

// RateLimiter is a Redis fixed-window limiter. Redis failures let the request through.
type RateLimiter struct {
	redis  RateLimitClient
	cfg    RateLimitConfig
	logger zerolog.Logger
}

func NewRateLimiter(client RateLimitClient, cfg RateLimitConfig, logger zerolog.Logger) *RateLimiter {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "tq:rl"
	}
	return &RateLimiter{
		redis:  client,
		cfg:    cfg,
		logger: logger.With().Str("component", "rate_limiter").Logger(),
	}
}

// Limit wraps next with the per-IP limit. A non-positive MaxRequests disables limiting.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if rl.cfg.MaxRequests <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		key := fmt.Sprintf("%s:%s", rl.cfg.KeyPrefix, ip)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			rl.logger.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if count == 1 {
			if err := rl.redis.Expire(ctx, key, rl.cfg.Window).Err(); err != nil {
				rl.logger.Warn().Err(err).Str("key", key).Msg("failed to set rate limit window")
			}
		}

		retryAfter := int(rl.cfg.Window.Seconds())
		if ttl, err := rl.redis.TTL(ctx, key).Result(); err == nil && ttl > 0 {
			retryAfter = int(ttl.Seconds())
		}
		remaining := rl.cfg.MaxRequests - int(count)
		if remaining < 0 {
			remaining = 0
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.MaxRequests))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.Itoa(retryAfter))

		if int(count) > rl.cfg.MaxRequests {
			log := logging.FromContext(r.Context())
			log.Warn().
				Str("ip", ip).
				Int64("count", count).
				Int("limit", rl.cfg.MaxRequests).
				Msg("rate limit exceeded")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			httperrors.RespondError(w, http.StatusTooManyRequests, httperrors.ErrCodeRateLimited, rateLimitedMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
