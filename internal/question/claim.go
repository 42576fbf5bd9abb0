package question

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/tortaquiz/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/tortaquiz/internal/db/sqlc"
)

const defaultClaimAttempts = 3

// Claimer hands out at most one unused question per call. It is optimistic: the
// conditional update in the store is the only synchronization.
type Claimer struct {
	store    Store
	attempts int
	logger   zerolog.Logger
}

func NewClaimer(store Store, attempts int, logger zerolog.Logger) *Claimer {
	if attempts <= 0 {
		attempts = defaultClaimAttempts
	}
	return &Claimer{
		store:    store,
		attempts: attempts,
		logger:   logger.With().Str("component", "question_claimer").Logger(),
	}
}

// Claim returns a freshly claimed question, or ok=false when the partition is empty or
// every attempt lost a race. Only store failures are returned as errors.
func (c *Claimer) Claim(ctx context.Context, p repository.Partition) (sqlcgen.Question, bool, error) {
	for attempt := 1; attempt <= c.attempts; attempt++ {
		candidate, ok, err := c.store.FindOldestUnused(ctx, p)
		if err != nil {
			return sqlcgen.Question{}, false, fmt.Errorf("%w: %w", ErrStore, err)
		}
		if !ok {
			claimOutcomes.WithLabelValues("empty").Inc()
			return sqlcgen.Question{}, false, nil
		}

		claimed, err := c.store.Claim(ctx, candidate.ID)
		if err == nil {
			claimOutcomes.WithLabelValues("hit").Inc()
			return claimed, true, nil
		}
		if !errors.Is(err, repository.ErrClaimConflict) {
			return sqlcgen.Question{}, false, fmt.Errorf("%w: %w", ErrStore, err)
		}

		claimOutcomes.WithLabelValues("conflict").Inc()
		c.logger.Debug().
			Int("attempt", attempt).
			Str("theme", p.Theme).
			Str("difficulty", p.Difficulty).
			Str("age_group", p.AgeGroup).
			Msg("claim conflict, retrying")
	}

	claimOutcomes.WithLabelValues("exhausted").Inc()
	return sqlcgen.Question{}, false, nil
}
