package question

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/tortaquiz/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/tortaquiz/internal/db/sqlc"
)

// TextGenerator sends a chat prompt to a language model and returns the raw completion.
type TextGenerator interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// BatchGenerator refills an exhausted partition with a fresh, deduplicated batch.
type BatchGenerator struct {
	store  Store
	llm    TextGenerator
	size   int
	logger zerolog.Logger
}

func NewBatchGenerator(store Store, llm TextGenerator, size int, logger zerolog.Logger) *BatchGenerator {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &BatchGenerator{
		store:  store,
		llm:    llm,
		size:   size,
		logger: logger.With().Str("component", "batch_generator").Logger(),
	}
}

// Generate asks the model for a batch and persists the deduplicated result as unused rows.
// Nothing is written unless the whole batch parses.
func (g *BatchGenerator) Generate(ctx context.Context, p repository.Partition) ([]sqlcgen.Question, error) {
	if g.llm == nil {
		generationFailures.WithLabelValues("not_configured").Inc()
		return nil, ErrNotConfigured
	}
	start := time.Now()

	content, err := g.llm.Complete(ctx, BuildPrompt(p, g.size))
	if err != nil {
		generationFailures.WithLabelValues(failureKind(err)).Inc()
		return nil, err
	}

	pairs, err := ParsePairs(content)
	if err != nil {
		generationFailures.WithLabelValues("invalid_format").Inc()
		g.logger.Warn().Err(err).Int("content_len", len(content)).Msg("unparseable completion")
		return nil, err
	}
	parsed := len(pairs)
	pairs = Dedupe(pairs)
	if len(pairs) > g.size {
		pairs = pairs[:g.size]
	}
	if len(pairs) == 0 {
		generationFailures.WithLabelValues("no_valid_questions").Inc()
		return nil, ErrNoValidQuestions
	}

	items := make([]repository.NewQuestion, len(pairs))
	for i, pair := range pairs {
		items[i] = repository.NewQuestion{QuestionText: pair.Question, AnswerText: pair.Answer}
	}
	rows, err := g.store.InsertBatch(ctx, p, items)
	if err != nil {
		generationFailures.WithLabelValues("store").Inc()
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	generatedQuestions.Add(float64(len(rows)))
	generationDuration.Observe(time.Since(start).Seconds())
	g.logger.Info().
		Str("theme", p.Theme).
		Str("difficulty", p.Difficulty).
		Str("age_group", p.AgeGroup).
		Int("parsed", parsed).
		Int("persisted", len(rows)).
		Dur("took", time.Since(start)).
		Msg("question batch generated")

	return rows, nil
}

// GenerateAndClaim generates a batch and claims its first row for the caller. The
// claim is best-effort: the row was created by this call, so a failed claim still
// returns its content.
func (g *BatchGenerator) GenerateAndClaim(ctx context.Context, p repository.Partition) (sqlcgen.Question, int, error) {
	rows, err := g.Generate(ctx, p)
	if err != nil {
		return sqlcgen.Question{}, 0, err
	}

	first := rows[0]
	claimed, err := g.store.Claim(ctx, first.ID)
	if err != nil {
		g.logger.Warn().Err(err).Str("question_id", uuidString(first.ID)).Msg("claim of fresh batch row failed; serving it anyway")
		return first, len(rows), nil
	}
	return claimed, len(rows), nil
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrPaymentRequired):
		return "payment_required"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	default:
		return "upstream"
	}
}
