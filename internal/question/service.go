package question

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/tortaquiz/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/tortaquiz/internal/db/sqlc"
)

// Store is the durable question pool (implemented by repository.QuestionRepository).
type Store interface {
	FindOldestUnused(ctx context.Context, p repository.Partition) (sqlcgen.Question, bool, error)
	Claim(ctx context.Context, id pgtype.UUID) (sqlcgen.Question, error)
	InsertBatch(ctx context.Context, p repository.Partition, items []repository.NewQuestion) ([]sqlcgen.Question, error)
	ResetUsed(ctx context.Context, f repository.Filter) (int64, error)
	CountUsed(ctx context.Context, f repository.Filter) (int64, error)
	CountUnused(ctx context.Context, p repository.Partition) (int64, error)
	PartitionCounts(ctx context.Context) ([]sqlcgen.ListPartitionCountsRow, error)
}

// StatsRecorder receives usage events (implemented by the Redis-backed stats service).
type StatsRecorder interface {
	RecordServed(ctx context.Context, p repository.Partition, fromCache bool, batchSize int) error
}

var _ Store = (*repository.QuestionRepository)(nil)

// Service sequences claim -> generation and produces the client response.
type Service struct {
	store   Store
	claimer *Claimer
	batches *BatchGenerator
	stats   StatsRecorder
	logger  zerolog.Logger
}

type ServiceOptions struct {
	BatchSize     int
	ClaimAttempts int
}

func NewService(store Store, llm TextGenerator, stats StatsRecorder, logger zerolog.Logger, opts ServiceOptions) *Service {
	return &Service{
		store:   store,
		claimer: NewClaimer(store, opts.ClaimAttempts, logger),
		batches: NewBatchGenerator(store, llm, opts.BatchSize, logger),
		stats:   stats,
		logger:  logger.With().Str("component", "question_service").Logger(),
	}
}

// Batches exposes the generator so the prewarm worker shares configuration with requests.
func (s *Service) Batches() *BatchGenerator {
	return s.batches
}

// Next serves one question for the request: an unused stored one when available,
// otherwise the first row of a freshly generated batch.
func (s *Service) Next(ctx context.Context, req Request) (Result, error) {
	p := req.Partition()

	row, ok, err := s.claimer.Claim(ctx, p)
	if err != nil {
		return Result{}, err
	}
	if ok {
		s.record(ctx, p, true, 0)
		return Result{
			Question:  row.QuestionText,
			Answer:    row.AnswerText,
			FromCache: true,
		}, nil
	}

	// Generation is not cancelled by the caller going away; the batch stays useful for later requests.
	row, n, err := s.batches.GenerateAndClaim(context.WithoutCancel(ctx), p)
	if err != nil {
		return Result{}, err
	}
	s.record(ctx, p, false, n)
	return Result{
		Question:       row.QuestionText,
		Answer:         row.AnswerText,
		FromCache:      false,
		BatchGenerated: n,
	}, nil
}

// ResetUsed returns used questions matching the filter to the pool.
func (s *Service) ResetUsed(ctx context.Context, f repository.Filter) (int64, error) {
	n, err := s.store.ResetUsed(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStore, err)
	}
	s.logger.Info().
		Str("theme", f.Theme).
		Str("difficulty", f.Difficulty).
		Str("age_group", f.AgeGroup).
		Int64("reset", n).
		Msg("used questions reset")
	return n, nil
}

// CountUsed reports how many questions a reset with the same filter would touch.
func (s *Service) CountUsed(ctx context.Context, f repository.Filter) (int64, error) {
	n, err := s.store.CountUsed(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStore, err)
	}
	return n, nil
}

// Pool lists total and unused counts per partition.
func (s *Service) Pool(ctx context.Context) ([]PartitionCount, error) {
	rows, err := s.store.PartitionCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}
	out := make([]PartitionCount, len(rows))
	for i, row := range rows {
		out[i] = PartitionCount{
			Theme:      row.Theme,
			Difficulty: row.Difficulty,
			AgeGroup:   row.AgeGroup,
			Total:      row.Total,
			Unused:     row.Unused,
		}
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, p repository.Partition, fromCache bool, batchSize int) {
	if s.stats == nil {
		return
	}
	if err := s.stats.RecordServed(ctx, p, fromCache, batchSize); err != nil {
		s.logger.Warn().Err(err).Msg("stats update failed")
	}
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}
