package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	sqlcgen "github.com/gokatarajesh/tortaquiz/internal/db/sqlc"
)

// ErrClaimConflict reports that the conditional update matched no unused row:
// another request flipped the flag first.
var ErrClaimConflict = errors.New("question already claimed")

type questionStore interface {
	GetOldestUnusedQuestion(ctx context.Context, arg sqlcgen.GetOldestUnusedQuestionParams) (sqlcgen.Question, error)
	ClaimQuestion(ctx context.Context, id pgtype.UUID) (sqlcgen.Question, error)
	InsertQuestionBatch(ctx context.Context, arg sqlcgen.InsertQuestionBatchParams) ([]sqlcgen.Question, error)
	ResetUsedQuestions(ctx context.Context, arg sqlcgen.ResetUsedQuestionsParams) (int64, error)
	CountUsedQuestions(ctx context.Context, arg sqlcgen.CountUsedQuestionsParams) (int64, error)
	CountUnusedQuestions(ctx context.Context, arg sqlcgen.CountUnusedQuestionsParams) (int64, error)
	ListPartitionCounts(ctx context.Context) ([]sqlcgen.ListPartitionCountsRow, error)
}

// Partition is the (theme, difficulty, age group) key of a question pool.
type Partition struct {
	Theme      string
	Difficulty string
	AgeGroup   string
}

// Filter narrows bulk admin operations. Empty fields match every value.
type Filter struct {
	Theme      string
	Difficulty string
	AgeGroup   string
}

// NewQuestion is one generated pair waiting to be persisted.
type NewQuestion struct {
	QuestionText string
	AnswerText   string
}

// QuestionRepository wraps sqlc queries for the question pool.
type QuestionRepository struct {
	store questionStore
}

func NewQuestionRepository(store questionStore) *QuestionRepository {
	return &QuestionRepository{store: store}
}

// FindOldestUnused returns the oldest unused question of the partition; ok is false when the pool is empty.
func (r *QuestionRepository) FindOldestUnused(ctx context.Context, p Partition) (sqlcgen.Question, bool, error) {
	row, err := r.store.GetOldestUnusedQuestion(ctx, sqlcgen.GetOldestUnusedQuestionParams{
		Theme:      p.Theme,
		Difficulty: p.Difficulty,
		AgeGroup:   p.AgeGroup,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sqlcgen.Question{}, false, nil
		}
		return sqlcgen.Question{}, false, fmt.Errorf("find oldest unused: %w", err)
	}
	return row, true, nil
}

// Claim flips used=false to used=true for a single row. It returns ErrClaimConflict
// when the row was already used.
func (r *QuestionRepository) Claim(ctx context.Context, id pgtype.UUID) (sqlcgen.Question, error) {
	row, err := r.store.ClaimQuestion(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sqlcgen.Question{}, ErrClaimConflict
		}
		return sqlcgen.Question{}, fmt.Errorf("claim question: %w", err)
	}
	return row, nil
}

// InsertBatch stores a generated batch as unused rows in one statement and returns
// them in input order.
func (r *QuestionRepository) InsertBatch(ctx context.Context, p Partition, items []NewQuestion) ([]sqlcgen.Question, error) {
	if len(items) == 0 {
		return nil, nil
	}
	params := sqlcgen.InsertQuestionBatchParams{
		Theme:         p.Theme,
		Difficulty:    p.Difficulty,
		AgeGroup:      p.AgeGroup,
		QuestionTexts: make([]string, len(items)),
		AnswerTexts:   make([]string, len(items)),
	}
	for i, item := range items {
		params.QuestionTexts[i] = item.QuestionText
		params.AnswerTexts[i] = item.AnswerText
	}

	rows, err := r.store.InsertQuestionBatch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}
	if len(rows) != len(items) {
		return nil, fmt.Errorf("insert batch: expected %d rows, got %d", len(items), len(rows))
	}
	return inInputOrder(params.QuestionTexts, rows), nil
}

// RETURNING order is not guaranteed by Postgres; question texts are unique within a batch.
func inInputOrder(texts []string, rows []sqlcgen.Question) []sqlcgen.Question {
	byText := make(map[string]sqlcgen.Question, len(rows))
	for _, row := range rows {
		byText[row.QuestionText] = row
	}
	if len(byText) != len(rows) {
		return rows
	}
	ordered := make([]sqlcgen.Question, 0, len(rows))
	for _, text := range texts {
		row, ok := byText[text]
		if !ok {
			return rows
		}
		ordered = append(ordered, row)
	}
	return ordered
}

// ResetUsed marks every used question matching the filter as unused again.
func (r *QuestionRepository) ResetUsed(ctx context.Context, f Filter) (int64, error) {
	n, err := r.store.ResetUsedQuestions(ctx, sqlcgen.ResetUsedQuestionsParams{
		Theme:      optionalText(f.Theme),
		Difficulty: optionalText(f.Difficulty),
		AgeGroup:   optionalText(f.AgeGroup),
	})
	if err != nil {
		return 0, fmt.Errorf("reset used: %w", err)
	}
	return n, nil
}

// CountUsed counts used questions matching the filter.
func (r *QuestionRepository) CountUsed(ctx context.Context, f Filter) (int64, error) {
	n, err := r.store.CountUsedQuestions(ctx, sqlcgen.CountUsedQuestionsParams{
		Theme:      optionalText(f.Theme),
		Difficulty: optionalText(f.Difficulty),
		AgeGroup:   optionalText(f.AgeGroup),
	})
	if err != nil {
		return 0, fmt.Errorf("count used: %w", err)
	}
	return n, nil
}

// CountUnused counts the questions still available in a partition.
func (r *QuestionRepository) CountUnused(ctx context.Context, p Partition) (int64, error) {
	n, err := r.store.CountUnusedQuestions(ctx, sqlcgen.CountUnusedQuestionsParams{
		Theme:      p.Theme,
		Difficulty: p.Difficulty,
		AgeGroup:   p.AgeGroup,
	})
	if err != nil {
		return 0, fmt.Errorf("count unused: %w", err)
	}
	return n, nil
}

// PartitionCounts summarizes pool size per partition.
func (r *QuestionRepository) PartitionCounts(ctx context.Context) ([]sqlcgen.ListPartitionCountsRow, error) {
	rows, err := r.store.ListPartitionCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list partition counts: %w", err)
	}
	return rows, nil
}

func optionalText(v string) pgtype.Text {
	if v == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: v, Valid: true}
}
