package question

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/tortaquiz/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/tortaquiz/internal/db/sqlc"
)

// memQueries mimics the sqlc querier over an in-memory table.
type memQueries struct {
	mu   sync.Mutex
	rows []sqlcgen.Question
	now  time.Time
}

func newMemQueries() *memQueries {
	return &memQueries{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *memQueries) GetOldestUnusedQuestion(_ context.Context, arg sqlcgen.GetOldestUnusedQuestionParams) (sqlcgen.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if !row.Used && row.Theme == arg.Theme && row.Difficulty == arg.Difficulty && row.AgeGroup == arg.AgeGroup {
			return row, nil
		}
	}
	return sqlcgen.Question{}, pgx.ErrNoRows
}

func (m *memQueries) ClaimQuestion(_ context.Context, id pgtype.UUID) (sqlcgen.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && !m.rows[i].Used {
			m.rows[i].Used = true
			return m.rows[i], nil
		}
	}
	return sqlcgen.Question{}, pgx.ErrNoRows
}

// InsertQuestionBatch returns rows in reverse to exercise the repository's reordering.
func (m *memQueries) InsertQuestionBatch(_ context.Context, arg sqlcgen.InsertQuestionBatchParams) ([]sqlcgen.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(arg.QuestionTexts) != len(arg.AnswerTexts) {
		return nil, fmt.Errorf("array length mismatch")
	}
	out := make([]sqlcgen.Question, len(arg.QuestionTexts))
	for i := range arg.QuestionTexts {
		m.now = m.now.Add(time.Millisecond)
		row := sqlcgen.Question{
			ID:           pgtype.UUID{Bytes: uuid.New(), Valid: true},
			Theme:        arg.Theme,
			Difficulty:   arg.Difficulty,
			AgeGroup:     arg.AgeGroup,
			QuestionText: arg.QuestionTexts[i],
			AnswerText:   arg.AnswerTexts[i],
			CreatedAt:    pgtype.Timestamptz{Time: m.now, Valid: true},
		}
		m.rows = append(m.rows, row)
		out[len(out)-1-i] = row
	}
	return out, nil
}

func (m *memQueries) ResetUsedQuestions(_ context.Context, arg sqlcgen.ResetUsedQuestionsParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.rows {
		if m.rows[i].Used && matchesFilter(m.rows[i], arg.Theme, arg.Difficulty, arg.AgeGroup) {
			m.rows[i].Used = false
			n++
		}
	}
	return n, nil
}

func (m *memQueries) CountUsedQuestions(_ context.Context, arg sqlcgen.CountUsedQuestionsParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if row.Used && matchesFilter(row, arg.Theme, arg.Difficulty, arg.AgeGroup) {
			n++
		}
	}
	return n, nil
}

func (m *memQueries) CountUnusedQuestions(_ context.Context, arg sqlcgen.CountUnusedQuestionsParams) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, row := range m.rows {
		if !row.Used && row.Theme == arg.Theme && row.Difficulty == arg.Difficulty && row.AgeGroup == arg.AgeGroup {
			n++
		}
	}
	return n, nil
}

func (m *memQueries) ListPartitionCounts(_ context.Context) ([]sqlcgen.ListPartitionCountsRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	index := map[repository.Partition]int{}
	var out []sqlcgen.ListPartitionCountsRow
	for _, row := range m.rows {
		key := repository.Partition{Theme: row.Theme, Difficulty: row.Difficulty, AgeGroup: row.AgeGroup}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, sqlcgen.ListPartitionCountsRow{Theme: row.Theme, Difficulty: row.Difficulty, AgeGroup: row.AgeGroup})
		}
		out[i].Total++
		if !row.Used {
			out[i].Unused++
		}
	}
	return out, nil
}

func matchesFilter(row sqlcgen.Question, theme, difficulty, ageGroup pgtype.Text) bool {
	return (!theme.Valid || theme.String == row.Theme) &&
		(!difficulty.Valid || difficulty.String == row.Difficulty) &&
		(!ageGroup.Valid || ageGroup.String == row.AgeGroup)
}

type stubGenerator struct {
	content string
	err     error
	calls   atomic.Int32
	last    Prompt
	mu      sync.Mutex
}

func (g *stubGenerator) Complete(_ context.Context, prompt Prompt) (string, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.last = prompt
	g.mu.Unlock()
	return g.content, g.err
}

type servedEvent struct {
	partition repository.Partition
	fromCache bool
	batchSize int
}

type recordingStats struct {
	mu     sync.Mutex
	events []servedEvent
}

func (s *recordingStats) RecordServed(_ context.Context, p repository.Partition, fromCache bool, batchSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, servedEvent{partition: p, fromCache: fromCache, batchSize: batchSize})
	return nil
}

var adultPartition = repository.Partition{Theme: ThemeGeral, Difficulty: DifficultyMedio, AgeGroup: AgeAdulto}

func adultRequest() Request {
	return Request{Theme: ThemeGeral, Difficulty: DifficultyMedio, AgeGroup: AgeAdulto}
}

func newTestRepo() *repository.QuestionRepository {
	return repository.NewQuestionRepository(newMemQueries())
}

func newTestService(store Store, llm TextGenerator, stats StatsRecorder) *Service {
	return NewService(store, llm, stats, zerolog.Nop(), ServiceOptions{})
}

// completion renders pairs the way the gateway does, as a JSON array of pergunta/resposta objects.
func completion(pairs ...Pair) string {
	items := make([]map[string]string, len(pairs))
	for i, p := range pairs {
		items[i] = map[string]string{"pergunta": p.Question, "resposta": p.Answer}
	}
	raw, _ := json.Marshal(items)
	return string(raw)
}

func numberedPairs(n int) []Pair {
	pairs := make([]Pair, n)
	for i := range pairs {
		pairs[i] = Pair{Question: fmt.Sprintf("Pergunta número %d?", i+1), Answer: fmt.Sprintf("Resposta %d", i+1)}
	}
	return pairs
}
