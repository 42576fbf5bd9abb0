package question

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/tortaquiz/internal/auth"
	"github.com/gokatarajesh/tortaquiz/internal/auth/jwt"
	"github.com/gokatarajesh/tortaquiz/internal/db/repository"
	sqlcgen "github.com/gokatarajesh/tortaquiz/internal/db/sqlc"
	httperrors "github.com/gokatarajesh/tortaquiz/pkg/http/errors"
)

func newTestHandlers(store Store, llm TextGenerator, prewarm bool) *HTTPHandlers {
	svc := newTestService(store, llm, nil)
	var pw *Prewarmer
	if prewarm {
		pw = NewPrewarmer(store, svc.Batches(), zerolog.Nop(), PrewarmOptions{MinUnused: 5, QueueSize: 1})
	}
	return NewHTTPHandlers(svc, pw, zerolog.Nop())
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/questions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httperrors.ErrorResponse {
	t.Helper()
	var body httperrors.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestGenerateHandlerServesStoredQuestion(t *testing.T) {
	repo := newTestRepo()
	_, err := repo.InsertBatch(context.Background(), adultPartition, []repository.NewQuestion{
		{QuestionText: "Qual a capital da França?", AnswerText: "Paris"},
	})
	require.NoError(t, err)
	h := newTestHandlers(repo, &stubGenerator{}, false)

	rec := postJSON(h.Generate, `{"theme":"geral","difficulty":"medio","ageGroup":"adulto"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pergunta":"Qual a capital da França?","resposta":"Paris","fromCache":true}`, rec.Body.String())
}

func TestGenerateHandlerReportsBatchSize(t *testing.T) {
	h := newTestHandlers(newTestRepo(), &stubGenerator{content: completion(numberedPairs(4)...)}, false)

	rec := postJSON(h.Generate, `{"theme":"geral","difficulty":"medio","ageGroup":"adulto"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pergunta":"Pergunta número 1?","resposta":"Resposta 1","fromCache":false,"batchGenerated":4}`, rec.Body.String())
}

func TestGenerateHandlerErrorMapping(t *testing.T) {
	cases := []struct {
		name    string
		llm     *stubGenerator
		status  int
		message string
	}{
		{"rate limited", &stubGenerator{err: ErrRateLimited}, http.StatusTooManyRequests, msgRateLimited},
		{"payment required", &stubGenerator{err: ErrPaymentRequired}, http.StatusPaymentRequired, msgPaymentRequired},
		{"upstream", &stubGenerator{err: ErrUpstream}, http.StatusInternalServerError, msgGeneric},
		{"invalid format", &stubGenerator{content: "nope"}, http.StatusInternalServerError, msgInvalidFormat},
		{"no valid questions", &stubGenerator{content: `[{"pergunta":"x"}]`}, http.StatusInternalServerError, msgNoValidQuestions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandlers(newTestRepo(), tc.llm, false)

			rec := postJSON(h.Generate, `{"theme":"geral","difficulty":"medio","ageGroup":"adulto"}`)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.message, decodeError(t, rec).Error)
		})
	}
}

func TestGenerateHandlerHidesStoreErrors(t *testing.T) {
	h := newTestHandlers(failingStore{err: errors.New("pq: password authentication failed")}, &stubGenerator{}, false)

	rec := postJSON(h.Generate, `{"theme":"geral","difficulty":"medio","ageGroup":"adulto"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, msgGeneric, body.Error)
	assert.Equal(t, httperrors.ErrCodeInternalError, body.Code)
}

func TestGenerateHandlerValidation(t *testing.T) {
	h := newTestHandlers(newTestRepo(), &stubGenerator{}, false)

	rec := postJSON(h.Generate, `{"theme":"geral","difficulty":"medio"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "ageGroup", body.Field)
	assert.Equal(t, httperrors.ErrCodeValidationFailed, body.Code)

	rec = postJSON(h.Generate, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/questions", nil)
	rec = httptest.NewRecorder()
	h.Generate(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestResetHandlerAcceptsEmptyBody(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	_, err := repo.InsertBatch(ctx, adultPartition, []repository.NewQuestion{{QuestionText: "A?", AnswerText: "a"}})
	require.NoError(t, err)
	_, err = repo.Claim(ctx, mustOldest(t, repo).ID)
	require.NoError(t, err)

	h := newTestHandlers(repo, &stubGenerator{}, false)

	rec := postJSON(h.ResetUsed, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reset":1}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/questions/used?theme=geral", nil)
	rec = httptest.NewRecorder()
	h.CountUsed(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())
}

func TestResetHandlerLogsAdminSubject(t *testing.T) {
	var buf bytes.Buffer
	svc := newTestService(newTestRepo(), &stubGenerator{}, nil)
	h := NewHTTPHandlers(svc, nil, zerolog.New(&buf))

	authSvc := auth.NewService(auth.ServiceOptions{
		TokenConfig:  jwt.TokenConfig{Secret: []byte("secret")},
		PasswordHash: "unused",
	}, zerolog.Nop())
	token, err := authSvc.IssueToken()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/questions/reset", strings.NewReader(`{"theme":"geral"}`))
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	rec := httptest.NewRecorder()
	auth.RequireAdmin(authSvc, zerolog.Nop())(http.HandlerFunc(h.ResetUsed)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"admin":"admin"`)
	assert.Contains(t, buf.String(), `"theme":"geral"`)
}

func TestPrewarmHandler(t *testing.T) {
	h := newTestHandlers(newTestRepo(), &stubGenerator{}, false)
	rec := postJSON(h.Prewarm, `{"partitions":[{"theme":"geral","difficulty":"medio","ageGroup":"adulto"}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	h = newTestHandlers(newTestRepo(), &stubGenerator{}, true)
	rec = postJSON(h.Prewarm, `{"partitions":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(h.Prewarm, `{"partitions":[{"theme":"geral","difficulty":"medio","ageGroup":"adulto"},{"theme":"futebol","difficulty":"facil","ageGroup":"crianca"}]}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"queued":1,"requested":2}`, rec.Body.String())

	rec = postJSON(h.Prewarm, `{"partitions":[{"theme":"geral","difficulty":"medio","ageGroup":"adulto"}]}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, httperrors.ErrCodePrewarmFull, decodeError(t, rec).Code)
}

func mustOldest(t *testing.T, repo *repository.QuestionRepository) sqlcgen.Question {
	t.Helper()
	row, ok, err := repo.FindOldestUnused(context.Background(), adultPartition)
	require.NoError(t, err)
	require.True(t, ok)
	return row
}
