package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/tortaquiz/internal/question"
)

func newTestGenerator(url string) *Generator {
	return NewGenerator(Config{
		GatewayURL:  url,
		APIKey:      "test-key",
		Model:       "test-model",
		Temperature: 0.8,
	}, zerolog.Nop())
}

func TestCompleteSendsChatRequest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"[{\"pergunta\":\"P\",\"resposta\":\"R\"}]"}}]}`))
	}))
	defer srv.Close()

	content, err := newTestGenerator(srv.URL).Complete(context.Background(), question.Prompt{System: "sys", User: "usr"})
	require.NoError(t, err)
	assert.Equal(t, `[{"pergunta":"P","resposta":"R"}]`, content)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "sys", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, 4000, got.MaxTokens)
}

func TestCompleteMapsStatusCodes(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, question.ErrRateLimited},
		{http.StatusPaymentRequired, question.ErrPaymentRequired},
		{http.StatusInternalServerError, question.ErrUpstream},
		{http.StatusUnauthorized, question.ErrUpstream},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":"nope"}`))
		}))

		_, err := newTestGenerator(srv.URL).Complete(context.Background(), question.Prompt{})
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		srv.Close()
	}
}

func TestCompleteMissingContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := newTestGenerator(srv.URL).Complete(context.Background(), question.Prompt{})
	assert.ErrorIs(t, err, question.ErrUpstream)
}

func TestCompleteNotConfigured(t *testing.T) {
	gen := NewGenerator(Config{GatewayURL: "http://localhost"}, zerolog.Nop())

	_, err := gen.Complete(context.Background(), question.Prompt{})
	assert.ErrorIs(t, err, question.ErrNotConfigured)
}
