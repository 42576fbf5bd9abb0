package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/tortaquiz/internal/question"
)

// Config holds connection details for the chat-completions gateway.
type Config struct {
	GatewayURL  string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Generator implements question.TextGenerator against an OpenAI-compatible gateway.
type Generator struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

var _ question.TextGenerator = (*Generator)(nil)

func NewGenerator(cfg Config, logger zerolog.Logger) *Generator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if cfg.Model == "" {
		cfg.Model = "google/gemini-3-flash-preview"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4000
	}

	return &Generator{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		config: cfg,
		logger: logger.With().Str("component", "ai_generator").Logger(),
	}
}

// Complete sends the prompt once and returns the first choice's content. There is no retry:
// throttling and credit errors are surfaced to the caller as-is.
func (g *Generator) Complete(ctx context.Context, prompt question.Prompt) (string, error) {
	if g.config.GatewayURL == "" || g.config.APIKey == "" {
		return "", fmt.Errorf("%w: AI_GATEWAY_URL and AI_API_KEY must be set", question.ErrNotConfigured)
	}

	payload := chatRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Temperature: g.config.Temperature,
		MaxTokens:   g.config.MaxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.GatewayURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", question.ErrUpstream, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", question.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		g.logger.Warn().Msg("gateway rate limit exceeded")
		return "", fmt.Errorf("%w: status %d", question.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusPaymentRequired:
		g.logger.Warn().Msg("gateway payment required")
		return "", fmt.Errorf("%w: status %d", question.ErrPaymentRequired, resp.StatusCode)
	case resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		g.logger.Error().Int("status", resp.StatusCode).Str("body", string(snippet)).Msg("gateway error")
		return "", fmt.Errorf("%w: gateway returned status %d", question.ErrUpstream, resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("%w: decode gateway payload: %w", question.ErrUpstream, err)
	}
	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: no content in gateway response", question.ErrUpstream)
	}

	content := chatResp.Choices[0].Message.Content
	g.logger.Debug().Int("content_len", len(content)).Str("model", g.config.Model).Msg("completion received")
	return content, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
