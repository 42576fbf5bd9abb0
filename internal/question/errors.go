package question

import "errors"

var (
	// ErrRateLimited is returned when the text generation gateway throttles us.
	ErrRateLimited = errors.New("generator rate limited")
	// ErrPaymentRequired is returned when the gateway account is out of credits.
	ErrPaymentRequired = errors.New("generator credits exhausted")
	// ErrUpstream covers every other gateway failure, including an empty completion.
	ErrUpstream = errors.New("generator request failed")
	// ErrNotConfigured means the gateway URL or key is missing.
	ErrNotConfigured = errors.New("generator not configured")
	// ErrInvalidFormat means the completion was not a non-empty JSON array.
	ErrInvalidFormat = errors.New("generator returned invalid format")
	// ErrNoValidQuestions means nothing usable survived normalization and dedupe.
	ErrNoValidQuestions = errors.New("no valid questions generated")
	// ErrStore wraps any database failure.
	ErrStore = errors.New("question store failure")
)
