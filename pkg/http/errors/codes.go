package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeAuthenticationRequired = "authentication_required"
	ErrCodeLoginFailed            = "login_failed"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Generation errors
	ErrCodeRateLimited      = "rate_limited"
	ErrCodePaymentRequired  = "payment_required"
	ErrCodeInvalidFormat    = "invalid_format"
	ErrCodeNoValidQuestions = "no_valid_questions"
	ErrCodeUpstreamError    = "upstream_error"

	// Admin errors
	ErrCodeResetFailed   = "reset_failed"
	ErrCodeCountFailed   = "count_failed"
	ErrCodePrewarmFull   = "prewarm_queue_full"
	ErrCodeStatsFailed   = "stats_failed"
	ErrCodeAdminDisabled = "admin_disabled"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
