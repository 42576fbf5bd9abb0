package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/tortaquiz/pkg/http/errors"
)

// HTTPHandlers provides REST endpoints for admin authentication.
type HTTPHandlers struct {
	authSvc *Service
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for auth endpoints.
func NewHTTPHandlers(authSvc *Service, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		authSvc: authSvc,
		logger:  logger.With().Str("component", "auth_http").Logger(),
	}
}

// Login handles POST /v1/admin/login
func (h *HTTPHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.Password == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "password is required", "password")
		return
	}

	tokens, err := h.authSvc.Login(req)
	switch {
	case errors.Is(err, ErrAdminDisabled):
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeAdminDisabled, "Admin access is not configured")
		return
	case errors.Is(err, ErrInvalidCredentials):
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeLoginFailed, "Invalid credentials")
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("admin token issue failed")
		httperrors.RespondInternalError(w, "Failed to issue token")
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, tokens)
}
