package stats

import (
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/gokatarajesh/tortaquiz/pkg/http/errors"
)

// HTTPHandler exposes usage counters.
type HTTPHandler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHTTPHandler(svc *Service, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		svc:    svc,
		logger: logger.With().Str("component", "stats_http").Logger(),
	}
}

// HandleGet responds with the current counters.
// Route: GET /v1/stats
func (h *HTTPHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w)
		return
	}

	snap, err := h.svc.Snapshot(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("stats snapshot failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeStatsFailed, "failed to read stats")
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, snap)
}
