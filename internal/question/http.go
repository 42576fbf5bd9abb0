package question

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/tortaquiz/internal/auth"
	"github.com/gokatarajesh/tortaquiz/internal/db/repository"
	"github.com/gokatarajesh/tortaquiz/internal/logging"
	httperrors "github.com/gokatarajesh/tortaquiz/pkg/http/errors"
)

// User-facing messages, in the game's language.
const (
	msgRateLimited      = "Limite de requisições excedido. Tente novamente em alguns segundos."
	msgPaymentRequired  = "Créditos insuficientes. Adicione mais créditos à sua conta."
	msgInvalidFormat    = "Formato inválido retornado pela IA. Tente novamente."
	msgNoValidQuestions = "Nenhuma pergunta válida foi gerada. Tente novamente."
	msgGeneric          = "Erro ao gerar pergunta. Tente novamente."
)

// HTTPHandlers provides REST endpoints for question supply and pool maintenance.
type HTTPHandlers struct {
	svc      *Service
	prewarm  *Prewarmer
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for question endpoints. prewarm may be nil.
func NewHTTPHandlers(svc *Service, prewarm *Prewarmer, logger zerolog.Logger) *HTTPHandlers {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &HTTPHandlers{
		svc:      svc,
		prewarm:  prewarm,
		validate: validate,
		logger:   logger.With().Str("component", "question_http").Logger(),
	}
}

// Generate handles POST /v1/questions
func (h *HTTPHandlers) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	req.Theme = strings.TrimSpace(req.Theme)
	req.Difficulty = strings.TrimSpace(req.Difficulty)
	req.AgeGroup = strings.TrimSpace(req.AgeGroup)
	if err := h.validate.Struct(req); err != nil {
		h.respondValidation(w, err)
		return
	}

	result, err := h.svc.Next(r.Context(), req)
	if err != nil {
		status, code, message := statusFor(err)
		log := logging.FromContext(r.Context())
		log.Error().
			Err(err).
			Int("status", status).
			Str("theme", req.Theme).
			Str("difficulty", req.Difficulty).
			Str("age_group", req.AgeGroup).
			Msg("question request failed")
		httperrors.RespondError(w, status, code, message)
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, result)
}

// CountUsed handles GET /v1/admin/questions/used?theme=&difficulty=&ageGroup=
func (h *HTTPHandlers) CountUsed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	filter := repository.Filter{
		Theme:      q.Get("theme"),
		Difficulty: q.Get("difficulty"),
		AgeGroup:   q.Get("ageGroup"),
	}
	n, err := h.svc.CountUsed(r.Context(), filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("count used failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeCountFailed, "Não foi possível contar as perguntas usadas.")
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"count": n,
	})
}

type resetRequest struct {
	Theme      string `json:"theme"`
	Difficulty string `json:"difficulty"`
	AgeGroup   string `json:"ageGroup"`
}

// ResetUsed handles POST /v1/admin/questions/reset. An empty body resets every partition.
func (h *HTTPHandlers) ResetUsed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w)
		return
	}

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	n, err := h.svc.ResetUsed(r.Context(), repository.Filter{
		Theme:      req.Theme,
		Difficulty: req.Difficulty,
		AgeGroup:   req.AgeGroup,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("reset used failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeResetFailed, "Não foi possível resetar as perguntas.")
		return
	}

	event := h.logger.Info().Int64("reset", n).Str("theme", req.Theme)
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		event = event.Str("admin", claims.Subject)
	}
	event.Msg("used questions returned to the pool")

	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"reset": n,
	})
}

// Pool handles GET /v1/admin/questions/pool
func (h *HTTPHandlers) Pool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondMethodNotAllowed(w)
		return
	}

	counts, err := h.svc.Pool(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("pool overview failed")
		httperrors.RespondInternalError(w, "Não foi possível listar o banco de perguntas.")
		return
	}

	httperrors.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"partitions": counts,
	})
}

type prewarmRequest struct {
	Partitions []Request `json:"partitions" validate:"required,min=1,dive"`
}

// Prewarm handles POST /v1/admin/questions/prewarm
func (h *HTTPHandlers) Prewarm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondMethodNotAllowed(w)
		return
	}
	if h.prewarm == nil {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeServiceUnavailable, "Prewarm is disabled")
		return
	}

	var req prewarmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondValidation(w, err)
		return
	}

	queued := 0
	for _, p := range req.Partitions {
		if !h.prewarm.Enqueue(p.Partition()) {
			break
		}
		queued++
	}
	if queued == 0 {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodePrewarmFull, "Prewarm queue is full")
		return
	}

	httperrors.RespondJSON(w, http.StatusAccepted, map[string]interface{}{
		"queued":    queued,
		"requested": len(req.Partitions),
	})
}

func (h *HTTPHandlers) respondValidation(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, fe.Field()+" is "+fe.Tag(), fe.Field())
		return
	}
	httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
}

// statusFor maps a Next failure to its HTTP status, error code and user-facing message.
// Store and transport causes are logged, never exposed.
func statusFor(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, httperrors.ErrCodeRateLimited, msgRateLimited
	case errors.Is(err, ErrPaymentRequired):
		return http.StatusPaymentRequired, httperrors.ErrCodePaymentRequired, msgPaymentRequired
	case errors.Is(err, ErrInvalidFormat):
		return http.StatusInternalServerError, httperrors.ErrCodeInvalidFormat, msgInvalidFormat
	case errors.Is(err, ErrNoValidQuestions):
		return http.StatusInternalServerError, httperrors.ErrCodeNoValidQuestions, msgNoValidQuestions
	case errors.Is(err, ErrUpstream), errors.Is(err, ErrNotConfigured):
		return http.StatusInternalServerError, httperrors.ErrCodeUpstreamError, msgGeneric
	default:
		return http.StatusInternalServerError, httperrors.ErrCodeInternalError, msgGeneric
	}
}
