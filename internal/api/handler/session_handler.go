package handler

import (
	"net/http"

	"papergen/internal/app/service"
	"papergen/internal/common"
	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type SessionHandler struct {
	sessionService *service.SessionService
	log            *logger.Logger
}

func NewSessionHandler(sessionService *service.SessionService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, log: log}
}

func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.snapshot)
	r.Post("/navigate", h.navigate)
	r.Post("/retry", h.retry)
	r.Post("/dismiss", h.dismiss)
}

// RegisterGenerateRoutes mounts POST /generate.
func (h *SessionHandler) RegisterGenerateRoutes(r chi.Router) {
	r.Post("/", h.generate)
}

func (h *SessionHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessionService.Snapshot(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) navigate(w http.ResponseWriter, r *http.Request) {
	var req service.NavigateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := h.sessionService.Navigate(r.Context(), req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) retry(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessionService.Retry(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) dismiss(w http.ResponseWriter, r *http.Request) {
	snap, err := h.sessionService.Dismiss(r.Context())
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := h.sessionService.Generate(r.Context(), req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, snap)
}
