package handler

import (
	"net/http"

	"papergen/internal/app/service"
	"papergen/internal/common"
	"papergen/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
	authService     *service.AuthService
	log             *logger.Logger
}

func NewSettingsHandler(settingsService *service.SettingsService, authService *service.AuthService, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, authService: authService, log: log}
}

func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.get)
	r.Put("/", h.update)
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, h.settingsService.GetSettings(r.Context()))
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req service.UpdateSettingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	settings, err := h.settingsService.UpdateSettings(r.Context(), req)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	h.authService.Refresh(r.Context(), id)
	common.RespondWithJSON(w, http.StatusOK, settings)
}
