package handler

import (
	"net/http"

	"papergen/internal/api/middleware"
	"papergen/internal/app/render"
	"papergen/internal/app/service"
	"papergen/internal/app/sharelink"
	"papergen/internal/common"
	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type ShareHandler struct {
	shareService *service.ShareService
	log          *logger.Logger
}

func NewShareHandler(shareService *service.ShareService, log *logger.Logger) *ShareHandler {
	return &ShareHandler{shareService: shareService, log: log}
}

func (h *ShareHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.Authenticator).Post("/encode", h.encode)
	r.With(middleware.OptionalAuthenticator).Post("/open", h.open)
}

type openLinkRequest struct {
	Link string `json:"link"`
}

func (h *ShareHandler) encode(w http.ResponseWriter, r *http.Request) {
	var paper model.QuestionPaper
	if !decodeJSON(w, r, &paper) {
		return
	}
	link, err := h.shareService.LinkFor(&paper)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, link)
}

func (h *ShareHandler) open(w http.ResponseWriter, r *http.Request) {
	var req openLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	opened, err := h.shareService.Open(r.Context(), req.Link)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, opened)
}

// View renders a shared paper read-only without touching any store.
func (h *ShareHandler) View(w http.ResponseWriter, r *http.Request) {
	paper, err := sharelink.Decode(chi.URLParam(r, "token"))
	if err != nil {
		common.RespondWithHTML(w, http.StatusBadRequest, []byte("<!DOCTYPE html><p>"+sharelink.UserMessage(err)+"</p>"))
		return
	}
	doc, err := render.Document(paper, render.Options{})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithHTML(w, http.StatusOK, []byte(doc))
}
