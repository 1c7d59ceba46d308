package handler

import (
	"net/http"
	"strconv"

	"papergen/internal/app/render"
	"papergen/internal/app/service"
	"papergen/internal/common"
	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type PaperHandler struct {
	paperService *service.PaperService
	shareService *service.ShareService
	log          *logger.Logger
}

func NewPaperHandler(paperService *service.PaperService, shareService *service.ShareService, log *logger.Logger) *PaperHandler {
	return &PaperHandler{paperService: paperService, shareService: shareService, log: log}
}

// RegisterRoutes mounts the owned-paper endpoints. The print routes accept
// ?answers=true and ?download=true.
func (h *PaperHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.save)
	r.Get("/{paperID}", h.get)
	r.Delete("/{paperID}", h.delete)
	r.Post("/{paperID}/duplicate", h.duplicate)
	r.Get("/{paperID}/print", h.print)
	r.Get("/{paperID}/share", h.shareLink)
}

// RegisterAttendedRoutes mounts the attended-paper endpoints.
func (h *PaperHandler) RegisterAttendedRoutes(r chi.Router) {
	r.Get("/", h.listAttended)
	r.Post("/", h.saveAttended)
	r.Get("/{paperID}", h.getAttended)
	r.Get("/{paperID}/print", h.printAttended)
}

func (h *PaperHandler) list(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, h.paperService.ListPapers(r.Context()))
}

func (h *PaperHandler) save(w http.ResponseWriter, r *http.Request) {
	var paper model.QuestionPaper
	if !decodeJSON(w, r, &paper) {
		return
	}
	if paper.Source == "" {
		paper.Source = model.SourceManual
	}
	saved, err := h.paperService.SavePaper(r.Context(), &paper)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, saved)
}

func (h *PaperHandler) get(w http.ResponseWriter, r *http.Request) {
	paper, err := h.paperService.GetPaper(r.Context(), chi.URLParam(r, "paperID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, paper)
}

func (h *PaperHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.paperService.DeletePaper(r.Context(), chi.URLParam(r, "paperID")); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PaperHandler) duplicate(w http.ResponseWriter, r *http.Request) {
	clone, err := h.paperService.DuplicatePaper(r.Context(), chi.URLParam(r, "paperID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, clone)
}

func (h *PaperHandler) print(w http.ResponseWriter, r *http.Request) {
	paper, err := h.paperService.GetPaper(r.Context(), chi.URLParam(r, "paperID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	h.writeDocument(w, r, paper)
}

func (h *PaperHandler) shareLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.shareService.Link(r.Context(), chi.URLParam(r, "paperID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, link)
}

func (h *PaperHandler) listAttended(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, h.paperService.ListAttendedPapers(r.Context()))
}

func (h *PaperHandler) saveAttended(w http.ResponseWriter, r *http.Request) {
	var paper model.QuestionPaper
	if !decodeJSON(w, r, &paper) {
		return
	}
	if err := h.paperService.SaveAttendedPaper(r.Context(), &paper); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PaperHandler) getAttended(w http.ResponseWriter, r *http.Request) {
	paper, err := h.paperService.GetAttendedPaper(r.Context(), chi.URLParam(r, "paperID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, paper)
}

func (h *PaperHandler) printAttended(w http.ResponseWriter, r *http.Request) {
	paper, err := h.paperService.GetAttendedPaper(r.Context(), chi.URLParam(r, "paperID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	h.writeDocument(w, r, paper)
}

func (h *PaperHandler) writeDocument(w http.ResponseWriter, r *http.Request, paper *model.QuestionPaper) {
	answers, _ := strconv.ParseBool(r.URL.Query().Get("answers"))
	doc, err := render.Document(paper, render.Options{ShowAnswers: answers})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if download, _ := strconv.ParseBool(r.URL.Query().Get("download")); download {
		w.Header().Set("Content-Disposition", `attachment; filename="`+render.FileName(paper)+`"`)
	}
	common.RespondWithHTML(w, http.StatusOK, []byte(doc))
}
