package handler

import (
	"net/http"

	"papergen/internal/app/service"
	"papergen/internal/common"
	"papergen/internal/domain/model"
	"papergen/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

type BankHandler struct {
	bankService *service.BankService
	log         *logger.Logger
}

func NewBankHandler(bankService *service.BankService, log *logger.Logger) *BankHandler {
	return &BankHandler{bankService: bankService, log: log}
}

func (h *BankHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/{questionID}", h.update)
	r.Delete("/{questionID}", h.delete)
}

func (h *BankHandler) list(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, h.bankService.ListBankQuestions(r.Context()))
}

func (h *BankHandler) create(w http.ResponseWriter, r *http.Request) {
	var fields model.BankQuestionFields
	if !decodeJSON(w, r, &fields) {
		return
	}
	q, err := h.bankService.SaveBankQuestion(r.Context(), fields)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, q)
}

func (h *BankHandler) update(w http.ResponseWriter, r *http.Request) {
	var q model.BankQuestion
	if !decodeJSON(w, r, &q) {
		return
	}
	q.ID = chi.URLParam(r, "questionID")
	updated, err := h.bankService.UpdateBankQuestion(r.Context(), q)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, updated)
}

func (h *BankHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.bankService.DeleteBankQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
		respondError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
