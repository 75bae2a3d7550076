package handlers

import (
	"errors"
	"net/http"

	"github.com/diewo77/traiteur-admin/internal/httpx"
	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/repository"
	"github.com/diewo77/traiteur-admin/internal/services"
)

type QuoteHandler struct {
	repo *repository.QuoteRepo
	svc  *services.QuoteService
	log  *logger.Logger
}

func NewQuoteHandler(repo *repository.QuoteRepo, svc *services.QuoteService, log *logger.Logger) *QuoteHandler {
	return &QuoteHandler{repo: repo, svc: svc, log: log}
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	quotes, total, err := h.repo.List(r.Context(), p)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writePage(w, quotes, total, p)
}

func (h *QuoteHandler) ListFinished(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	quotes, total, err := h.repo.ListFinished(r.Context(), p)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writePage(w, quotes, total, p)
}

func (h *QuoteHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	quotes, total, err := h.repo.ListDeleted(r.Context(), p)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	writePage(w, quotes, total, p)
}

func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.QuoteInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	q, err := h.svc.Create(r.Context(), in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, q)
}

func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.QuoteInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	q, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) Finish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	f, err := h.svc.Finish(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, f)
}

func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *QuoteHandler) DeleteFinished(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	d, err := h.svc.DeleteFinished(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *QuoteHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	q, err := h.svc.Restore(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, q)
}

func (h *QuoteHandler) writeErr(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr.Violations)
	case errors.Is(err, services.ErrPromoUnusable):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "promo_code_unusable", nil)
	case errors.Is(err, repository.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "quote_not_found", nil)
	default:
		h.log.Error("quote operation failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
