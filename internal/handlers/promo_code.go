package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/diewo77/traiteur-admin/internal/httpx"
	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/models"
	"github.com/diewo77/traiteur-admin/internal/repository"
	"github.com/diewo77/traiteur-admin/internal/validation"
)

type PromoCodeHandler struct {
	repo *repository.PromoCodeRepo
	log  *logger.Logger
	now  func() time.Time
}

func NewPromoCodeHandler(repo *repository.PromoCodeRepo, log *logger.Logger) *PromoCodeHandler {
	return &PromoCodeHandler{repo: repo, log: log, now: time.Now}
}

type promoCodeInput struct {
	Code        *string    `json:"code"`
	Description *string    `json:"description"`
	PercentOff  *float64   `json:"percent_off"`
	AmountOff   *float64   `json:"amount_off"`
	ValidFrom   *time.Time `json:"valid_from"`
	ValidUntil  *time.Time `json:"valid_until"`
	MaxUses     *int       `json:"max_uses"`
	IsActive    *bool      `json:"is_active"`
}

func (in promoCodeInput) apply(pc *models.PromoCode, creating bool) {
	if creating && in.Code != nil {
		pc.Code = strings.ToUpper(strings.TrimSpace(*in.Code))
	}
	if in.Description != nil {
		pc.Description = *in.Description
	}
	if in.PercentOff != nil {
		pc.PercentOff = *in.PercentOff
	}
	if in.AmountOff != nil {
		pc.AmountOff = *in.AmountOff
	}
	if in.ValidFrom != nil {
		pc.ValidFrom = in.ValidFrom
	}
	if in.ValidUntil != nil {
		pc.ValidUntil = in.ValidUntil
	}
	if in.MaxUses != nil {
		pc.MaxUses = *in.MaxUses
	}
	if in.IsActive != nil {
		pc.IsActive = *in.IsActive
	}
}

func validatePromoCode(pc *models.PromoCode) validation.Violations {
	v := validation.Violations{}
	validation.Required("code", pc.Code, v)
	switch {
	case pc.PercentOff != 0 && pc.AmountOff != 0:
		v["percent_off"] = "exclusive_with_amount_off"
	case pc.PercentOff != 0:
		if pc.PercentOff < 0 || pc.PercentOff > 100 {
			v["percent_off"] = "out_of_range"
		}
	case pc.AmountOff != 0:
		validation.PositiveFloat("amount_off", pc.AmountOff, v)
	default:
		v["percent_off"] = "required"
	}
	if pc.MaxUses < 0 {
		v["max_uses"] = "must_not_be_negative"
	}
	if pc.ValidFrom != nil && pc.ValidUntil != nil && pc.ValidUntil.Before(*pc.ValidFrom) {
		v["valid_until"] = "before_valid_from"
	}
	return v
}

func (h *PromoCodeHandler) List(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	codes, total, err := h.repo.List(r.Context(), p)
	if err != nil {
		h.log.Error("list promo codes failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_promo_codes", nil)
		return
	}
	writePage(w, codes, total, p)
}

func (h *PromoCodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pc, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pc)
}

// Check reports whether ?code= can be applied right now.
func (h *PromoCodeHandler) Check(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", validation.Violations{"code": "required"})
		return
	}
	pc, err := h.repo.GetByCode(r.Context(), code)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"code":        pc.Code,
		"usable":      pc.Usable(h.now()),
		"percent_off": pc.PercentOff,
		"amount_off":  pc.AmountOff,
	})
}

func (h *PromoCodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in promoCodeInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	pc := models.PromoCode{IsActive: true}
	in.apply(&pc, true)
	if v := validatePromoCode(&pc); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.repo.Create(r.Context(), &pc); err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, pc)
}

func (h *PromoCodeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	pc, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	var in promoCodeInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in.apply(pc, false)
	if v := validatePromoCode(pc); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.repo.Update(r.Context(), pc); err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pc)
}

func (h *PromoCodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *PromoCodeHandler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "promo_code_not_found", nil)
	case errors.Is(err, repository.ErrDuplicate):
		httpx.JSONError(w, http.StatusConflict, "code_already_exists", nil)
	default:
		h.log.Error("promo code operation failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
