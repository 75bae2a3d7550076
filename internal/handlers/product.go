package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/traiteur-admin/internal/httpx"
	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/models"
	"github.com/diewo77/traiteur-admin/internal/repository"
	"github.com/diewo77/traiteur-admin/internal/validation"
)

type ProductHandler struct {
	repo *repository.ProductRepo
	log  *logger.Logger
}

func NewProductHandler(repo *repository.ProductRepo, log *logger.Logger) *ProductHandler {
	return &ProductHandler{repo: repo, log: log}
}

type productInput struct {
	Code        *string  `json:"code"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	UnitPrice   *float64 `json:"unit_price"`
	VATRate     *float64 `json:"vat_rate"`
	Unit        *string  `json:"unit"`
	Category    *string  `json:"category"`
	IsActive    *bool    `json:"is_active"`
}

// apply copies the provided fields onto p. Code is only applied on create.
func (in productInput) apply(p *models.Product, creating bool) {
	if creating && in.Code != nil {
		p.Code = strings.ToUpper(strings.TrimSpace(*in.Code))
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.UnitPrice != nil {
		p.UnitPrice = *in.UnitPrice
	}
	if in.VATRate != nil {
		p.VATRate = models.NormalizeVATRate(*in.VATRate)
	}
	if in.Unit != nil {
		p.Unit = *in.Unit
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

func validateProduct(p *models.Product, in productInput) validation.Violations {
	v := validation.Violations{}
	validation.Required("code", p.Code, v)
	validation.Required("name", p.Name, v)
	validation.PositiveFloat("unit_price", p.UnitPrice, v)
	if in.VATRate != nil {
		// 0-100 accepted from clients, values > 1 are percentages
		validation.RangeFloat("vat_rate", *in.VATRate, 0, 100, v)
	}
	return v
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	p := listParams(r)
	products, total, err := h.repo.List(r.Context(), p)
	if err != nil {
		h.log.Error("list products failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_products", nil)
		return
	}
	writePage(w, products, total, p)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	p := models.Product{Unit: "unit", VATRate: 0.20, IsActive: true}
	in.apply(&p, true)
	if v := validateProduct(&p, in); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.repo.Create(r.Context(), &p); err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update applies a partial JSON body. The code is immutable.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.repo.Get(r.Context(), id)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	var in productInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in.apply(p, false)
	if v := validateProduct(p, in); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}
	if err := h.repo.Update(r.Context(), p); err != nil {
		h.writeErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *ProductHandler) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		httpx.JSONError(w, http.StatusNotFound, "product_not_found", nil)
	case errors.Is(err, repository.ErrDuplicate):
		httpx.JSONError(w, http.StatusConflict, "code_already_exists", nil)
	default:
		h.log.Error("product operation failed", "error", err)
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
