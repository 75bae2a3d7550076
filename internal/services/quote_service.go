// Package services holds the business rules that sit between HTTP handlers and
// the repositories: quote pricing, promo code application and cache upkeep.
package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/diewo77/traiteur-admin/internal/cache"
	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/models"
	"github.com/diewo77/traiteur-admin/internal/repository"
	"github.com/diewo77/traiteur-admin/internal/validation"
)

// ErrPromoUnusable covers unknown, inactive, expired and exhausted promo codes.
var ErrPromoUnusable = errors.New("promo_code_unusable")

// ValidationError carries field violations for a 400 response.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Violations))
}

// ItemInput is a quote line as sent by the dashboard. Lines referencing a
// product take its label, price and VAT unless overridden.
type ItemInput struct {
	ProductID uint     `json:"product_id,omitempty"`
	Label     string   `json:"label,omitempty"`
	Quantity  float64  `json:"quantity"`
	UnitPrice *float64 `json:"unit_price,omitempty"`
	VATRate   *float64 `json:"vat_rate,omitempty"`
}

// QuoteInput is the writable part of a quote.
type QuoteInput struct {
	FirstName   string             `json:"first_name"`
	LastName    string             `json:"last_name"`
	PhoneNumber string             `json:"phone_number"`
	Email       string             `json:"email"`
	Address     models.Address     `json:"address"`
	EventDate   *time.Time         `json:"event_date,omitempty"`
	Guests      int                `json:"guests"`
	Items       []ItemInput        `json:"items"`
	PromoCode   string             `json:"promo_code,omitempty"`
	Status      models.QuoteStatus `json:"status,omitempty"`
	IsTraiteur  bool               `json:"is_traiteur"`
	Notes       string             `json:"notes,omitempty"`
}

type QuoteService struct {
	quotes   *repository.QuoteRepo
	products *repository.ProductRepo
	promos   *repository.PromoCodeRepo
	pricing  *PricingService
	cache    cache.DirectoryCache
	log      *logger.Logger
	now      func() time.Time
}

func NewQuoteService(
	quotes *repository.QuoteRepo,
	products *repository.ProductRepo,
	promos *repository.PromoCodeRepo,
	dir cache.DirectoryCache,
	log *logger.Logger,
) *QuoteService {
	if dir == nil {
		dir = cache.Noop{}
	}
	return &QuoteService{
		quotes:   quotes,
		products: products,
		promos:   promos,
		pricing:  NewPricingService(),
		cache:    dir,
		log:      log.With("service", "QuoteService"),
		now:      time.Now,
	}
}

// Create validates and prices a new active quote.
func (s *QuoteService) Create(ctx context.Context, in QuoteInput) (*models.Quote, error) {
	items, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	promo, err := s.resolvePromo(ctx, in.PromoCode)
	if err != nil {
		return nil, err
	}

	q := &models.Quote{}
	s.fill(q, in, items, promo)
	if q.Status == "" {
		q.Status = models.QuoteStatusPending
	}
	var promoID uint
	if promo != nil {
		promoID = promo.ID
	}
	if err := s.quotes.Create(ctx, q, promoID); err != nil {
		if errors.Is(err, repository.ErrPromoExhausted) {
			return nil, fmt.Errorf("%w: %s", ErrPromoUnusable, promo.Code)
		}
		return nil, fmt.Errorf("create quote: %w", err)
	}
	s.log.Info("quote created", "quote_id", q.ID, "phone", q.PhoneNumber, "total_cost", q.TotalCost)
	s.invalidate(ctx)
	return q, nil
}

// Update replaces the writable fields of an active quote and re-prices it.
// Keeping the same promo code does not consume another use.
func (s *QuoteService) Update(ctx context.Context, id uint, in QuoteInput) (*models.Quote, error) {
	q, err := s.quotes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	var promo *models.PromoCode
	var promoID uint
	code := normalizeCode(in.PromoCode)
	switch {
	case code == "":
	case code == q.PromoCode:
		// already granted: re-apply even if it has since expired
		promo, err = s.promos.GetByCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			promo, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
	default:
		if promo, err = s.resolvePromo(ctx, code); err != nil {
			return nil, err
		}
		promoID = promo.ID
	}

	status := q.Status
	s.fill(q, in, items, promo)
	if q.Status == "" {
		q.Status = status
	}
	if err := s.quotes.Update(ctx, q, promoID); err != nil {
		if errors.Is(err, repository.ErrPromoExhausted) {
			return nil, fmt.Errorf("%w: %s", ErrPromoUnusable, code)
		}
		return nil, err
	}
	s.log.Info("quote updated", "quote_id", q.ID, "total_cost", q.TotalCost)
	s.invalidate(ctx)
	return q, nil
}

func (s *QuoteService) Finish(ctx context.Context, id uint) (*models.FinishedQuote, error) {
	f, err := s.quotes.Finish(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return f, nil
}

func (s *QuoteService) Delete(ctx context.Context, id uint) (*models.DeletedQuote, error) {
	d, err := s.quotes.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

func (s *QuoteService) DeleteFinished(ctx context.Context, id uint) (*models.DeletedQuote, error) {
	d, err := s.quotes.DeleteFinished(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

func (s *QuoteService) Restore(ctx context.Context, id uint) (*models.Quote, error) {
	q, err := s.quotes.Restore(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return q, nil
}

// invalidate drops the cached client directory. Failures only cost a stale
// list until the TTL expires.
func (s *QuoteService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("client directory cache invalidation failed", "error", err)
	}
}

func validateQuote(in QuoteInput) validation.Violations {
	v := validation.Violations{}
	validation.Required("first_name", in.FirstName, v)
	validation.Required("last_name", in.LastName, v)
	validation.Phone("phone_number", in.PhoneNumber, v)
	validation.Email("email", in.Email, v)
	if in.Guests < 0 {
		v["guests"] = "must_be_non_negative"
	}
	if in.Status != "" && !in.Status.Valid() {
		v["status"] = "invalid_status"
	}
	for i, it := range in.Items {
		field := "items[" + strconv.Itoa(i) + "]"
		validation.PositiveFloat(field+".quantity", it.Quantity, v)
		if it.UnitPrice != nil {
			validation.NonNegativeFloat(field+".unit_price", *it.UnitPrice, v)
		}
		if it.VATRate != nil {
			validation.RangeFloat(field+".vat_rate", *it.VATRate, 0, 100, v)
		}
		if it.ProductID == 0 {
			validation.Required(field+".label", it.Label, v)
			if it.UnitPrice == nil {
				v[field+".unit_price"] = "required"
			}
		}
	}
	return v
}

// prepare validates the input and snapshots product data into the lines.
func (s *QuoteService) prepare(ctx context.Context, in QuoteInput) ([]models.QuoteItem, error) {
	v := validateQuote(in)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	ids := make([]uint, 0, len(in.Items))
	for _, it := range in.Items {
		if it.ProductID != 0 {
			ids = append(ids, it.ProductID)
		}
	}
	catalogue, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	items := make([]models.QuoteItem, 0, len(in.Items))
	for i, it := range in.Items {
		item := models.QuoteItem{
			ProductID: it.ProductID,
			Label:     strings.TrimSpace(it.Label),
			Quantity:  it.Quantity,
			VATRate:   DefaultVATRate,
		}
		if it.ProductID != 0 {
			p, ok := catalogue[it.ProductID]
			field := "items[" + strconv.Itoa(i) + "].product_id"
			switch {
			case !ok:
				v[field] = "not_found"
				continue
			case !p.IsActive:
				v[field] = "inactive"
				continue
			}
			if item.Label == "" {
				item.Label = p.Name
			}
			item.UnitPrice = p.UnitPrice
			item.VATRate = p.VATRate
		}
		if it.UnitPrice != nil {
			item.UnitPrice = *it.UnitPrice
		}
		if it.VATRate != nil {
			item.VATRate = models.NormalizeVATRate(*it.VATRate)
		}
		items = append(items, item)
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	return items, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// resolvePromo returns nil for an empty code and ErrPromoUnusable when the code
// cannot be applied now.
func (s *QuoteService) resolvePromo(ctx context.Context, code string) (*models.PromoCode, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, nil
	}
	promo, err := s.promos.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPromoUnusable, code)
	}
	if err != nil {
		return nil, err
	}
	if !promo.Usable(s.now()) {
		return nil, fmt.Errorf("%w: %s", ErrPromoUnusable, code)
	}
	return promo, nil
}

func (s *QuoteService) fill(q *models.Quote, in QuoteInput, items []models.QuoteItem, promo *models.PromoCode) {
	totals := s.pricing.ComputeTotals(items, promo)
	q.FirstName = strings.TrimSpace(in.FirstName)
	q.LastName = strings.TrimSpace(in.LastName)
	q.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	q.Email = strings.TrimSpace(in.Email)
	q.Address = datatypes.NewJSONType(in.Address)
	q.EventDate = in.EventDate
	q.Guests = in.Guests
	q.Items = datatypes.NewJSONSlice(items)
	q.PromoCode = ""
	if promo != nil {
		q.PromoCode = promo.Code
	}
	q.TotalHT = totals.HT
	q.TotalTVA = totals.TVA
	q.Discount = totals.Discount
	q.TotalCost = totals.TTC
	q.Status = in.Status
	q.IsTraiteur = in.IsTraiteur
	q.Notes = in.Notes
}
