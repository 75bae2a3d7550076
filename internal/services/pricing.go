package services

import (
	"math"

	"github.com/diewo77/traiteur-admin/internal/models"
)

// DefaultVATRate applies to free-form lines sent without a rate.
const DefaultVATRate = 0.20

// Totals are the amounts stored on a quote. HT and TVA are net of the
// discount; Discount is the HT amount removed by the promo code.
type Totals struct {
	HT       float64 `json:"total_ht"`
	TVA      float64 `json:"total_tva"`
	Discount float64 `json:"discount"`
	TTC      float64 `json:"total_ttc"`
}

type PricingService struct{}

func NewPricingService() *PricingService { return &PricingService{} }

// ComputeTotals computes HT, TVA and TTC for the given lines. A non-nil promo is
// applied without checking whether it is usable: a percentage reduces HT and
// TVA alike, a fixed amount is capped at HT and reduces TVA in proportion.
func (s *PricingService) ComputeTotals(items []models.QuoteItem, promo *models.PromoCode) Totals {
	var ht, tva float64
	for _, it := range items {
		lineHT := it.TotalHT()
		ht += lineHT
		rate := it.VATRate
		if rate < 0 {
			rate = 0
		}
		tva += lineHT * rate
	}

	var ratio float64
	if promo != nil && ht > 0 {
		switch {
		case promo.PercentOff > 0:
			ratio = math.Min(promo.PercentOff, 100) / 100
		case promo.AmountOff > 0:
			ratio = math.Min(promo.AmountOff, ht) / ht
		}
	}
	discount := round2(ht * ratio)
	netHT := round2(ht) - discount
	netTVA := round2(tva * (1 - ratio))
	return Totals{
		HT:       round2(netHT),
		TVA:      netTVA,
		Discount: discount,
		TTC:      round2(netHT + netTVA),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
