package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a catalogue entry (dish, menu, service) used to price quote lines.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Code        string  `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description,omitempty"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	Unit        string  `gorm:"size:50;default:'unit'" json:"unit"` // unit, person, kg, hour, etc.

	// VAT rate stored as decimal (0.20 = 20%)
	VATRate float64 `gorm:"default:0.20" json:"vat_rate"`

	Category string `gorm:"size:100" json:"category,omitempty"`
	IsActive bool   `gorm:"default:true" json:"is_active"`
}

// PriceWithVAT returns the unit price including VAT.
func (p *Product) PriceWithVAT() float64 {
	return p.UnitPrice * (1 + p.VATRate)
}

// VATAmount returns the VAT amount for one unit.
func (p *Product) VATAmount() float64 {
	return p.UnitPrice * p.VATRate
}

// VATRatePercent returns the VAT rate as a percentage (e.g., 20 for 20%).
func (p *Product) VATRatePercent() float64 {
	return p.VATRate * 100
}

// NormalizeVATRate converts percentages (20) into decimals (0.20).
func NormalizeVATRate(rate float64) float64 {
	if rate > 1 {
		return rate / 100
	}
	return rate
}
