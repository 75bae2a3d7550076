package models

import "time"

// PromoCode is a discount applied to a quote. Exactly one of PercentOff and
// AmountOff is set.
type PromoCode struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Code        string     `gorm:"size:40;not null;uniqueIndex" json:"code"`
	Description string     `gorm:"size:255" json:"description,omitempty"`
	PercentOff  float64    `json:"percent_off,omitempty"`
	AmountOff   float64    `json:"amount_off,omitempty"`
	ValidFrom   *time.Time `json:"valid_from,omitempty"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	MaxUses     int        `json:"max_uses"` // 0 = unlimited
	UsedCount   int        `json:"used_count"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
}

// Usable reports whether the code can be applied at the given instant.
func (p *PromoCode) Usable(now time.Time) bool {
	if p == nil || !p.IsActive {
		return false
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	if p.MaxUses > 0 && p.UsedCount >= p.MaxUses {
		return false
	}
	return true
}
