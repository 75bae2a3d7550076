package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// QuoteStatus tracks where an active quote stands with the customer.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "pending"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s QuoteStatus) Valid() bool {
	switch s {
	case QuoteStatusPending, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected:
		return true
	}
	return false
}

// Address is stored as a JSON column on every quote row.
type Address struct {
	Street     string `json:"street"`
	Complement string `json:"complement,omitempty"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Line returns the street line followed by its complement when present.
func (a Address) Line() string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(a.Street); s != "" {
		parts = append(parts, s)
	}
	if c := strings.TrimSpace(a.Complement); c != "" {
		parts = append(parts, c)
	}
	return strings.Join(parts, ", ")
}

// QuoteItem is a priced line. Product prices and VAT are snapshotted when the
// quote is written so later catalogue changes do not alter existing quotes.
type QuoteItem struct {
	ProductID uint    `json:"product_id,omitempty"`
	Label     string  `json:"label"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	VATRate   float64 `json:"vat_rate"`
}

// TotalHT calculates the line total excluding VAT.
func (item QuoteItem) TotalHT() float64 {
	return item.Quantity * item.UnitPrice
}

// TotalVAT calculates the VAT amount for this line.
func (item QuoteItem) TotalVAT() float64 {
	return item.TotalHT() * item.VATRate
}

// TotalTTC calculates the line total including VAT.
func (item QuoteItem) TotalTTC() float64 {
	return item.TotalHT() + item.TotalVAT()
}

// QuoteCore holds the columns shared by active, finished and deleted quotes.
type QuoteCore struct {
	FirstName   string                         `gorm:"size:100;not null" json:"first_name"`
	LastName    string                         `gorm:"size:100;not null" json:"last_name"`
	PhoneNumber string                         `gorm:"size:30;index" json:"phone_number"`
	Email       string                         `gorm:"size:255" json:"email"`
	Address     datatypes.JSONType[Address]    `json:"address"`
	EventDate   *time.Time                     `json:"event_date,omitempty"`
	Guests      int                            `json:"guests"`
	Items       datatypes.JSONSlice[QuoteItem] `json:"items"`
	PromoCode   string                         `gorm:"size:40" json:"promo_code,omitempty"`
	TotalHT     float64                        `json:"total_ht"`
	TotalTVA    float64                        `json:"total_tva"`
	Discount    float64                        `json:"discount"`
	// TotalCost is the TTC amount after discount.
	TotalCost   float64                        `json:"total_cost"`
	Status      QuoteStatus                    `gorm:"size:20;default:'pending'" json:"status"`
	IsTraiteur  bool                           `json:"is_traiteur"`
	Notes       string                         `gorm:"type:text" json:"notes,omitempty"`
}

// FullName joins first and last name.
func (c QuoteCore) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Quote is an active, still editable quote.
type Quote struct {
	ID uint `gorm:"primaryKey" json:"id"`
	QuoteCore
	CreatedAt  time.Time  `json:"created_at"`
	LastUpdate *time.Time `json:"last_update"`
}

// FinishedQuote is a completed quote moved out of the active table.
type FinishedQuote struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	QuoteID uint `gorm:"index" json:"quote_id"` // id it had while active
	QuoteCore
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt time.Time  `gorm:"not null" json:"finished_at"`
	LastUpdate *time.Time `json:"last_update"`
}

// DeletedQuote is a soft-deleted quote, shown as "records" in the dashboard.
// Origin tells which table it was removed from.
type DeletedQuote struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	QuoteID uint   `gorm:"index" json:"quote_id"`
	Origin  string `gorm:"size:20;not null" json:"origin"` // active or finished
	QuoteCore
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	DeletedAt  time.Time  `gorm:"not null" json:"deleted_at"`
	LastUpdate *time.Time `json:"last_update"`
}
