// Package clients derives the client directory from quotes. There is no client
// table: a client is the set of quotes sharing a phone number, across the active,
// finished and deleted collections.
package clients

import (
	"errors"

	"github.com/diewo77/traiteur-admin/internal/models"
)

var (
	// ErrNotFound is returned by GetClient when no quote carries the phone number.
	ErrNotFound = errors.New("client_not_found")
	// ErrInvalidPhone is returned by GetClient for an empty phone number.
	ErrInvalidPhone = errors.New("invalid_phone")
)

// Kind tags a quote with the collection it was read from.
type Kind string

const (
	KindActive   Kind = "active"
	KindFinished Kind = "finished"
	KindDeleted  Kind = "deleted"
)

// QuoteRecord is the read model the aggregator consumes. Timestamps are kept as
// strings: empty means absent, and values that do not parse are kept verbatim.
type QuoteRecord struct {
	Kind        Kind           `json:"quote_type"`
	ID          uint           `json:"id"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	PhoneNumber string         `json:"phone_number"`
	Email       string         `json:"email"`
	Address     models.Address `json:"address"`
	TotalCost   float64        `json:"total_cost"`
	Status      string         `json:"status"`
	IsTraiteur  bool           `json:"is_traiteur"`
	CreatedAt   string         `json:"created_at,omitempty"`
	FinishedAt  string         `json:"finished_at,omitempty"`
	DeletedAt   string         `json:"deleted_at,omitempty"`
	LastUpdate  string         `json:"last_update,omitempty"`
}

// Client is a synthetic client profile. ID is the phone number.
type Client struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	QuoteCount int    `json:"quote_count"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// Detail is a client profile together with every quote attributed to it.
type Detail struct {
	Client
	Quotes []QuoteRecord `json:"quotes"`
}
