// Package repository holds the gorm-backed stores for quotes, products and
// promo codes.
package repository

import (
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("not_found")
	ErrDuplicate = errors.New("code_already_exists")
	// ErrPromoExhausted is returned when a promo code reached its usage cap
	// between validation and the write.
	ErrPromoExhausted = errors.New("promo_code_exhausted")
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ListParams selects a page of rows. Query filters on a per-table set of
// columns; characters outside letters, digits, space and -_+. are dropped.
type ListParams struct {
	Limit  int
	Offset int
	Query  string
}

func (p ListParams) normalized() ListParams {
	if p.Limit <= 0 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	p.Query = strings.TrimSpace(p.Query)
	return p
}

var unsafeSearchChars = regexp.MustCompile(`[^\p{L}0-9 \-_+.]`)

// likePattern returns the LIKE pattern for q, or "" when nothing is left to match.
func likePattern(q string) string {
	safe := strings.TrimSpace(unsafeSearchChars.ReplaceAllString(q, ""))
	if safe == "" {
		return ""
	}
	return "%" + strings.ToLower(safe) + "%"
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") {
		return ErrDuplicate
	}
	return err
}
