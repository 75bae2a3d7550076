package clients

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/monitoring"
)

// QuoteSource reads the three quote collections.
type QuoteSource interface {
	ActiveQuotes(ctx context.Context) ([]QuoteRecord, error)
	FinishedQuotes(ctx context.Context) ([]QuoteRecord, error)
	DeletedQuotes(ctx context.Context) ([]QuoteRecord, error)
}

// Aggregator builds client profiles from a fresh snapshot of the quote
// collections on every call. It holds no state between calls.
type Aggregator struct {
	src QuoteSource
	log *logger.Logger
}

func NewAggregator(src QuoteSource, log *logger.Logger) *Aggregator {
	if log == nil {
		log = logger.Nop()
	}
	return &Aggregator{src: src, log: log.With("component", "clients")}
}

// tagged is a record with its normalised timestamps.
type tagged struct {
	rec       QuoteRecord
	createdAt string
	updatedAt string
}

func tag(kind Kind, recs []QuoteRecord, out []tagged) []tagged {
	for _, r := range recs {
		r.Kind = kind
		out = append(out, tagged{
			rec:       r,
			createdAt: firstNonEmpty(r.CreatedAt, r.FinishedAt, r.DeletedAt),
			updatedAt: firstNonEmpty(r.LastUpdate, r.FinishedAt, r.DeletedAt),
		})
	}
	return out
}

// snapshot fetches the three collections concurrently. Any failure fails the
// whole snapshot. Records come back active first, then finished, then deleted.
func (a *Aggregator) snapshot(ctx context.Context) ([]tagged, error) {
	var active, finished, deleted []QuoteRecord
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if active, err = a.src.ActiveQuotes(gctx); err != nil {
			return fmt.Errorf("active quotes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if finished, err = a.src.FinishedQuotes(gctx); err != nil {
			return fmt.Errorf("finished quotes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if deleted, err = a.src.DeletedQuotes(gctx); err != nil {
			return fmt.Errorf("deleted quotes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make([]tagged, 0, len(active)+len(finished)+len(deleted))
	out = tag(KindActive, active, out)
	out = tag(KindFinished, finished, out)
	out = tag(KindDeleted, deleted, out)
	return out, nil
}

// ListClients returns one entry per phone number. A fetch failure is logged and
// yields an empty list so the dashboard can still render.
func (a *Aggregator) ListClients(ctx context.Context) []Client {
	records, err := a.snapshot(ctx)
	if err != nil {
		a.log.Error("list clients: fetch failed", "error", err)
		monitoring.ClientAggregations.WithLabelValues("list", "upstream_error").Inc()
		return []Client{}
	}
	monitoring.ClientAggregations.WithLabelValues("list", "ok").Inc()
	return directory(records)
}

// GetClient returns the profile for phone along with all its quotes. Unlike
// ListClients, fetch failures are returned to the caller.
func (a *Aggregator) GetClient(ctx context.Context, phone string) (*Detail, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, ErrInvalidPhone
	}
	records, err := a.snapshot(ctx)
	if err != nil {
		monitoring.ClientAggregations.WithLabelValues("get", "upstream_error").Inc()
		return nil, fmt.Errorf("get client: %w", err)
	}
	var matched []tagged
	for _, t := range records {
		if t.rec.PhoneNumber == phone {
			matched = append(matched, t)
		}
	}
	if len(matched) == 0 {
		monitoring.ClientAggregations.WithLabelValues("get", "not_found").Inc()
		return nil, ErrNotFound
	}

	latest := matched[0]
	acc := seed(latest)
	quotes := make([]QuoteRecord, 0, len(matched))
	for i, t := range matched {
		quotes = append(quotes, t.rec)
		if i == 0 {
			continue
		}
		acc.observeCreated(t.createdAt)
		if later(t.updatedAt, latest.updatedAt) {
			latest = t
		}
	}
	acc.apply(latest)
	acc.client.QuoteCount = len(matched)
	monitoring.ClientAggregations.WithLabelValues("get", "ok").Inc()
	return &Detail{Client: acc.result(), Quotes: quotes}, nil
}

// directory merges records by phone number. A record replaces the profile of
// its group only when its update date is strictly later than the current one.
// Output follows the order in which phone numbers were first seen.
func directory(records []tagged) []Client {
	byPhone := make(map[string]*accumulator)
	order := make([]string, 0)
	for _, t := range records {
		phone := t.rec.PhoneNumber
		if phone == "" {
			continue
		}
		acc, ok := byPhone[phone]
		if !ok {
			byPhone[phone] = seed(t)
			order = append(order, phone)
			continue
		}
		acc.client.QuoteCount++
		acc.observeCreated(t.createdAt)
		if later(t.updatedAt, acc.client.UpdatedAt) {
			acc.apply(t)
		}
	}
	out := make([]Client, 0, len(order))
	for _, phone := range order {
		out = append(out, byPhone[phone].result())
	}
	return out
}

type accumulator struct {
	client Client
	// earliest valid creation date seen, empty when none parsed
	earliest string
}

func seed(t tagged) *accumulator {
	acc := &accumulator{
		client: Client{
			ID:         t.rec.PhoneNumber,
			Phone:      t.rec.PhoneNumber,
			QuoteCount: 1,
		},
	}
	acc.apply(t)
	acc.observeCreated(t.createdAt)
	return acc
}

func (acc *accumulator) apply(t tagged) {
	acc.client.Name = strings.TrimSpace(t.rec.FirstName + " " + t.rec.LastName)
	acc.client.Email = t.rec.Email
	acc.client.Address = t.rec.Address.Line()
	acc.client.City = t.rec.Address.City
	acc.client.PostalCode = t.rec.Address.PostalCode
	acc.client.UpdatedAt = t.updatedAt
}

func (acc *accumulator) observeCreated(createdAt string) {
	if _, ok := parseDate(createdAt); !ok {
		return
	}
	if acc.earliest == "" || later(acc.earliest, createdAt) {
		acc.earliest = createdAt
	}
}

func (acc *accumulator) result() Client {
	c := acc.client
	c.CreatedAt = acc.earliest
	return c
}
