package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/traiteur-admin/internal/db"
	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/models"
	"github.com/diewo77/traiteur-admin/internal/repository"
)

type countingCache struct {
	invalidations int
	err           error
}

func (c *countingCache) Get(context.Context) ([]byte, bool, error) { return nil, false, nil }
func (c *countingCache) Set(context.Context, []byte) error         { return nil }
func (c *countingCache) Invalidate(context.Context) error {
	c.invalidations++
	return c.err
}

type fixture struct {
	db       *gorm.DB
	svc      *QuoteService
	cache    *countingCache
	products *repository.ProductRepo
	promos   *repository.PromoCodeRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, _ := d.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(d); err != nil {
		t.Fatal(err)
	}
	log := logger.Nop()
	f := &fixture{
		db:       d,
		cache:    &countingCache{},
		products: repository.NewProductRepo(d, log),
		promos:   repository.NewPromoCodeRepo(d, log),
	}
	f.svc = NewQuoteService(repository.NewQuoteRepo(d, log), f.products, f.promos, f.cache, log)
	return f
}

func (f *fixture) product(t *testing.T, code string, price, vat float64) *models.Product {
	t.Helper()
	p := &models.Product{Code: code, Name: "Produit " + code, UnitPrice: price, VATRate: vat, IsActive: true}
	if err := f.products.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	return p
}

func baseInput() QuoteInput {
	return QuoteInput{
		FirstName:   "Jean",
		LastName:    "Dupont",
		PhoneNumber: "06 11 22 33 44",
		Email:       "jean@example.com",
		Address:     models.Address{Street: "1 rue de la Paix", City: "Paris", PostalCode: "75002"},
		Guests:      40,
	}
}

func price(v float64) *float64 { return &v }

func TestCreateQuoteSnapshotsProducts(t *testing.T) {
	f := newFixture(t)
	buffet := f.product(t, "BUFFET", 20, 0.10)

	in := baseInput()
	in.Items = []ItemInput{
		{ProductID: buffet.ID, Quantity: 10},
		{Label: "Location salle", Quantity: 1, UnitPrice: price(100), VATRate: price(20)},
	}
	q, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Status != models.QuoteStatusPending {
		t.Fatalf("expected pending status got %q", q.Status)
	}
	items := []models.QuoteItem(q.Items)
	if len(items) != 2 || items[0].Label != "Produit BUFFET" || items[0].UnitPrice != 20 || items[0].VATRate != 0.10 {
		t.Fatalf("product not snapshotted: %+v", items)
	}
	if items[1].VATRate != 0.20 {
		t.Fatalf("percent VAT should be normalised, got %v", items[1].VATRate)
	}
	if q.TotalHT != 300 || q.TotalTVA != 40 || q.TotalCost != 340 {
		t.Fatalf("unexpected totals ht=%v tva=%v ttc=%v", q.TotalHT, q.TotalTVA, q.TotalCost)
	}
	if f.cache.invalidations != 1 {
		t.Fatalf("expected one cache invalidation got %d", f.cache.invalidations)
	}

	// later catalogue changes do not alter the stored quote
	buffet.UnitPrice = 99
	if err := f.products.Update(context.Background(), buffet); err != nil {
		t.Fatal(err)
	}
	var stored models.Quote
	if err := f.db.First(&stored, q.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Items[0].UnitPrice != 20 {
		t.Fatalf("stored price changed to %v", stored.Items[0].UnitPrice)
	}
}

func TestCreateQuoteValidation(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name   string
		mutate func(*QuoteInput)
		field  string
	}{
		{"missing first name", func(in *QuoteInput) { in.FirstName = " " }, "first_name"},
		{"missing last name", func(in *QuoteInput) { in.LastName = "" }, "last_name"},
		{"missing phone", func(in *QuoteInput) { in.PhoneNumber = "" }, "phone_number"},
		{"short phone", func(in *QuoteInput) { in.PhoneNumber = "1234" }, "phone_number"},
		{"bad email", func(in *QuoteInput) { in.Email = "nope" }, "email"},
		{"bad status", func(in *QuoteInput) { in.Status = "archived" }, "status"},
		{"zero quantity", func(in *QuoteInput) {
			in.Items = []ItemInput{{Label: "x", Quantity: 0, UnitPrice: price(1)}}
		}, "items[0].quantity"},
		{"free line without price", func(in *QuoteInput) {
			in.Items = []ItemInput{{Label: "x", Quantity: 1}}
		}, "items[0].unit_price"},
		{"unknown product", func(in *QuoteInput) {
			in.Items = []ItemInput{{ProductID: 4242, Quantity: 1}}
		}, "items[0].product_id"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := baseInput()
			c.mutate(&in)
			_, err := f.svc.Create(context.Background(), in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError got %v", err)
			}
			if _, ok := verr.Violations[c.field]; !ok {
				t.Fatalf("expected violation on %s, got %v", c.field, verr.Violations)
			}
		})
	}
	if f.cache.invalidations != 0 {
		t.Fatalf("failed writes must not invalidate the cache")
	}
}

func TestCreateQuoteWithPromo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pc := &models.PromoCode{Code: "BIENVENUE10", PercentOff: 10, MaxUses: 1, IsActive: true}
	if err := f.promos.Create(ctx, pc); err != nil {
		t.Fatal(err)
	}

	in := baseInput()
	in.Items = []ItemInput{{Label: "Menu", Quantity: 10, UnitPrice: price(10), VATRate: price(0.1)}}
	in.PromoCode = " bienvenue10 "
	q, err := f.svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.PromoCode != "BIENVENUE10" || q.Discount != 10 || q.TotalCost != 99 {
		t.Fatalf("promo not applied: code=%q discount=%v total=%v", q.PromoCode, q.Discount, q.TotalCost)
	}

	// a second use exceeds max_uses
	if _, err := f.svc.Create(ctx, in); !errors.Is(err, ErrPromoUnusable) {
		t.Fatalf("expected ErrPromoUnusable got %v", err)
	}

	// updating with the same code does not consume another use
	in.Guests = 50
	if _, err := f.svc.Update(ctx, q.ID, in); err != nil {
		t.Fatalf("update with same code: %v", err)
	}
	got, _ := f.promos.Get(ctx, pc.ID)
	if got.UsedCount != 1 {
		t.Fatalf("expected used_count 1 got %d", got.UsedCount)
	}
}

func TestPromoUnusable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	past := time.Now().Add(-48 * time.Hour)
	if err := f.promos.Create(ctx, &models.PromoCode{Code: "OLD", AmountOff: 5, ValidUntil: &past, IsActive: true}); err != nil {
		t.Fatal(err)
	}
	for _, code := range []string{"OLD", "MISSING"} {
		in := baseInput()
		in.PromoCode = code
		if _, err := f.svc.Create(ctx, in); !errors.Is(err, ErrPromoUnusable) {
			t.Fatalf("%s: expected ErrPromoUnusable got %v", code, err)
		}
	}
}

func TestQuoteMovesInvalidateCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q, err := f.svc.Create(ctx, baseInput())
	if err != nil {
		t.Fatal(err)
	}
	fin, err := f.svc.Finish(ctx, q.ID)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := f.svc.DeleteFinished(ctx, fin.ID)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := f.svc.Restore(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Delete(ctx, restored.ID); err != nil {
		t.Fatal(err)
	}
	if f.cache.invalidations != 5 {
		t.Fatalf("expected 5 invalidations got %d", f.cache.invalidations)
	}
	if _, err := f.svc.Finish(ctx, 9999); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
	if f.cache.invalidations != 5 {
		t.Fatalf("failed move must not invalidate")
	}
}

func TestCacheFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	f.cache.err = errors.New("redis down")
	if _, err := f.svc.Create(context.Background(), baseInput()); err != nil {
		t.Fatalf("cache failure should be logged only, got %v", err)
	}
}

func TestUpdateKeepsStatusWhenOmitted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	in := baseInput()
	in.Status = models.QuoteStatusSent
	q, err := f.svc.Create(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	in.Status = ""
	in.LastName = "D."
	updated, err := f.svc.Update(ctx, q.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != models.QuoteStatusSent || updated.LastName != "D." {
		t.Fatalf("unexpected update result %+v", updated.QuoteCore)
	}
	if _, err := f.svc.Update(ctx, 9999, in); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound got %v", err)
	}
}
