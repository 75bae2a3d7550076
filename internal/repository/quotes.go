package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/traiteur-admin/internal/clients"
	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/models"
)

// QuoteRepo stores quotes across the active, finished and deleted tables. It
// also serves as the aggregator's clients.QuoteSource.
type QuoteRepo struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

var _ clients.QuoteSource = (*QuoteRepo)(nil)

func NewQuoteRepo(db *gorm.DB, baseLog *logger.Logger) *QuoteRepo {
	return &QuoteRepo{db: db, log: baseLog.With("repo", "QuoteRepo"), now: time.Now}
}

func searchQuotes(q *gorm.DB, query string) *gorm.DB {
	if like := likePattern(query); like != "" {
		q = q.Where("lower(first_name) LIKE ? OR lower(last_name) LIKE ? OR phone_number LIKE ?", like, like, like)
	}
	return q
}

func page[T any](q *gorm.DB, p ListParams, order string) ([]T, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := make([]T, 0)
	if err := q.Order(order).Limit(p.Limit).Offset(p.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create inserts an active quote. A non-zero promoID consumes one use of that
// promo code in the same transaction.
func (r *QuoteRepo) Create(ctx context.Context, q *models.Quote, promoID uint) error {
	now := r.now().UTC()
	q.CreatedAt = now
	q.LastUpdate = &now
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if promoID != 0 {
			if err := consume(tx, promoID); err != nil {
				return err
			}
		}
		return tx.Create(q).Error
	}))
}

func (r *QuoteRepo) Get(ctx context.Context, id uint) (*models.Quote, error) {
	var q models.Quote
	if err := r.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, translate(err)
	}
	return &q, nil
}

// Update saves an active quote and stamps last_update. A non-zero promoID
// consumes one use of that code, for quotes switching to a new code.
func (r *QuoteRepo) Update(ctx context.Context, q *models.Quote, promoID uint) error {
	now := r.now().UTC()
	q.LastUpdate = &now
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if promoID != 0 {
			if err := consume(tx, promoID); err != nil {
				return err
			}
		}
		res := tx.Model(&models.Quote{}).Where("id = ?", q.ID).Select("*").Omit("id", "created_at").Updates(q)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	}))
}

func (r *QuoteRepo) List(ctx context.Context, p ListParams) ([]models.Quote, int64, error) {
	p = p.normalized()
	q := searchQuotes(r.db.WithContext(ctx).Model(&models.Quote{}), p.Query)
	return page[models.Quote](q, p, "id desc")
}

func (r *QuoteRepo) ListFinished(ctx context.Context, p ListParams) ([]models.FinishedQuote, int64, error) {
	p = p.normalized()
	q := searchQuotes(r.db.WithContext(ctx).Model(&models.FinishedQuote{}), p.Query)
	return page[models.FinishedQuote](q, p, "finished_at desc, id desc")
}

func (r *QuoteRepo) ListDeleted(ctx context.Context, p ListParams) ([]models.DeletedQuote, int64, error) {
	p = p.normalized()
	q := searchQuotes(r.db.WithContext(ctx).Model(&models.DeletedQuote{}), p.Query)
	return page[models.DeletedQuote](q, p, "deleted_at desc, id desc")
}

// Finish moves an active quote to finished_quotes.
func (r *QuoteRepo) Finish(ctx context.Context, id uint) (*models.FinishedQuote, error) {
	var out models.FinishedQuote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q models.Quote
		if err := tx.First(&q, id).Error; err != nil {
			return err
		}
		now := r.now().UTC()
		out = models.FinishedQuote{
			QuoteID:    q.ID,
			QuoteCore:  q.QuoteCore,
			CreatedAt:  q.CreatedAt,
			FinishedAt: now,
			LastUpdate: &now,
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Quote{}, q.ID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	r.log.Info("quote finished", "quote_id", id, "finished_id", out.ID)
	return &out, nil
}

// Delete moves an active quote to deleted_quotes.
func (r *QuoteRepo) Delete(ctx context.Context, id uint) (*models.DeletedQuote, error) {
	var out models.DeletedQuote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q models.Quote
		if err := tx.First(&q, id).Error; err != nil {
			return err
		}
		now := r.now().UTC()
		out = models.DeletedQuote{
			QuoteID:    q.ID,
			Origin:     string(clients.KindActive),
			QuoteCore:  q.QuoteCore,
			CreatedAt:  q.CreatedAt,
			DeletedAt:  now,
			LastUpdate: &now,
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Quote{}, q.ID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	r.log.Info("quote deleted", "quote_id", id, "record_id", out.ID)
	return &out, nil
}

// DeleteFinished moves a finished quote to deleted_quotes, keeping its finished_at.
func (r *QuoteRepo) DeleteFinished(ctx context.Context, id uint) (*models.DeletedQuote, error) {
	var out models.DeletedQuote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f models.FinishedQuote
		if err := tx.First(&f, id).Error; err != nil {
			return err
		}
		now := r.now().UTC()
		finishedAt := f.FinishedAt
		out = models.DeletedQuote{
			QuoteID:    f.QuoteID,
			Origin:     string(clients.KindFinished),
			QuoteCore:  f.QuoteCore,
			CreatedAt:  f.CreatedAt,
			FinishedAt: &finishedAt,
			DeletedAt:  now,
			LastUpdate: &now,
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		return tx.Delete(&models.FinishedQuote{}, f.ID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	r.log.Info("finished quote deleted", "finished_id", id, "record_id", out.ID)
	return &out, nil
}

// Restore moves a deleted record back to the active table under a new id.
func (r *QuoteRepo) Restore(ctx context.Context, id uint) (*models.Quote, error) {
	var out models.Quote
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d models.DeletedQuote
		if err := tx.First(&d, id).Error; err != nil {
			return err
		}
		now := r.now().UTC()
		out = models.Quote{
			QuoteCore:  d.QuoteCore,
			CreatedAt:  d.CreatedAt,
			LastUpdate: &now,
		}
		if err := tx.Create(&out).Error; err != nil {
			return err
		}
		return tx.Delete(&models.DeletedQuote{}, d.ID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	r.log.Info("quote restored", "record_id", id, "quote_id", out.ID)
	return &out, nil
}

// ActiveQuotes returns every active quote as an aggregator record.
func (r *QuoteRepo) ActiveQuotes(ctx context.Context) ([]clients.QuoteRecord, error) {
	var rows []models.Quote
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]clients.QuoteRecord, 0, len(rows))
	for _, q := range rows {
		rec := record(clients.KindActive, q.ID, q.QuoteCore)
		rec.CreatedAt = formatTime(q.CreatedAt)
		rec.LastUpdate = formatTimePtr(q.LastUpdate)
		out = append(out, rec)
	}
	return out, nil
}

func (r *QuoteRepo) FinishedQuotes(ctx context.Context) ([]clients.QuoteRecord, error) {
	var rows []models.FinishedQuote
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]clients.QuoteRecord, 0, len(rows))
	for _, f := range rows {
		rec := record(clients.KindFinished, f.ID, f.QuoteCore)
		rec.CreatedAt = formatTime(f.CreatedAt)
		rec.FinishedAt = formatTime(f.FinishedAt)
		rec.LastUpdate = formatTimePtr(f.LastUpdate)
		out = append(out, rec)
	}
	return out, nil
}

func (r *QuoteRepo) DeletedQuotes(ctx context.Context) ([]clients.QuoteRecord, error) {
	var rows []models.DeletedQuote
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]clients.QuoteRecord, 0, len(rows))
	for _, d := range rows {
		rec := record(clients.KindDeleted, d.ID, d.QuoteCore)
		rec.CreatedAt = formatTime(d.CreatedAt)
		rec.FinishedAt = formatTimePtr(d.FinishedAt)
		rec.DeletedAt = formatTime(d.DeletedAt)
		rec.LastUpdate = formatTimePtr(d.LastUpdate)
		out = append(out, rec)
	}
	return out, nil
}

func record(kind clients.Kind, id uint, c models.QuoteCore) clients.QuoteRecord {
	return clients.QuoteRecord{
		Kind:        kind,
		ID:          id,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
		Address:     c.Address.Data(),
		TotalCost:   c.TotalCost,
		Status:      string(c.Status),
		IsTraiteur:  c.IsTraiteur,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}
