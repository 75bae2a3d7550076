package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/models"
)

type ProductRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) *ProductRepo {
	return &ProductRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

// List returns a page of non-deleted products, newest first, and the total count.
// Query matches name or code.
func (r *ProductRepo) List(ctx context.Context, p ListParams) ([]models.Product, int64, error) {
	p = p.normalized()
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if like := likePattern(p.Query); like != "" {
		q = q.Where("lower(name) LIKE ? OR lower(code) LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	products := make([]models.Product, 0)
	if err := q.Order("id desc").Limit(p.Limit).Offset(p.Offset).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *ProductRepo) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// GetMany loads the given products, keyed by id. Missing ids are absent from the map.
func (r *ProductRepo) GetMany(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductRepo) Create(ctx context.Context, p *models.Product) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active := p.IsActive
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		// gorm skips zero values for columns with a default
		if !active {
			p.IsActive = false
			return tx.Model(p).Update("is_active", false).Error
		}
		return nil
	}))
}

func (r *ProductRepo) Update(ctx context.Context, p *models.Product) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

// Delete soft-deletes the product.
func (r *ProductRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
