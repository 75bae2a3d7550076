package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/traiteur-admin/internal/logger"
	"github.com/diewo77/traiteur-admin/internal/models"
)

type PromoCodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromoCodeRepo(db *gorm.DB, baseLog *logger.Logger) *PromoCodeRepo {
	return &PromoCodeRepo{db: db, log: baseLog.With("repo", "PromoCodeRepo")}
}

func (r *PromoCodeRepo) List(ctx context.Context, p ListParams) ([]models.PromoCode, int64, error) {
	p = p.normalized()
	q := r.db.WithContext(ctx).Model(&models.PromoCode{})
	if like := likePattern(p.Query); like != "" {
		q = q.Where("lower(code) LIKE ? OR lower(description) LIKE ?", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	codes := make([]models.PromoCode, 0)
	if err := q.Order("id desc").Limit(p.Limit).Offset(p.Offset).Find(&codes).Error; err != nil {
		return nil, 0, err
	}
	return codes, total, nil
}

func (r *PromoCodeRepo) Get(ctx context.Context, id uint) (*models.PromoCode, error) {
	var pc models.PromoCode
	if err := r.db.WithContext(ctx).First(&pc, id).Error; err != nil {
		return nil, translate(err)
	}
	return &pc, nil
}

// GetByCode looks a code up case-insensitively.
func (r *PromoCodeRepo) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var pc models.PromoCode
	err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&pc).Error
	if err != nil {
		return nil, translate(err)
	}
	return &pc, nil
}

func (r *PromoCodeRepo) Create(ctx context.Context, pc *models.PromoCode) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		active := pc.IsActive
		if err := tx.Create(pc).Error; err != nil {
			return err
		}
		if !active {
			pc.IsActive = false
			return tx.Model(pc).Update("is_active", false).Error
		}
		return nil
	}))
}

func (r *PromoCodeRepo) Update(ctx context.Context, pc *models.PromoCode) error {
	return translate(r.db.WithContext(ctx).Save(pc).Error)
}

func (r *PromoCodeRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.PromoCode{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// consume increments used_count unless the cap is reached.
func consume(tx *gorm.DB, id uint) error {
	res := tx.Model(&models.PromoCode{}).
		Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPromoExhausted
	}
	return nil
}
