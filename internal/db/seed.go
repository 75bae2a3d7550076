package db

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/traiteur-admin/internal/models"
)

var demoProducts = []models.Product{
	{Code: "BUFFET-FROID", Name: "Buffet froid", UnitPrice: 18.5, Unit: "person", VATRate: 0.10, Category: "buffet", IsActive: true},
	{Code: "COCKTAIL-12", Name: "Cocktail 12 pièces", UnitPrice: 14, Unit: "person", VATRate: 0.10, Category: "cocktail", IsActive: true},
	{Code: "SERVICE-H", Name: "Service en salle", UnitPrice: 35, Unit: "hour", VATRate: 0.20, Category: "service", IsActive: true},
	{Code: "LIVRAISON", Name: "Livraison", UnitPrice: 45, Unit: "unit", VATRate: 0.20, Category: "service", IsActive: true},
}

var demoPromoCodes = []models.PromoCode{
	{Code: "BIENVENUE10", Description: "10% sur la première commande", PercentOff: 10, IsActive: true},
}

// Seed inserts demo products and promo codes. Existing codes are left untouched
// so it can run on every start.
func Seed(conn *gorm.DB) error {
	for _, p := range demoProducts {
		var existing models.Product
		err := conn.Unscoped().Where("code = ?", p.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := conn.Create(&p).Error; err != nil {
				return fmt.Errorf("seed product %s: %w", p.Code, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.Code, err)
		}
	}
	for _, pc := range demoPromoCodes {
		var existing models.PromoCode
		err := conn.Where("code = ?", pc.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := conn.Create(&pc).Error; err != nil {
				return fmt.Errorf("seed promo code %s: %w", pc.Code, err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("seed promo code %s: %w", pc.Code, err)
		}
	}
	return nil
}
