package db

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/diewo77/traiteur-admin/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	d, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	d := openTestDB(t)
	if err := AutoMigrate(d); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	for _, table := range requiredTables {
		if !d.Migrator().HasTable(table) {
			t.Fatalf("missing table %s", table)
		}
	}
}

func TestCheckSchemaMissingTable(t *testing.T) {
	d := openTestDB(t)
	if err := d.AutoMigrate(&models.Product{}); err != nil {
		t.Fatal(err)
	}
	if err := CheckSchema(d); err == nil {
		t.Fatal("expected error for missing tables")
	}
}

func TestSeedIdempotent(t *testing.T) {
	d := openTestDB(t)
	if err := AutoMigrate(d); err != nil {
		t.Fatal(err)
	}
	if err := Seed(d); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := Seed(d); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	var products, promos int64
	d.Model(&models.Product{}).Count(&products)
	d.Model(&models.PromoCode{}).Count(&promos)
	if products != int64(len(demoProducts)) {
		t.Fatalf("expected %d products got %d", len(demoProducts), products)
	}
	if promos != int64(len(demoPromoCodes)) {
		t.Fatalf("expected %d promo codes got %d", len(demoPromoCodes), promos)
	}
}
