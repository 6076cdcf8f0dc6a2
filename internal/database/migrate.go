package database

import (
	"restaurant_pos/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultTaxRate seeds the tax_rate setting on an empty database.
var DefaultTaxRate = decimal.NewFromInt(10)

// Models lists every persisted entity in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Table{},
		&models.InventoryItem{},
		&models.MenuItem{},
		&models.Ingredient{},
		&models.Order{},
		&models.OrderItem{},
		&models.StockHistory{},
		&models.FinancialSettings{},
		&models.Sequence{},
	}
}

// Migrate creates the schema, the one-open-order-per-table index and the default
// tax rate and order number sequence rows. It is safe to run repeatedly.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(Models()...)
	if err != nil {
		return err
	}

	// backs the table row lock taken during order creation
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_one_open_per_table
		ON orders (table_id)
		WHERE table_id IS NOT NULL AND status IN ('PENDING', 'PREPARING', 'READY')`).Error
	if err != nil {
		return err
	}

	err = db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.Sequence{Name: models.OrderNumberSequence}).Error
	if err != nil {
		return err
	}

	var count int64
	if err := db.Model(&models.FinancialSettings{}).Where("setting_name = ?", models.TaxRateSetting).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return db.Create(&models.FinancialSettings{
			SettingName:     models.TaxRateSetting,
			PercentageValue: DefaultTaxRate,
			IsActive:        true,
		}).Error
	}
	return nil
}
