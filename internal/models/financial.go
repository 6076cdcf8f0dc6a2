package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const TaxRateSetting = "tax_rate"

type FinancialSettings struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	SettingName     string          `json:"setting_name" gorm:"not null;index"` // tax_rate
	PercentageValue decimal.Decimal `json:"percentage_value" gorm:"type:decimal(5,2)"`
	IsActive        bool            `json:"is_active" gorm:"default:true"`
	CreatedBy       uint            `json:"created_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Sequence is a named counter advanced under a row lock.
type Sequence struct {
	Name      string `gorm:"primaryKey"`
	Value     int64  `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

const OrderNumberSequence = "order_number"
