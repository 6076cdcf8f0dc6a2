package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	OrderID    uint            `json:"order_id" gorm:"not null;index"`
	MenuItemID uint            `json:"menu_item_id" gorm:"not null;index"`
	MenuItem   *MenuItem       `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Subtotal   decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Note       *string         `json:"note" gorm:"type:text"`
	CreatedAt  time.Time       `json:"created_at"`
}
