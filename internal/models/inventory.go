package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryItem.Quantity is written only by the stock ledger append path.
type InventoryItem struct {
	ID                uint             `json:"id" gorm:"primaryKey"`
	Name              string           `json:"name" gorm:"uniqueIndex;not null"`
	Quantity          decimal.Decimal  `json:"quantity" gorm:"type:decimal(12,3);not null;default:0"`
	Unit              string           `json:"unit" gorm:"not null"`
	LowStockThreshold decimal.Decimal  `json:"low_stock_threshold" gorm:"type:decimal(12,3);not null;default:0"`
	CostPerUnit       *decimal.Decimal `json:"cost_per_unit" gorm:"type:decimal(12,2)"`
	Supplier          *string          `json:"supplier"`
	LastRestockedAt   *time.Time       `json:"last_restocked_at"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

func (i *InventoryItem) IsLowStock() bool {
	return i.Quantity.LessThanOrEqual(i.LowStockThreshold)
}

// StockHistory is an append-only ledger entry. Quantity is always a positive magnitude;
// the direction comes from Type (and from QuantityBefore/QuantityAfter for ADJUSTMENT).
type StockHistory struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	InventoryItemID uint            `json:"inventory_item_id" gorm:"not null;index"`
	Type            string          `json:"type" gorm:"not null"` // IN, OUT, ADJUSTMENT
	Quantity        decimal.Decimal `json:"quantity" gorm:"type:decimal(12,3);not null"`
	QuantityBefore  decimal.Decimal `json:"quantity_before" gorm:"type:decimal(12,3);not null"`
	QuantityAfter   decimal.Decimal `json:"quantity_after" gorm:"type:decimal(12,3);not null"`
	Reason          *string         `json:"reason" gorm:"type:text"`
	OrderID         *uint           `json:"order_id" gorm:"index"`
	CreatedAt       time.Time       `json:"created_at"`
}

type StockMovementType string

const (
	StockIn         StockMovementType = "IN"
	StockOut        StockMovementType = "OUT"
	StockAdjustment StockMovementType = "ADJUSTMENT"
)

// SignedQuantity is the entry's contribution to the item's on-hand quantity.
func (h *StockHistory) SignedQuantity() decimal.Decimal {
	switch StockMovementType(h.Type) {
	case StockIn:
		return h.Quantity
	case StockOut:
		return h.Quantity.Neg()
	default:
		return h.QuantityAfter.Sub(h.QuantityBefore)
	}
}
