package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"not null"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	IsAvailable  bool            `json:"is_available" gorm:"default:true"`
	Ingredients  []Ingredient    `json:"ingredients" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Ingredient is one bill-of-materials line: how much of an inventory item one unit of
// the menu item consumes, in the inventory item's unit.
type Ingredient struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	MenuItemID      uint            `json:"menu_item_id" gorm:"not null;index"`
	InventoryItemID uint            `json:"inventory_item_id" gorm:"not null;index"`
	InventoryItem   *InventoryItem  `json:"inventory_item,omitempty" gorm:"foreignKey:InventoryItemID"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit" gorm:"type:decimal(12,3);not null"`
}

func (Ingredient) TableName() string { return "menu_item_ingredients" }
