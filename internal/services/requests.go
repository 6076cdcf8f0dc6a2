package services

import (
	"restaurant_pos/internal/errs"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/pricing"

	"github.com/shopspring/decimal"
)

type OrderLineRequest struct {
	MenuItemID uint             `json:"menuItemId"`
	Quantity   int              `json:"quantity"`
	UnitPrice  *decimal.Decimal `json:"unitPrice"`
	Note       *string          `json:"note"`
}

type CreateOrderRequest struct {
	OrderType       string             `json:"orderType"`
	TableID         *uint              `json:"tableId"`
	CustomerName    *string            `json:"customerName"`
	CustomerPhone   *string            `json:"customerPhone"`
	DeliveryAddress *string            `json:"deliveryAddress"`
	DeliveryNote    *string            `json:"deliveryNote"`
	DeliveryFee     *decimal.Decimal   `json:"deliveryFee"`
	Items           []OrderLineRequest `json:"items"`
	Discount        *pricing.Discount  `json:"discount"`
	PaymentMethod   *string            `json:"paymentMethod"`
}

// OrderResult is returned by order creation, merge and status transitions.
type OrderResult struct {
	Order          *models.Order         `json:"order"`
	Merged         bool                  `json:"merged"`
	Message        string                `json:"message"`
	Reconciliation *ReconciliationResult `json:"reconciliation,omitempty"`
}

type Deduction struct {
	InventoryItemID uint            `json:"inventory_item_id"`
	ItemName        string          `json:"item_name"`
	Quantity        decimal.Decimal `json:"quantity"`
	Remaining       decimal.Decimal `json:"remaining"`
	Unit            string          `json:"unit"`
}

type ReconciliationResult struct {
	OK                bool             `json:"ok"`
	AlreadyReconciled bool             `json:"already_reconciled"`
	OrderID           uint             `json:"order_id"`
	OrderNumber       string           `json:"order_number"`
	Deductions        []Deduction      `json:"deductions"`
	InsufficientItems []errs.Shortfall `json:"insufficient_items"`
	Message           string           `json:"message"`

	// items that crossed their low-stock threshold, announced after commit
	lowStock []models.InventoryItem
}

type AdjustmentRequest struct {
	InventoryID uint            `json:"inventoryId"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Reason      *string         `json:"reason"`
}

type AdjustmentResult struct {
	InventoryItem *models.InventoryItem `json:"inventoryItem"`
	HistoryEntry  *models.StockHistory  `json:"historyEntry"`
	Message       string                `json:"message"`
}

type CreateInventoryRequest struct {
	Name              string           `json:"name"`
	Unit              string           `json:"unit"`
	Quantity          decimal.Decimal  `json:"quantity"`
	LowStockThreshold decimal.Decimal  `json:"lowStockThreshold"`
	CostPerUnit       *decimal.Decimal `json:"costPerUnit"`
	Supplier          *string          `json:"supplier"`
}

// LedgerAudit compares an item's on-hand quantity with the sum of its ledger.
type LedgerAudit struct {
	InventoryItemID uint            `json:"inventory_item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	LedgerBalance   decimal.Decimal `json:"ledger_balance"`
	Drift           decimal.Decimal `json:"drift"`
	Entries         int             `json:"entries"`
	Consistent      bool            `json:"consistent"`
}
