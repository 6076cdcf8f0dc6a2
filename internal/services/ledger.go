package services

import (
	"context"
	"time"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"

	"github.com/shopspring/decimal"
)

// ledgerEntry is one stock movement to append. After is the item's new on-hand quantity.
type ledgerEntry struct {
	Type     models.StockMovementType
	After    decimal.Decimal
	Reason   *string
	OrderID  *uint
	Occurred time.Time
}

// appendLedger is the only code path that changes InventoryItem.Quantity. It must run
// inside a transaction that holds the item's row lock.
func appendLedger(ctx context.Context, tx repository.Store, item *models.InventoryItem, e ledgerEntry) (*models.StockHistory, error) {
	before := item.Quantity

	entry := &models.StockHistory{
		InventoryItemID: item.ID,
		Type:            string(e.Type),
		Quantity:        e.After.Sub(before).Abs(),
		QuantityBefore:  before,
		QuantityAfter:   e.After,
		Reason:          e.Reason,
		OrderID:         e.OrderID,
		CreatedAt:       e.Occurred,
	}

	item.Quantity = e.After
	if e.Type == models.StockIn {
		restocked := e.Occurred
		item.LastRestockedAt = &restocked
	}

	if err := tx.Inventory().SetQuantity(ctx, item); err != nil {
		return nil, err
	}
	if err := tx.Inventory().AppendHistory(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ledgerBalance sums the signed contribution of every entry.
func ledgerBalance(entries []models.StockHistory) decimal.Decimal {
	balance := decimal.Zero
	for i := range entries {
		balance = balance.Add(entries[i].SignedQuantity())
	}
	return balance
}

func strPtr(s string) *string {
	return &s
}
