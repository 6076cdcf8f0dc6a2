package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventOrderCreated       = "order.created"
	EventOrderItemsAdded    = "order.items_added"
	EventOrderStatusChanged = "order.status_changed"
	EventInventoryAdjusted  = "inventory.adjusted"
	EventInventoryLowStock  = "inventory.low_stock"
)

type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func NewEvent(eventType string, at time.Time, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: at.UTC(),
		Payload:    payload,
	}
}

type OrderStatusPayload struct {
	OrderID     uint   `json:"order_id"`
	OrderNumber string `json:"order_number"`
	OrderType   string `json:"order_type"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
	TableID     *uint  `json:"table_id,omitempty"`
}

type LowStockPayload struct {
	InventoryItemID uint   `json:"inventory_item_id"`
	Name            string `json:"name"`
	Quantity        string `json:"quantity"`
	Threshold       string `json:"threshold"`
	Unit            string `json:"unit"`
}

// Publisher delivers events after the originating transaction has committed.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error                         { return nil }
