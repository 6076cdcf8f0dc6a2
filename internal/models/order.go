package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	OrderNumber     string          `json:"order_number" gorm:"uniqueIndex;not null"`
	OrderType       string          `json:"order_type" gorm:"not null"` // DINE_IN, TAKEAWAY, DELIVERY
	Status          string          `json:"status" gorm:"not null;default:'PENDING';index"`
	TableID         *uint           `json:"table_id" gorm:"index"`
	Table           *Table          `json:"table,omitempty" gorm:"foreignKey:TableID"`
	CustomerName    *string         `json:"customer_name"`
	CustomerPhone   *string         `json:"customer_phone"`
	DeliveryAddress *string         `json:"delivery_address" gorm:"type:text"`
	DeliveryNote    *string         `json:"delivery_note" gorm:"type:text"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null;default:0"`
	Discount        decimal.Decimal `json:"discount" gorm:"type:decimal(12,2);not null;default:0"`
	TaxRate         decimal.Decimal `json:"tax_rate" gorm:"type:decimal(5,2);not null;default:0"`
	Tax             decimal.Decimal `json:"tax" gorm:"type:decimal(12,2);not null;default:0"`
	DeliveryFee     decimal.Decimal `json:"delivery_fee" gorm:"type:decimal(12,2);not null;default:0"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null;default:0"`
	PaymentMethod   *string         `json:"payment_method"`
	PaymentStatus   string          `json:"payment_status" gorm:"not null;default:'PENDING'"`
	Items           []OrderItem     `json:"items" gorm:"constraint:OnDelete:CASCADE"`
	CompletedAt     *time.Time      `json:"completed_at"`
	CancelledAt     *time.Time      `json:"cancelled_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderType string

const (
	DineIn   OrderType = "DINE_IN"
	Takeaway OrderType = "TAKEAWAY"
	Delivery OrderType = "DELIVERY"
)

type OrderStatus string

const (
	OrderPending        OrderStatus = "PENDING"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderReady          OrderStatus = "READY"
	OrderOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderCompleted      OrderStatus = "COMPLETED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

// OpenOrderStatuses are the statuses in which a dine-in order still accepts new items.
var OpenOrderStatuses = []string{
	string(OrderPending),
	string(OrderPreparing),
	string(OrderReady),
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "CASH"
	PaymentCard    PaymentMethod = "CARD"
	PaymentEWallet PaymentMethod = "E_WALLET"
)

func (o *Order) IsTerminal() bool {
	return o.Status == string(OrderCompleted) || o.Status == string(OrderCancelled)
}
