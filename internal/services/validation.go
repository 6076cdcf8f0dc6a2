package services

import (
	"strings"

	"restaurant_pos/internal/errs"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/pricing"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// ValidateCreateOrder normalizes enum fields in place and rejects malformed requests.
func ValidateCreateOrder(req *CreateOrderRequest) error {
	req.OrderType = strings.ToUpper(strings.TrimSpace(req.OrderType))

	switch models.OrderType(req.OrderType) {
	case models.DineIn:
		if req.TableID == nil || *req.TableID == 0 {
			return errs.Validation("tableId", "a table is required for dine-in orders")
		}
	case models.Takeaway:
		if req.TableID != nil {
			return errs.Validation("tableId", "only dine-in orders can be attached to a table")
		}
	case models.Delivery:
		if req.TableID != nil {
			return errs.Validation("tableId", "only dine-in orders can be attached to a table")
		}
		if isBlank(req.DeliveryAddress) {
			return errs.Validation("deliveryAddress", "a delivery address is required for delivery orders")
		}
	default:
		return errs.Validation("orderType", "must be one of DINE_IN, TAKEAWAY, DELIVERY")
	}

	if req.DeliveryFee != nil {
		if models.OrderType(req.OrderType) != models.Delivery && !req.DeliveryFee.IsZero() {
			return errs.Validation("deliveryFee", "only delivery orders carry a delivery fee")
		}
		if req.DeliveryFee.IsNegative() {
			return errs.Validation("deliveryFee", "must not be negative")
		}
	}

	if len(req.Items) == 0 {
		return errs.Validation("items", "at least one item is required")
	}
	for i, item := range req.Items {
		if item.MenuItemID == 0 {
			return errs.Validation("items", "item %d: menuItemId is required", i+1)
		}
		if item.Quantity <= 0 {
			return errs.Validation("items", "item %d: quantity must be positive", i+1)
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			return errs.Validation("items", "item %d: unitPrice must not be negative", i+1)
		}
	}

	if req.Discount != nil {
		req.Discount.Type = pricing.DiscountType(strings.ToUpper(string(req.Discount.Type)))
		if req.Discount.Type == "" {
			req.Discount.Type = pricing.DiscountFixed
		}
		if req.Discount.Type != pricing.DiscountFixed && req.Discount.Type != pricing.DiscountPercentage {
			return errs.Validation("discount", "type must be FIXED or PERCENTAGE")
		}
		if req.Discount.Value.IsNegative() {
			return errs.Validation("discount", "must not be negative")
		}
		if req.Discount.Type == pricing.DiscountPercentage && req.Discount.Value.GreaterThan(hundred) {
			return errs.Validation("discount", "percentage must not exceed 100")
		}
	}

	if req.PaymentMethod != nil {
		method := strings.ToUpper(strings.TrimSpace(*req.PaymentMethod))
		switch models.PaymentMethod(method) {
		case models.PaymentCash, models.PaymentCard, models.PaymentEWallet:
			req.PaymentMethod = &method
		case "":
			req.PaymentMethod = nil
		default:
			return errs.Validation("paymentMethod", "must be one of CASH, CARD, E_WALLET")
		}
	}

	return nil
}

func ValidateAdjustment(req *AdjustmentRequest) error {
	req.Type = strings.ToUpper(strings.TrimSpace(req.Type))
	if req.InventoryID == 0 {
		return errs.Validation("inventoryId", "is required")
	}

	switch models.StockMovementType(req.Type) {
	case models.StockIn, models.StockOut:
		if !req.Quantity.IsPositive() {
			return errs.Validation("quantity", "must be positive")
		}
	case models.StockAdjustment:
		if req.Quantity.IsNegative() {
			return errs.Validation("quantity", "counted quantity must not be negative")
		}
	default:
		return errs.Validation("type", "must be one of IN, OUT, ADJUSTMENT")
	}
	return nil
}

func ValidateCreateInventory(req *CreateInventoryRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if req.Name == "" {
		return errs.Validation("name", "is required")
	}
	if req.Unit == "" {
		return errs.Validation("unit", "is required")
	}
	if req.Quantity.IsNegative() {
		return errs.Validation("quantity", "must not be negative")
	}
	if req.LowStockThreshold.IsNegative() {
		return errs.Validation("lowStockThreshold", "must not be negative")
	}
	if req.CostPerUnit != nil && req.CostPerUnit.IsNegative() {
		return errs.Validation("costPerUnit", "must not be negative")
	}
	return nil
}
