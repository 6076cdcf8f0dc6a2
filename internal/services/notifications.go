package services

import (
	"context"
	"fmt"

	"restaurant_pos/internal/models"
)

// Notifier sends a text message to a customer phone number. *whatsapp.Client satisfies it.
type Notifier interface {
	SendText(ctx context.Context, phone, message string) error
}

// customerNotice returns the message for a status change the customer should hear about.
func customerNotice(order *models.Order) (string, bool) {
	name := "there"
	if !isBlank(order.CustomerName) {
		name = *order.CustomerName
	}

	switch {
	case order.OrderType == string(models.Takeaway) && order.Status == string(models.OrderReady):
		return fmt.Sprintf("Hi %s, your order %s is ready for pickup.", name, order.OrderNumber), true
	case order.OrderType == string(models.Delivery) && order.Status == string(models.OrderOutForDelivery):
		return fmt.Sprintf("Hi %s, your order %s is on its way.", name, order.OrderNumber), true
	}
	return "", false
}
