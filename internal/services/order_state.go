package services

import "restaurant_pos/internal/models"

// transitions is the order status graph. READY forks on order type: delivery orders go
// out for delivery, everything else completes directly.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:        {models.OrderPreparing, models.OrderCancelled},
	models.OrderPreparing:      {models.OrderReady, models.OrderCancelled},
	models.OrderReady:          {models.OrderOutForDelivery, models.OrderCompleted, models.OrderCancelled},
	models.OrderOutForDelivery: {models.OrderCompleted, models.OrderCancelled},
}

func IsKnownStatus(status models.OrderStatus) bool {
	switch status {
	case models.OrderPending, models.OrderPreparing, models.OrderReady,
		models.OrderOutForDelivery, models.OrderCompleted, models.OrderCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order of the given type may move from one status to another.
func CanTransition(orderType models.OrderType, from, to models.OrderStatus) bool {
	if from == models.OrderReady {
		if to == models.OrderOutForDelivery && orderType != models.Delivery {
			return false
		}
		if to == models.OrderCompleted && orderType == models.Delivery {
			return false
		}
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses reachable from the current one.
func NextStatuses(orderType models.OrderType, from models.OrderStatus) []models.OrderStatus {
	next := make([]models.OrderStatus, 0, 2)
	for _, to := range transitions[from] {
		if CanTransition(orderType, from, to) {
			next = append(next, to)
		}
	}
	return next
}
