package handlers

import (
	"net/http"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService     services.OrderService
	inventoryService services.InventoryService
	logger           *zap.Logger
}

func NewOrderHandler(orderService services.OrderService, inventoryService services.InventoryService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService:     orderService,
		inventoryService: inventoryService,
		logger:           logger,
	}
}

type UpdateStatusRequest struct {
	OrderID   *uint  `json:"orderId"`
	NewStatus string `json:"newStatus"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	result, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status := http.StatusCreated
	if result.Merged {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{
		"success":            true,
		"message":            result.Message,
		"merged":             result.Merged,
		"order":              result.Order,
		"allowedTransitions": allowedTransitions(result.Order),
	})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	if req.OrderID != nil && *req.OrderID != id {
		badRequest(c, "orderId does not match the order in the path")
		return
	}
	if req.NewStatus == "" {
		badRequest(c, "newStatus is required")
		return
	}

	result, err := h.orderService.TransitionStatus(c.Request.Context(), id, req.NewStatus)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	body := gin.H{
		"success":            true,
		"message":            result.Message,
		"order":              result.Order,
		"allowedTransitions": allowedTransitions(result.Order),
	}
	if result.Reconciliation != nil {
		body["reconciliation"] = result.Reconciliation
	}
	c.JSON(http.StatusOK, body)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order, "allowedTransitions": allowedTransitions(order)})
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context(), c.Query("status"), intQuery(c, "limit", 0))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders, "count": len(orders)})
}

// allowedTransitions lists the statuses the order can be moved to next.
func allowedTransitions(order *models.Order) []models.OrderStatus {
	return services.NextStatuses(models.OrderType(order.OrderType), models.OrderStatus(order.Status))
}

// Reconcile confirms the ingredient deduction of a completed order.
func (h *OrderHandler) Reconcile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	result, err := h.inventoryService.Reconcile(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": result.Message, "reconciliation": result})
}

func (h *OrderHandler) ReleaseTable(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	table, err := h.orderService.ReleaseTable(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "table": table})
}
