package handlers

import (
	"net/http"

	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 50

type InventoryHandler struct {
	inventoryService services.InventoryService
	logger           *zap.Logger
}

func NewInventoryHandler(inventoryService services.InventoryService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, logger: logger}
}

func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req services.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	result, err := h.inventoryService.Adjust(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       result.Message,
		"inventoryItem": result.InventoryItem,
		"historyEntry":  result.HistoryEntry,
	})
}

func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req services.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}

	result, err := h.inventoryService.CreateItem(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"message":       result.Message,
		"inventoryItem": result.InventoryItem,
		"historyEntry":  result.HistoryEntry,
	})
}

func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	item, err := h.inventoryService.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "inventoryItem": item})
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.inventoryService.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items, "count": len(items)})
}

func (h *InventoryHandler) History(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.inventoryService.History(c.Request.Context(), id, intQuery(c, "limit", defaultHistoryLimit))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": entries})
}

func (h *InventoryHandler) Audit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	audit, err := h.inventoryService.Audit(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "audit": audit})
}
