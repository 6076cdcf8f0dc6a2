package handlers

import (
	"restaurant_pos/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	API       *APIHandler
	Orders    *OrderHandler
	Inventory *InventoryHandler
	Settings  *SettingsHandler
	Auth      *Auth
	Logger    *zap.Logger
}

// Engine registers every route on a new gin engine.
func (r *Router) Engine() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), AccessLog(r.Logger))

	router.GET("/health", r.API.Health)

	frontOfHouse := []models.UserRole{models.Cashier, models.Manager, models.Admin}
	backOffice := []models.UserRole{models.Manager, models.Admin}

	api := router.Group("/api")
	{
		api.POST("/orders", r.Auth.Require(frontOfHouse...), r.Orders.CreateOrder)
		api.GET("/orders", r.Auth.Require(), r.Orders.ListOrders)
		api.GET("/orders/:id", r.Auth.Require(), r.Orders.GetOrder)
		api.PATCH("/orders/:id/status", r.Auth.Require(), r.Orders.UpdateStatus)
		api.POST("/orders/:id/reconcile", r.Auth.Require(backOffice...), r.Orders.Reconcile)

		api.PATCH("/tables/:id/release", r.Auth.Require(frontOfHouse...), r.Orders.ReleaseTable)

		api.POST("/inventory", r.Auth.Require(backOffice...), r.Inventory.CreateItem)
		api.PATCH("/inventory/adjust", r.Auth.Require(backOffice...), r.Inventory.Adjust)
		api.GET("/inventory/low-stock", r.Auth.Require(), r.Inventory.LowStock)
		api.GET("/inventory/:id", r.Auth.Require(), r.Inventory.GetItem)
		api.GET("/inventory/:id/history", r.Auth.Require(), r.Inventory.History)
		api.GET("/inventory/:id/audit", r.Auth.Require(backOffice...), r.Inventory.Audit)

		api.GET("/settings/tax-rate", r.Auth.Require(), r.Settings.GetTaxRate)
		api.PUT("/settings/tax-rate", r.Auth.Require(models.Admin), r.Settings.UpdateTaxRate)
	}

	return router
}
