package handlers

import (
	"net/http"

	"restaurant_pos/internal/errs"
	"restaurant_pos/internal/settings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SettingsHandler struct {
	taxRates *settings.Service
	logger   *zap.Logger
}

func NewSettingsHandler(taxRates *settings.Service, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{taxRates: taxRates, logger: logger}
}

type TaxRateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

func (h *SettingsHandler) GetTaxRate(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "rate": h.taxRates.CurrentTaxRate(c.Request.Context())})
}

func (h *SettingsHandler) UpdateTaxRate(c *gin.Context) {
	var req TaxRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request format")
		return
	}
	if req.Rate.IsNegative() || req.Rate.GreaterThan(decimal.NewFromInt(100)) {
		respondError(c, h.logger, errs.Validation("rate", "must be between 0 and 100"))
		return
	}

	setting, err := h.taxRates.UpdateTaxRate(c.Request.Context(), req.Rate, currentStaffID(c))
	if err != nil {
		respondError(c, h.logger, errs.Persistence("update tax rate", err))
		return
	}
	h.logger.Info("tax rate updated",
		zap.String("rate", setting.PercentageValue.String()),
		zap.Uint("updated_by", currentStaffID(c)),
	)
	c.JSON(http.StatusOK, gin.H{"success": true, "rate": setting.PercentageValue})
}
