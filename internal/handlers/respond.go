package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"restaurant_pos/internal/errs"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps the error taxonomy onto status codes. Anything unexpected is logged
// and reported as a generic internal error.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		ve  *errs.ValidationError
		nf  *errs.NotFoundError
		ce  *errs.ConflictError
		ise *errs.InsufficientStockError
	)

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   ve.Error(),
			"code":    "validation_error",
			"details": gin.H{"field": ve.Field},
		})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": nf.Error(), "code": "not_found"})
	case errors.As(err, &ce):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": ce.Error(), "code": ce.Code})
	case errors.As(err, &ise):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error":   ise.Error(),
			"code":    "insufficient_stock",
			"details": ise.Items,
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": err.Error(), "code": "unauthorized"})
	default:
		logger.Error("request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error", "code": "internal_error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message, "code": "validation_error"})
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
