package handlers

import (
	"context"
	"net/http"
	"time"

	"restaurant_pos/internal/config"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Pinger is a dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type APIHandler struct {
	db    *gorm.DB
	cache Pinger
}

// NewAPIHandler builds the health handler. cache may be nil when running without Redis.
func NewAPIHandler(db *gorm.DB, cache Pinger) *APIHandler {
	return &APIHandler{db: db, cache: cache}
}

func (h *APIHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	healthy := true

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		checks["database"] = err.Error()
		healthy = false
	}

	if h.cache != nil {
		checks["cache"] = "ok"
		if err := h.cache.Ping(ctx); err != nil {
			// the tax rate provider falls back to the database
			checks["cache"] = err.Error()
		}
	}

	status := http.StatusOK
	state := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": config.ServiceName,
		"version": config.ServiceVersion,
		"checks":  checks,
	})
}
