package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant_pos/internal/config"
	"restaurant_pos/internal/database"
	"restaurant_pos/internal/handlers"
	"restaurant_pos/internal/logger"
	"restaurant_pos/internal/messaging"
	"restaurant_pos/internal/observability"
	"restaurant_pos/internal/redis"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/services"
	"restaurant_pos/internal/settings"
	"restaurant_pos/pkg/whatsapp"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.New(config.ServiceName, cfg.LogLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to set up tracing", zap.Error(err))
	}

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	store := repository.NewStore(db)

	// Redis only caches the tax rate; run without it when unreachable
	var (
		cache       settings.Cache
		cachePinger handlers.Pinger
	)
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Warn("Redis unavailable, tax rate will be read from the database", zap.Error(err))
	} else {
		defer redisClient.Close()
		cache = redisClient
		cachePinger = redisClient
	}

	var publisher messaging.Publisher = messaging.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := messaging.NewRabbitPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			log.Warn("RabbitMQ unavailable, events will not be published", zap.Error(err))
		} else {
			publisher = rabbit
		}
	}
	defer publisher.Close()

	var notifier services.Notifier
	if cfg.WhatsAppAPIURL != "" {
		notifier = whatsapp.NewClient(cfg.WhatsAppAPIURL, cfg.WhatsAppUsername, cfg.WhatsAppPassword, cfg.WhatsAppPath)
	}

	fallbackRate, err := decimal.NewFromString(cfg.DefaultTaxRate)
	if err != nil {
		log.Fatal("Invalid DEFAULT_TAX_RATE", zap.String("value", cfg.DefaultTaxRate), zap.Error(err))
	}

	// Initialize services
	clock := services.SystemClock{}
	taxRates := settings.NewService(store.Financial(), cache, time.Duration(cfg.CacheTTL)*time.Second, fallbackRate, log)
	inventoryService := services.NewInventoryService(store, publisher, clock, log)
	orderService := services.NewOrderService(store, taxRates, inventoryService, publisher, notifier, clock, cfg.TableReleasePolicy, log)
	staffService := services.NewStaffService(store.Users())

	// Setup routes
	gin.SetMode(gin.ReleaseMode)
	router := &handlers.Router{
		API:       handlers.NewAPIHandler(db, cachePinger),
		Orders:    handlers.NewOrderHandler(orderService, inventoryService, log),
		Inventory: handlers.NewInventoryHandler(inventoryService, log),
		Settings:  handlers.NewSettingsHandler(taxRates, log),
		Auth:      handlers.NewAuth(staffService, cfg.AuthEnabled, log),
		Logger:    log,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting",
			zap.String("port", cfg.ServerPort),
			zap.String("table_release_policy", cfg.TableReleasePolicy),
			zap.Bool("auth_enabled", cfg.AuthEnabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("Tracer shutdown failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
