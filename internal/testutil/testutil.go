// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"restaurant_pos/internal/database"
	"restaurant_pos/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated in-memory SQLite database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection keeps the in-memory database alive and shared
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// PostgresDB connects to the database named by TEST_DATABASE_URL and empties it, for tests
// that depend on real row locks. The test is skipped when the variable is unset. Only one
// package uses it, since packages run in parallel against the same database.
func PostgresDB(t *testing.T) *gorm.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.Initialize(url, zap.NewNop())
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	tables := make([]string, 0, len(database.Models()))
	for _, model := range database.Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			t.Fatalf("parse model: %v", err)
		}
		tables = append(tables, stmt.Schema.Table)
	}
	if err := db.Exec("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE").Error; err != nil {
		t.Fatalf("truncate: %v", err)
	}
	// puts the sequence and tax rate rows back
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Inventory creates an inventory item whose ledger already explains its quantity.
func Inventory(t *testing.T, db *gorm.DB, name, quantity, unit string) *models.InventoryItem {
	t.Helper()

	item := &models.InventoryItem{
		Name:              name,
		Quantity:          D(quantity),
		Unit:              unit,
		LowStockThreshold: decimal.Zero,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create inventory %s: %v", name, err)
	}
	entry := &models.StockHistory{
		InventoryItemID: item.ID,
		Type:            string(models.StockIn),
		Quantity:        D(quantity),
		QuantityBefore:  decimal.Zero,
		QuantityAfter:   D(quantity),
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("create initial stock entry for %s: %v", name, err)
	}
	return item
}

// Ingredient describes one bill-of-materials line for MenuItem.
type Ingredient struct {
	Item    *models.InventoryItem
	PerUnit string
}

func MenuItem(t *testing.T, db *gorm.DB, name, price string, ingredients ...Ingredient) *models.MenuItem {
	t.Helper()

	item := &models.MenuItem{
		Name:        name,
		Price:       D(price),
		IsAvailable: true,
	}
	for _, ing := range ingredients {
		item.Ingredients = append(item.Ingredients, models.Ingredient{
			InventoryItemID: ing.Item.ID,
			QuantityPerUnit: D(ing.PerUnit),
		})
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create menu item %s: %v", name, err)
	}
	return item
}

func Table(t *testing.T, db *gorm.DB, number int) *models.Table {
	t.Helper()

	table := &models.Table{Number: number, Capacity: 4, Status: string(models.TableAvailable)}
	if err := db.Create(table).Error; err != nil {
		t.Fatalf("create table %d: %v", number, err)
	}
	return table
}

// Reload fetches the current state of an inventory item.
func Reload(t *testing.T, db *gorm.DB, id uint) *models.InventoryItem {
	t.Helper()

	var item models.InventoryItem
	if err := db.WithContext(context.Background()).First(&item, id).Error; err != nil {
		t.Fatalf("reload inventory %d: %v", id, err)
	}
	return &item
}

// Clock is a settable clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
