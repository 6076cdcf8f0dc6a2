package main

import (
	"context"
	"fmt"

	"restaurant_pos/internal/config"
	"restaurant_pos/internal/database"
	"restaurant_pos/internal/logger"
	"restaurant_pos/internal/messaging"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/services"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type seedIngredient struct {
	inventory string
	perUnit   string
}

type seedMenuItem struct {
	name        string
	category    string
	price       string
	ingredients []seedIngredient
}

var seedInventory = []services.CreateInventoryRequest{
	{Name: "Flour", Unit: "kg", Quantity: d("60"), LowStockThreshold: d("10")},
	{Name: "Tomatoes", Unit: "kg", Quantity: d("25"), LowStockThreshold: d("5")},
	{Name: "Mozzarella", Unit: "kg", Quantity: d("15"), LowStockThreshold: d("3")},
	{Name: "Basil", Unit: "kg", Quantity: d("2"), LowStockThreshold: d("0.5")},
	{Name: "Olive Oil", Unit: "l", Quantity: d("10"), LowStockThreshold: d("2")},
	{Name: "Spaghetti", Unit: "kg", Quantity: d("20"), LowStockThreshold: d("4")},
	{Name: "Coffee Beans", Unit: "kg", Quantity: d("8"), LowStockThreshold: d("1.5")},
	{Name: "Milk", Unit: "l", Quantity: d("30"), LowStockThreshold: d("5")},
}

var seedMenu = []seedMenuItem{
	{"Margherita Pizza", "Pizza", "12.50", []seedIngredient{{"Flour", "0.5"}, {"Tomatoes", "0.3"}, {"Mozzarella", "0.25"}, {"Basil", "0.01"}}},
	{"Spaghetti Pomodoro", "Pasta", "10.00", []seedIngredient{{"Spaghetti", "0.15"}, {"Tomatoes", "0.25"}, {"Olive Oil", "0.02"}, {"Basil", "0.005"}}},
	{"Caprese Salad", "Salad", "8.00", []seedIngredient{{"Tomatoes", "0.2"}, {"Mozzarella", "0.15"}, {"Olive Oil", "0.015"}}},
	{"Cappuccino", "Coffee", "3.50", []seedIngredient{{"Coffee Beans", "0.018"}, {"Milk", "0.15"}}},
}

type seedStaff struct {
	username string
	fullName string
	role     models.UserRole
	pin      string
}

var staff = []seedStaff{
	{"admin", "Administrator", models.Admin, "123456"},
	{"manager", "Floor Manager", models.Manager, "2468"},
	{"cashier", "Front Cashier", models.Cashier, "1357"},
	{"kitchen", "Kitchen Station", models.Kitchen, "9999"},
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func main() {
	cfg := config.Load()
	log := logger.New(config.ServiceName+"-seed", cfg.LogLevel)
	defer log.Sync()
	ctx := context.Background()

	db, err := database.Initialize(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	store := repository.NewStore(db)

	staffService := services.NewStaffService(store.Users())
	if _, err := store.Users().GetByUsername(ctx, "admin"); err == nil {
		fmt.Println("Database already seeded")
		return
	}

	fmt.Println("Creating staff accounts...")
	for _, s := range staff {
		user := &models.User{Username: s.username, FullName: s.fullName, Role: string(s.role)}
		if err := staffService.CreateStaff(ctx, user, s.pin); err != nil {
			log.Fatal("Failed to create staff", zap.String("username", s.username), zap.Error(err))
		}
		fmt.Printf("  %-8s role=%-8s pin=%s\n", s.username, s.role, s.pin)
	}

	fmt.Println("Creating tables...")
	for number := 1; number <= 12; number++ {
		capacity := 4
		if number > 8 {
			capacity = 6
		}
		table := &models.Table{Number: number, Capacity: capacity, Status: string(models.TableAvailable)}
		if err := store.Tables().Create(ctx, table); err != nil {
			log.Fatal("Failed to create table", zap.Int("number", number), zap.Error(err))
		}
	}

	fmt.Println("Creating inventory...")
	inventory := services.NewInventoryService(store, messaging.NoopPublisher{}, services.SystemClock{}, log)
	inventoryIDs := make(map[string]uint, len(seedInventory))
	for _, req := range seedInventory {
		result, err := inventory.CreateItem(ctx, req)
		if err != nil {
			log.Fatal("Failed to create inventory item", zap.String("name", req.Name), zap.Error(err))
		}
		inventoryIDs[result.InventoryItem.Name] = result.InventoryItem.ID
	}

	fmt.Println("Creating menu...")
	for _, m := range seedMenu {
		item := &models.MenuItem{Name: m.name, CategoryName: m.category, Price: d(m.price), IsAvailable: true}
		for _, ing := range m.ingredients {
			id, ok := inventoryIDs[ing.inventory]
			if !ok {
				log.Fatal("Unknown ingredient", zap.String("menu_item", m.name), zap.String("inventory", ing.inventory))
			}
			item.Ingredients = append(item.Ingredients, models.Ingredient{InventoryItemID: id, QuantityPerUnit: d(ing.perUnit)})
		}
		if err := store.Menu().Create(ctx, item); err != nil {
			log.Fatal("Failed to create menu item", zap.String("name", m.name), zap.Error(err))
		}
	}

	fmt.Println("Database initialization completed successfully!")
}
