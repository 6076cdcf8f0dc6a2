package repository

import (
	"context"
	"testing"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/testutil"
)

func TestSequenceNext(t *testing.T) {
	db := testutil.NewDB(t)
	seq := NewSequenceRepository(db)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, models.OrderNumberSequence)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if got != want {
			t.Errorf("Next = %d, want %d", got, want)
		}
	}

	// a counter nobody created yet starts at one
	got, err := seq.Next(ctx, "receipt")
	if err != nil || got != 1 {
		t.Errorf("Next(receipt) = %d, %v, want 1", got, err)
	}
}

func TestFindOpenByTable(t *testing.T) {
	db := testutil.NewDB(t)
	orders := NewOrderRepository(db)
	ctx := context.Background()
	table := testutil.Table(t, db, 1)

	open, err := orders.FindOpenByTable(ctx, table.ID)
	if err != nil || open != nil {
		t.Fatalf("empty table: %v, %v", open, err)
	}

	closed := &models.Order{OrderNumber: "ORD-000001", OrderType: "DINE_IN", Status: "COMPLETED", TableID: &table.ID}
	current := &models.Order{OrderNumber: "ORD-000002", OrderType: "DINE_IN", Status: "READY", TableID: &table.ID}
	for _, o := range []*models.Order{closed, current} {
		if err := orders.Create(ctx, o); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	open, err = orders.FindOpenByTable(ctx, table.ID)
	if err != nil {
		t.Fatalf("FindOpenByTable: %v", err)
	}
	if open == nil || open.ID != current.ID {
		t.Errorf("open = %+v, want %s", open, current.OrderNumber)
	}

	count, err := orders.CountOpenByTable(ctx, table.ID)
	if err != nil || count != 1 {
		t.Errorf("CountOpenByTable = %d, %v, want 1", count, err)
	}
}

func TestOneOpenOrderPerTable(t *testing.T) {
	db := testutil.NewDB(t)
	orders := NewOrderRepository(db)
	ctx := context.Background()
	table := testutil.Table(t, db, 1)

	first := &models.Order{OrderNumber: "ORD-000001", OrderType: "DINE_IN", Status: "PENDING", TableID: &table.ID}
	if err := orders.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	second := &models.Order{OrderNumber: "ORD-000002", OrderType: "DINE_IN", Status: "PENDING", TableID: &table.ID}
	err := orders.Create(ctx, second)
	if err == nil {
		t.Fatal("second open order for the table was accepted")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("err = %v, want unique violation", err)
	}
}

func TestTransactionRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	store := NewStore(db)
	ctx := context.Background()
	flour := testutil.Inventory(t, db, "Flour", "60", "kg")

	err := store.Transaction(ctx, func(tx Store) error {
		item, err := tx.Inventory().GetForUpdate(ctx, flour.ID)
		if err != nil {
			return err
		}
		item.Quantity = testutil.D("10")
		if err := tx.Inventory().SetQuantity(ctx, item); err != nil {
			return err
		}
		return context.Canceled
	})
	if err != context.Canceled {
		t.Fatalf("err = %v, want the callback error", err)
	}

	if got := testutil.Reload(t, db, flour.ID).Quantity; !got.Equal(testutil.D("60")) {
		t.Errorf("quantity = %s, want 60 after rollback", got)
	}
}

func TestGetWithIngredients(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	flour := testutil.Inventory(t, db, "Flour", "60", "kg")
	pizza := testutil.MenuItem(t, db, "Pizza", "12.50", testutil.Ingredient{Item: flour, PerUnit: "0.5"})

	order := &models.Order{OrderNumber: "ORD-000001", OrderType: "TAKEAWAY", Status: "PENDING"}
	if err := NewOrderRepository(db).Create(ctx, order); err != nil {
		t.Fatalf("Create: %v", err)
	}
	items := NewOrderItemRepository(db)
	err := items.CreateBatch(ctx, []models.OrderItem{{OrderID: order.ID, MenuItemID: pizza.ID, Quantity: 4, UnitPrice: pizza.Price, Subtotal: testutil.D("50")}})
	if err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	lines, err := items.GetWithIngredients(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetWithIngredients: %v", err)
	}
	if len(lines) != 1 || lines[0].MenuItem == nil || len(lines[0].MenuItem.Ingredients) != 1 {
		t.Fatalf("lines = %+v, want menu item with one ingredient", lines)
	}
	if !lines[0].MenuItem.Ingredients[0].QuantityPerUnit.Equal(testutil.D("0.5")) {
		t.Errorf("per unit = %s, want 0.5", lines[0].MenuItem.Ingredients[0].QuantityPerUnit)
	}
}
