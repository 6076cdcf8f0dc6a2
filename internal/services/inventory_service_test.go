package services

import (
	"context"
	"errors"
	"testing"

	"restaurant_pos/internal/errs"
	"restaurant_pos/internal/messaging"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/testutil"
)

func ledgerEntries(t *testing.T, h *harness, inventoryID uint) []models.StockHistory {
	t.Helper()
	entries, err := h.store.Inventory().Ledger(context.Background(), inventoryID)
	if err != nil {
		t.Fatalf("Ledger: %v", err)
	}
	return entries
}

func TestReconcile_DeductsIngredients(t *testing.T) {
	h := newHarness(t)
	flour := testutil.Inventory(t, h.db, "Flour", "60", "kg")
	pizza := testutil.MenuItem(t, h.db, "Pizza", "12.50", testutil.Ingredient{Item: flour, PerUnit: "0.5"})
	order := h.mustCreate(t, takeaway(line(pizza.ID, 4))).Order

	result := h.complete(t, order.ID).Reconciliation
	if result == nil || !result.OK || result.AlreadyReconciled {
		t.Errorf("result = %+v, want fresh successful reconciliation", result)
	}

	if got := testutil.Reload(t, h.db, flour.ID).Quantity; !got.Equal(testutil.D("58")) {
		t.Errorf("flour = %s, want 58", got)
	}

	entries := ledgerEntries(t, h, flour.ID)
	last := entries[len(entries)-1]
	if last.Type != string(models.StockOut) || !last.Quantity.Equal(testutil.D("2")) {
		t.Errorf("last entry = %s %s, want OUT 2", last.Type, last.Quantity)
	}
	if last.OrderID == nil || *last.OrderID != order.ID {
		t.Errorf("entry order id = %v, want %d", last.OrderID, order.ID)
	}
	if last.Reason == nil || *last.Reason != "order "+order.OrderNumber {
		t.Errorf("entry reason = %v", last.Reason)
	}
}

func TestReconcile_InsufficientStockChangesNothing(t *testing.T) {
	h := newHarness(t)
	saffron := testutil.Inventory(t, h.db, "Saffron", "1.5", "g")
	rice := testutil.Inventory(t, h.db, "Rice", "100", "kg")
	paella := testutil.MenuItem(t, h.db, "Paella", "30.00",
		testutil.Ingredient{Item: rice, PerUnit: "0.2"},
		testutil.Ingredient{Item: saffron, PerUnit: "2"},
	)
	order := h.mustCreate(t, takeaway(line(paella.ID, 1))).Order
	h.advance(t, order.ID, "PREPARING", "READY")

	_, err := h.orders.TransitionStatus(context.Background(), order.ID, "COMPLETED")
	var ise *errs.InsufficientStockError
	if !errors.As(err, &ise) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}
	if len(ise.Items) != 1 {
		t.Fatalf("shortfalls = %+v, want one", ise.Items)
	}
	short := ise.Items[0]
	if short.ItemName != "Saffron" || !short.Required.Equal(testutil.D("2")) || !short.Available.Equal(testutil.D("1.5")) || short.Unit != "g" {
		t.Errorf("shortfall = %+v", short)
	}

	// the satisfiable ingredient is not deducted either
	if got := testutil.Reload(t, h.db, rice.ID).Quantity; !got.Equal(testutil.D("100")) {
		t.Errorf("rice = %s, want 100", got)
	}
	if got := testutil.Reload(t, h.db, saffron.ID).Quantity; !got.Equal(testutil.D("1.5")) {
		t.Errorf("saffron = %s, want 1.5", got)
	}
	if n := len(ledgerEntries(t, h, rice.ID)); n != 1 {
		t.Errorf("rice ledger entries = %d, want only the initial one", n)
	}
	current, err := h.orders.GetOrder(context.Background(), order.ID)
	if err != nil || current.Status != string(models.OrderReady) {
		t.Errorf("order after failed completion = %+v, %v, want READY", current, err)
	}
}

func TestReconcile_IsIdempotent(t *testing.T) {
	h := newHarness(t)
	flour := testutil.Inventory(t, h.db, "Flour", "60", "kg")
	pizza := testutil.MenuItem(t, h.db, "Pizza", "12.50", testutil.Ingredient{Item: flour, PerUnit: "0.5"})
	order := h.mustCreate(t, takeaway(line(pizza.ID, 4))).Order
	h.advance(t, order.ID, "PREPARING", "READY")

	// a retry that read the order before the first completion committed
	stale, err := h.store.Orders().GetByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	h.advance(t, order.ID, "COMPLETED")

	var retried *ReconciliationResult
	err = h.store.Transaction(context.Background(), func(tx repository.Store) error {
		var err error
		retried, err = h.inventory.reconcileTx(context.Background(), tx, stale)
		return err
	})
	if err != nil {
		t.Fatalf("retried reconcile: %v", err)
	}
	if !retried.OK || !retried.AlreadyReconciled {
		t.Errorf("retried result = %+v, want already reconciled", retried)
	}

	again, err := h.inventory.Reconcile(context.Background(), order.ID)
	if err != nil || !again.OK || !again.AlreadyReconciled {
		t.Errorf("reconcile of completed order = %+v, %v", again, err)
	}

	if got := testutil.Reload(t, h.db, flour.ID).Quantity; !got.Equal(testutil.D("58")) {
		t.Errorf("flour = %s, want 58", got)
	}
}

func TestReconcile_SumsSharedIngredient(t *testing.T) {
	h := newHarness(t)
	tomatoes := testutil.Inventory(t, h.db, "Tomatoes", "10", "kg")
	pizza := testutil.MenuItem(t, h.db, "Pizza", "12.50", testutil.Ingredient{Item: tomatoes, PerUnit: "0.3"})
	salad := testutil.MenuItem(t, h.db, "Salad", "8.00", testutil.Ingredient{Item: tomatoes, PerUnit: "0.2"})
	order := h.mustCreate(t, takeaway(line(pizza.ID, 2), line(salad.ID, 3))).Order

	result := h.complete(t, order.ID).Reconciliation
	if result == nil || len(result.Deductions) != 1 || !result.Deductions[0].Quantity.Equal(testutil.D("1.2")) {
		t.Fatalf("reconciliation = %+v, want a single 1.2 kg deduction", result)
	}
	if got := testutil.Reload(t, h.db, tomatoes.ID).Quantity; !got.Equal(testutil.D("8.8")) {
		t.Errorf("tomatoes = %s, want 8.8", got)
	}
}

func TestReconcile_Errors(t *testing.T) {
	h := newHarness(t)
	pizza := testutil.MenuItem(t, h.db, "Pizza", "12.50")

	_, err := h.inventory.Reconcile(context.Background(), 404)
	var nf *errs.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("missing order: err = %v, want NotFoundError", err)
	}

	tests := []struct {
		name     string
		statuses []string
		wantCode string
	}{
		{"pending", nil, errs.CodeNotCompleted},
		{"ready", []string{"PREPARING", "READY"}, errs.CodeNotCompleted},
		{"cancelled", []string{"CANCELLED"}, errs.CodeOrderClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := h.mustCreate(t, takeaway(line(pizza.ID, 1))).Order
			h.advance(t, order.ID, tt.statuses...)

			_, err := h.inventory.Reconcile(context.Background(), order.ID)
			var ce *errs.ConflictError
			if !errors.As(err, &ce) || ce.Code != tt.wantCode {
				t.Errorf("err = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestReconcile_OpenOrderIsNotDeductedEarly(t *testing.T) {
	t.Run("items merged later are deducted on completion", func(t *testing.T) {
		h := newHarness(t)
		flour := testutil.Inventory(t, h.db, "Flour", "60", "kg")
		pizza := testutil.MenuItem(t, h.db, "Pizza", "12.50", testutil.Ingredient{Item: flour, PerUnit: "0.5"})
		table := testutil.Table(t, h.db, 1)

		order := h.mustCreate(t, dineIn(table.ID, line(pizza.ID, 2))).Order
		if _, err := h.inventory.Reconcile(context.Background(), order.ID); err == nil {
			t.Fatalf("reconcile of an open order succeeded")
		}
		merged := h.mustCreate(t, dineIn(table.ID, line(pizza.ID, 4)))
		if !merged.Merged || merged.Order.ID != order.ID {
			t.Fatalf("second request did not merge: %+v", merged.Order)
		}

		completed := h.complete(t, order.ID)
		if completed.Reconciliation == nil || completed.Reconciliation.AlreadyReconciled {
			t.Errorf("completion reconciliation = %+v, want a fresh deduction", completed.Reconciliation)
		}
		if got := testutil.Reload(t, h.db, flour.ID).Quantity; !got.Equal(testutil.D("57")) {
			t.Errorf("flour after six pizzas = %s, want 57", got)
		}
	})

	t.Run("cancelled order keeps its stock", func(t *testing.T) {
		h := newHarness(t)
		flour := testutil.Inventory(t, h.db, "Flour", "60", "kg")
		pizza := testutil.MenuItem(t, h.db, "Pizza", "12.50", testutil.Ingredient{Item: flour, PerUnit: "0.5"})

		order := h.mustCreate(t, takeaway(line(pizza.ID, 4))).Order
		if _, err := h.inventory.Reconcile(context.Background(), order.ID); err == nil {
			t.Fatalf("reconcile of an open order succeeded")
		}
		h.advance(t, order.ID, "CANCELLED")

		if got := testutil.Reload(t, h.db, flour.ID).Quantity; !got.Equal(testutil.D("60")) {
			t.Errorf("flour after cancellation = %s, want 60", got)
		}
		if n := len(ledgerEntries(t, h, flour.ID)); n != 1 {
			t.Errorf("flour ledger entries = %d, want only the initial one", n)
		}
	})
}

func TestReconcile_AnnouncesLowStock(t *testing.T) {
	h := newHarness(t)
	cheese := testutil.Inventory(t, h.db, "Cheese", "5", "kg")
	h.db.Model(cheese).Update("low_stock_threshold", testutil.D("4"))
	pizza := testutil.MenuItem(t, h.db, "Pizza", "12.50", testutil.Ingredient{Item: cheese, PerUnit: "0.5"})
	order := h.mustCreate(t, takeaway(line(pizza.ID, 3))).Order

	h.complete(t, order.ID)

	events := h.events.ofType(messaging.EventInventoryLowStock)
	if len(events) != 1 {
		t.Fatalf("low stock events = %d, want 1", len(events))
	}
	payload := events[0].Payload.(messaging.LowStockPayload)
	if payload.Name != "Cheese" || !testutil.D(payload.Quantity).Equal(testutil.D("3.5")) {
		t.Errorf("payload = %+v", payload)
	}
}

func TestAdjust(t *testing.T) {
	tests := []struct {
		name       string
		req        AdjustmentRequest
		wantQty    string
		wantType   models.StockMovementType
		wantAmount string
	}{
		{"restock", AdjustmentRequest{Type: "IN", Quantity: testutil.D("5")}, "65", models.StockIn, "5"},
		{"waste", AdjustmentRequest{Type: "out", Quantity: testutil.D("2.5")}, "57.5", models.StockOut, "2.5"},
		{"stock take down", AdjustmentRequest{Type: "ADJUSTMENT", Quantity: testutil.D("50")}, "50", models.StockAdjustment, "10"},
		{"stock take up", AdjustmentRequest{Type: "ADJUSTMENT", Quantity: testutil.D("61")}, "61", models.StockAdjustment, "1"},
		{"stock take to zero", AdjustmentRequest{Type: "ADJUSTMENT", Quantity: testutil.D("0")}, "0", models.StockAdjustment, "60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			flour := testutil.Inventory(t, h.db, "Flour", "60", "kg")
			tt.req.InventoryID = flour.ID
			tt.req.Reason = ptr("weekly count")

			result, err := h.inventory.Adjust(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Adjust: %v", err)
			}
			if !result.InventoryItem.Quantity.Equal(testutil.D(tt.wantQty)) {
				t.Errorf("result quantity = %s, want %s", result.InventoryItem.Quantity, tt.wantQty)
			}
			if got := testutil.Reload(t, h.db, flour.ID).Quantity; !got.Equal(testutil.D(tt.wantQty)) {
				t.Errorf("stored quantity = %s, want %s", got, tt.wantQty)
			}

			entry := result.HistoryEntry
			if entry.Type != string(tt.wantType) || !entry.Quantity.Equal(testutil.D(tt.wantAmount)) {
				t.Errorf("entry = %s %s, want %s %s", entry.Type, entry.Quantity, tt.wantType, tt.wantAmount)
			}
			if !entry.QuantityBefore.Equal(testutil.D("60")) || !entry.QuantityAfter.Equal(testutil.D(tt.wantQty)) {
				t.Errorf("entry before/after = %s/%s", entry.QuantityBefore, entry.QuantityAfter)
			}

			audit, err := h.inventory.Audit(context.Background(), flour.ID)
			if err != nil {
				t.Fatalf("Audit: %v", err)
			}
			if !audit.Consistent {
				t.Errorf("ledger drift %s after adjustment", audit.Drift)
			}
		})
	}
}

func TestAdjust_RestockSetsTimestamp(t *testing.T) {
	h := newHarness(t)
	flour := testutil.Inventory(t, h.db, "Flour", "60", "kg")

	result, err := h.inventory.Adjust(context.Background(), AdjustmentRequest{InventoryID: flour.ID, Type: "IN", Quantity: testutil.D("1")})
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if result.InventoryItem.LastRestockedAt == nil || !result.InventoryItem.LastRestockedAt.Equal(h.clock.Now()) {
		t.Errorf("last restocked = %v, want %v", result.InventoryItem.LastRestockedAt, h.clock.Now())
	}
	if got := len(h.events.ofType(messaging.EventInventoryAdjusted)); got != 1 {
		t.Errorf("inventory.adjusted events = %d, want 1", got)
	}
}

func TestAdjust_Rejected(t *testing.T) {
	h := newHarness(t)
	flour := testutil.Inventory(t, h.db, "Flour", "60", "kg")

	tests := []struct {
		name    string
		req     AdjustmentRequest
		wantErr interface{}
	}{
		{"out beyond stock", AdjustmentRequest{InventoryID: flour.ID, Type: "OUT", Quantity: testutil.D("61")}, &errs.InsufficientStockError{}},
		{"count equals stock", AdjustmentRequest{InventoryID: flour.ID, Type: "ADJUSTMENT", Quantity: testutil.D("60")}, &errs.ValidationError{}},
		{"zero restock", AdjustmentRequest{InventoryID: flour.ID, Type: "IN", Quantity: testutil.D("0")}, &errs.ValidationError{}},
		{"negative count", AdjustmentRequest{InventoryID: flour.ID, Type: "ADJUSTMENT", Quantity: testutil.D("-1")}, &errs.ValidationError{}},
		{"unknown type", AdjustmentRequest{InventoryID: flour.ID, Type: "LOSS", Quantity: testutil.D("1")}, &errs.ValidationError{}},
		{"unknown item", AdjustmentRequest{InventoryID: 999, Type: "IN", Quantity: testutil.D("1")}, &errs.NotFoundError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.inventory.Adjust(context.Background(), tt.req)
			if err == nil {
				t.Fatal("adjustment accepted")
			}
			var matched bool
			switch tt.wantErr.(type) {
			case *errs.InsufficientStockError:
				var target *errs.InsufficientStockError
				matched = errors.As(err, &target)
			case *errs.ValidationError:
				var target *errs.ValidationError
				matched = errors.As(err, &target)
			case *errs.NotFoundError:
				var target *errs.NotFoundError
				matched = errors.As(err, &target)
			}
			if !matched {
				t.Errorf("err = %T %v, want %T", err, err, tt.wantErr)
			}
		})
	}

	if got := testutil.Reload(t, h.db, flour.ID).Quantity; !got.Equal(testutil.D("60")) {
		t.Errorf("flour = %s, want untouched 60", got)
	}
	if n := len(ledgerEntries(t, h, flour.ID)); n != 1 {
		t.Errorf("ledger entries = %d, want 1", n)
	}
}

func TestCreateItem(t *testing.T) {
	h := newHarness(t)

	result, err := h.inventory.CreateItem(context.Background(), CreateInventoryRequest{
		Name:              " Mozzarella ",
		Unit:              "kg",
		Quantity:          testutil.D("12.5"),
		LowStockThreshold: testutil.D("2"),
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	item := result.InventoryItem
	if item.Name != "Mozzarella" || !item.Quantity.Equal(testutil.D("12.5")) {
		t.Errorf("item = %s %s", item.Name, item.Quantity)
	}
	if result.HistoryEntry == nil || result.HistoryEntry.Type != string(models.StockIn) {
		t.Fatalf("history entry = %+v, want initial IN", result.HistoryEntry)
	}

	audit, err := h.inventory.Audit(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if !audit.Consistent || audit.Entries != 1 {
		t.Errorf("audit = %+v, want one consistent entry", audit)
	}

	_, err = h.inventory.CreateItem(context.Background(), CreateInventoryRequest{Name: "Mozzarella", Unit: "kg"})
	var ce *errs.ConflictError
	if !errors.As(err, &ce) || ce.Code != errs.CodeDuplicate {
		t.Errorf("duplicate: err = %v, want duplicate conflict", err)
	}
}

func TestAudit_DetectsDrift(t *testing.T) {
	h := newHarness(t)
	flour := testutil.Inventory(t, h.db, "Flour", "60", "kg")

	// a write that bypasses the ledger
	h.db.Model(flour).Update("quantity", testutil.D("55"))

	audit, err := h.inventory.Audit(context.Background(), flour.ID)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if audit.Consistent || !audit.Drift.Equal(testutil.D("-5")) {
		t.Errorf("audit = %+v, want drift -5", audit)
	}
}

func TestHistoryAndLowStock(t *testing.T) {
	h := newHarness(t)
	flour := testutil.Inventory(t, h.db, "Flour", "60", "kg")
	yeast := testutil.Inventory(t, h.db, "Yeast", "1", "kg")
	h.db.Model(yeast).Update("low_stock_threshold", testutil.D("2"))

	for _, qty := range []string{"1", "2", "3"} {
		if _, err := h.inventory.Adjust(context.Background(), AdjustmentRequest{InventoryID: flour.ID, Type: "IN", Quantity: testutil.D(qty)}); err != nil {
			t.Fatalf("Adjust: %v", err)
		}
	}

	history, err := h.inventory.History(context.Background(), flour.ID, 2)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 || !history[0].Quantity.Equal(testutil.D("3")) {
		t.Errorf("history = %+v, want the two newest entries first", history)
	}
	if _, err := h.inventory.History(context.Background(), 999, 10); err == nil {
		t.Error("history of unknown item returned no error")
	}

	low, err := h.inventory.LowStock(context.Background())
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(low) != 1 || low[0].Name != "Yeast" {
		t.Errorf("low stock = %+v, want Yeast only", low)
	}
}
