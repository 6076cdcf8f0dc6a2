package services

import (
	"context"
	"sync"
	"testing"

	"restaurant_pos/internal/config"
	"restaurant_pos/internal/messaging"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/settings"
	"restaurant_pos/internal/testutil"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) ofType(eventType string) []messaging.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []messaging.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type sentMessage struct {
	phone   string
	message string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) SendText(_ context.Context, phone, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{phone: phone, message: message})
	return nil
}

type harness struct {
	db        *gorm.DB
	store     repository.Store
	clock     *testutil.Clock
	events    *recordingPublisher
	notifier  *recordingNotifier
	inventory InventoryService
	orders    OrderService
}

func newHarness(t *testing.T) *harness {
	return newHarnessWithPolicy(t, config.ReleaseOnClose)
}

func newHarnessWithPolicy(t *testing.T, policy string) *harness {
	t.Helper()
	return newHarnessOn(t, testutil.NewDB(t), policy)
}

func newHarnessOn(t *testing.T, db *gorm.DB, policy string) *harness {
	t.Helper()

	h := &harness{
		db:       db,
		store:    repository.NewStore(db),
		clock:    testutil.NewClock(),
		events:   &recordingPublisher{},
		notifier: &recordingNotifier{},
	}
	logger := zap.NewNop()
	h.inventory = NewInventoryService(h.store, h.events, h.clock, logger)
	h.orders = NewOrderService(
		h.store,
		settings.Fixed(decimal.NewFromInt(10)),
		h.inventory,
		h.events,
		h.notifier,
		h.clock,
		policy,
		logger,
	)
	return h
}

func line(menuItemID uint, quantity int) OrderLineRequest {
	return OrderLineRequest{MenuItemID: menuItemID, Quantity: quantity}
}

func takeaway(lines ...OrderLineRequest) CreateOrderRequest {
	return CreateOrderRequest{OrderType: "TAKEAWAY", Items: lines}
}

func dineIn(tableID uint, lines ...OrderLineRequest) CreateOrderRequest {
	return CreateOrderRequest{OrderType: "DINE_IN", TableID: &tableID, Items: lines}
}

// mustCreate places an order and fails the test on error.
func (h *harness) mustCreate(t *testing.T, req CreateOrderRequest) *OrderResult {
	t.Helper()
	result, err := h.orders.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return result
}

// advance walks the order through the given statuses.
func (h *harness) advance(t *testing.T, orderID uint, statuses ...string) *OrderResult {
	t.Helper()
	var result *OrderResult
	for _, status := range statuses {
		var err error
		result, err = h.orders.TransitionStatus(context.Background(), orderID, status)
		if err != nil {
			t.Fatalf("TransitionStatus(%s): %v", status, err)
		}
	}
	return result
}

// complete walks a takeaway or dine-in order from PENDING to COMPLETED.
func (h *harness) complete(t *testing.T, orderID uint) *OrderResult {
	t.Helper()
	return h.advance(t, orderID, "PREPARING", "READY", "COMPLETED")
}

func ptr[T any](v T) *T {
	return &v
}
