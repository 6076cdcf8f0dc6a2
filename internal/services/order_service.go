package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"restaurant_pos/internal/config"
	"restaurant_pos/internal/errs"
	"restaurant_pos/internal/messaging"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/observability"
	"restaurant_pos/internal/pricing"
	"restaurant_pos/internal/repository"
	"restaurant_pos/internal/settings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	orderNumberFormat = "ORD-%06d"
	notifyTimeout     = 10 * time.Second
	defaultListLimit  = 100
)

type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)
	TransitionStatus(ctx context.Context, orderID uint, newStatus string) (*OrderResult, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, status string, limit int) ([]models.Order, error)
	ReleaseTable(ctx context.Context, tableID uint) (*models.Table, error)
}

type orderService struct {
	store         repository.Store
	taxRates      settings.TaxRateProvider
	inventory     InventoryService
	publisher     messaging.Publisher
	notifier      Notifier
	clock         Clock
	releasePolicy string
	logger        *zap.Logger
	tracer        trace.Tracer
}

// NewOrderService wires the order workflow. notifier may be nil.
func NewOrderService(
	store repository.Store,
	taxRates settings.TaxRateProvider,
	inventory InventoryService,
	publisher messaging.Publisher,
	notifier Notifier,
	clock Clock,
	releasePolicy string,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		store:         store,
		taxRates:      taxRates,
		inventory:     inventory,
		publisher:     publisher,
		notifier:      notifier,
		clock:         clock,
		releasePolicy: releasePolicy,
		logger:        logger,
		tracer:        observability.Tracer(),
	}
}

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	if err := ValidateCreateOrder(&req); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "order.create", trace.WithAttributes(
		attribute.String("order.type", req.OrderType),
		attribute.Int("order.lines", len(req.Items)),
	))
	defer span.End()

	taxRate := s.taxRates.CurrentTaxRate(ctx)

	var (
		result *OrderResult
		err    error
	)
	// a concurrent creator for the same table can still win the partial unique index;
	// the second attempt then finds its order and merges
	for attempt := 0; attempt < 2; attempt++ {
		result, err = s.createOrMerge(ctx, req, taxRate)
		if err == nil || !repository.IsUniqueViolation(err) {
			break
		}
		s.logger.Info("order create raced, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	if err != nil {
		if repository.IsUniqueViolation(err) {
			err = errs.Conflict(errs.CodeOpenOrderExists, "table already has an open order, please retry")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "order create failed")
		if !errs.IsBusiness(err) {
			s.logger.Error("order create failed", zap.Error(err))
		}
		return nil, errs.Persistence("create order", err)
	}

	span.SetAttributes(
		attribute.String("order.number", result.Order.OrderNumber),
		attribute.Bool("order.merged", result.Merged),
	)
	s.logger.Info(result.Message,
		zap.Uint("order_id", result.Order.ID),
		zap.String("order_number", result.Order.OrderNumber),
		zap.Bool("merged", result.Merged),
		zap.String("total", result.Order.Total.String()),
	)

	eventType := messaging.EventOrderCreated
	if result.Merged {
		eventType = messaging.EventOrderItemsAdded
	}
	s.publish(ctx, eventType, statusPayload(result.Order, ""))
	return result, nil
}

func (s *orderService) createOrMerge(ctx context.Context, req CreateOrderRequest, taxRate decimal.Decimal) (*OrderResult, error) {
	var result *OrderResult
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		lines, err := s.priceLines(ctx, tx, req.Items)
		if err != nil {
			return err
		}

		if models.OrderType(req.OrderType) == models.DineIn {
			table, err := tx.Tables().GetForUpdate(ctx, *req.TableID)
			if err != nil {
				if repository.IsNotFound(err) {
					return errs.Validation("tableId", "table %d does not exist", *req.TableID)
				}
				return err
			}

			open, err := tx.Orders().FindOpenByTable(ctx, table.ID)
			if err != nil {
				return err
			}
			if open != nil {
				result, err = s.merge(ctx, tx, open, req, lines, taxRate)
				return err
			}

			result, err = s.create(ctx, tx, req, lines, taxRate)
			if err != nil {
				return err
			}
			return tx.Tables().UpdateStatus(ctx, table.ID, models.TableOccupied)
		}

		result, err = s.create(ctx, tx, req, lines, taxRate)
		return err
	})
	return result, err
}

// priceLines snapshots each line's unit price: the submitted price, or the menu price.
func (s *orderService) priceLines(ctx context.Context, tx repository.Store, reqLines []OrderLineRequest) ([]models.OrderItem, error) {
	ids := make([]uint, 0, len(reqLines))
	seen := make(map[uint]bool, len(reqLines))
	for _, l := range reqLines {
		if !seen[l.MenuItemID] {
			seen[l.MenuItemID] = true
			ids = append(ids, l.MenuItemID)
		}
	}

	menu, err := tx.Menu().GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	items := make([]models.OrderItem, 0, len(reqLines))
	for _, l := range reqLines {
		m, ok := byID[l.MenuItemID]
		if !ok {
			return nil, errs.Validation("items", "menu item %d does not exist", l.MenuItemID)
		}
		if !m.IsAvailable {
			return nil, errs.Validation("items", "%s is not available", m.Name)
		}

		price := m.Price
		if l.UnitPrice != nil {
			price = *l.UnitPrice
		}
		items = append(items, models.OrderItem{
			MenuItemID: m.ID,
			Quantity:   l.Quantity,
			UnitPrice:  price,
			Subtotal:   pricing.Subtotal([]pricing.Line{{UnitPrice: price, Quantity: l.Quantity}}),
			Note:       l.Note,
		})
	}
	return items, nil
}

func (s *orderService) create(ctx context.Context, tx repository.Store, req CreateOrderRequest, items []models.OrderItem, taxRate decimal.Decimal) (*OrderResult, error) {
	seq, err := tx.Sequences().Next(ctx, models.OrderNumberSequence)
	if err != nil {
		return nil, err
	}

	fee := decimal.Zero
	if req.DeliveryFee != nil {
		fee = *req.DeliveryFee
	}
	discount := pricing.Discount{}
	if req.Discount != nil {
		discount = *req.Discount
	}
	breakdown := pricing.Quote(toLines(items), discount, taxRate, fee)

	now := s.clock.Now()
	order := &models.Order{
		OrderNumber:     fmt.Sprintf(orderNumberFormat, seq),
		OrderType:       req.OrderType,
		Status:          string(models.OrderPending),
		TableID:         req.TableID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		DeliveryAddress: req.DeliveryAddress,
		DeliveryNote:    req.DeliveryNote,
		TaxRate:         taxRate,
		PaymentStatus:   string(models.PaymentPending),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	applyBreakdown(order, breakdown)
	applyPayment(order, req.PaymentMethod)

	if err := tx.Orders().Create(ctx, order); err != nil {
		return nil, err
	}
	if err := s.saveItems(ctx, tx, order.ID, items, now); err != nil {
		return nil, err
	}

	saved, err := tx.Orders().GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{
		Order:   saved,
		Message: fmt.Sprintf("order %s created", saved.OrderNumber),
	}, nil
}

// merge appends items to the table's open order and recomputes totals over the union.
// A discount in the merge request is resolved against the combined subtotal and replaces
// the stored amount. Without one the stored amount stands as it was resolved.
func (s *orderService) merge(ctx context.Context, tx repository.Store, order *models.Order, req CreateOrderRequest, items []models.OrderItem, taxRate decimal.Decimal) (*OrderResult, error) {
	existing, err := tx.OrderItems().GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	union := toLines(append(existing, items...))
	discount := order.Discount
	if req.Discount != nil {
		discount = pricing.ResolveDiscount(*req.Discount, pricing.Subtotal(union))
	}
	breakdown := pricing.Calculate(union, discount, taxRate, order.DeliveryFee)

	now := s.clock.Now()
	order.TaxRate = taxRate
	order.UpdatedAt = now
	applyBreakdown(order, breakdown)
	applyPayment(order, req.PaymentMethod)

	if err := s.saveItems(ctx, tx, order.ID, items, now); err != nil {
		return nil, err
	}
	if err := tx.Orders().UpdateTotals(ctx, order); err != nil {
		return nil, err
	}

	saved, err := tx.Orders().GetByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return &OrderResult{
		Order:   saved,
		Merged:  true,
		Message: fmt.Sprintf("items added to order %s", saved.OrderNumber),
	}, nil
}

func (s *orderService) saveItems(ctx context.Context, tx repository.Store, orderID uint, items []models.OrderItem, at time.Time) error {
	for i := range items {
		items[i].OrderID = orderID
		items[i].CreatedAt = at
	}
	return tx.OrderItems().CreateBatch(ctx, items)
}

func (s *orderService) TransitionStatus(ctx context.Context, orderID uint, newStatus string) (*OrderResult, error) {
	target := models.OrderStatus(strings.ToUpper(strings.TrimSpace(newStatus)))
	if !IsKnownStatus(target) {
		return nil, errs.Validation("newStatus", "unknown status %q", newStatus)
	}

	ctx, span := s.tracer.Start(ctx, "order.transition", trace.WithAttributes(
		attribute.Int("order.id", int(orderID)),
		attribute.String("order.status.target", string(target)),
	))
	defer span.End()

	var (
		result    *OrderResult
		oldStatus string
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		order, err := lockOrder(ctx, tx, orderID)
		if err != nil {
			return err
		}
		oldStatus = order.Status

		from := models.OrderStatus(order.Status)
		if !CanTransition(models.OrderType(order.OrderType), from, target) {
			return errs.Conflict(errs.CodeInvalidTransition, "cannot move order %s from %s to %s", order.OrderNumber, from, target)
		}

		var recon *ReconciliationResult
		if target == models.OrderCompleted {
			recon, err = s.inventory.reconcileTx(ctx, tx, order)
			if err != nil {
				return err
			}
		}

		now := s.clock.Now()
		order.Status = string(target)
		order.UpdatedAt = now
		switch target {
		case models.OrderCompleted:
			order.CompletedAt = &now
		case models.OrderCancelled:
			order.CancelledAt = &now
		}
		if err := tx.Orders().UpdateStatus(ctx, order); err != nil {
			return err
		}

		if order.IsTerminal() && order.TableID != nil && s.releasePolicy != config.ReleaseManual {
			if err := releaseIfFree(ctx, tx, *order.TableID); err != nil {
				return err
			}
		}

		saved, err := tx.Orders().GetByID(ctx, order.ID)
		if err != nil {
			return err
		}
		result = &OrderResult{
			Order:          saved,
			Message:        fmt.Sprintf("order %s is now %s", saved.OrderNumber, saved.Status),
			Reconciliation: recon,
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transition failed")
		if !errs.IsBusiness(err) {
			s.logger.Error("order transition failed", zap.Uint("order_id", orderID), zap.Error(err))
		}
		return nil, errs.Persistence("transition order", err)
	}

	s.logger.Info("order status changed",
		zap.Uint("order_id", result.Order.ID),
		zap.String("order_number", result.Order.OrderNumber),
		zap.String("from", oldStatus),
		zap.String("to", result.Order.Status),
	)
	s.publish(ctx, messaging.EventOrderStatusChanged, statusPayload(result.Order, oldStatus))
	if result.Reconciliation != nil {
		s.inventory.announceLowStock(ctx, result.Reconciliation.lowStock)
	}
	s.notifyCustomer(ctx, result.Order)
	return result, nil
}

// lockOrder takes the order's table row before the order row, the same order create and
// merge lock them in. An order never changes table, so the unlocked read is safe.
func lockOrder(ctx context.Context, tx repository.Store, orderID uint) (*models.Order, error) {
	current, err := tx.Orders().GetByID(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errs.NotFound("order", orderID)
		}
		return nil, err
	}
	if current.TableID != nil {
		if _, err := tx.Tables().GetForUpdate(ctx, *current.TableID); err != nil {
			return nil, err
		}
	}
	return tx.Orders().GetForUpdate(ctx, orderID)
}

// releaseIfFree returns the table to AVAILABLE once no open order is attached to it.
func releaseIfFree(ctx context.Context, tx repository.Store, tableID uint) error {
	open, err := tx.Orders().CountOpenByTable(ctx, tableID)
	if err != nil {
		return err
	}
	if open > 0 {
		return nil
	}
	return tx.Tables().UpdateStatus(ctx, tableID, models.TableAvailable)
}

func (s *orderService) ReleaseTable(ctx context.Context, tableID uint) (*models.Table, error) {
	var table *models.Table
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		table, err = tx.Tables().GetForUpdate(ctx, tableID)
		if err != nil {
			if repository.IsNotFound(err) {
				return errs.NotFound("table", tableID)
			}
			return err
		}

		open, err := tx.Orders().CountOpenByTable(ctx, tableID)
		if err != nil {
			return err
		}
		if open > 0 {
			return errs.Conflict(errs.CodeOpenOrderExists, "table %d still has an open order", table.Number)
		}

		if err := tx.Tables().UpdateStatus(ctx, tableID, models.TableAvailable); err != nil {
			return err
		}
		table.Status = string(models.TableAvailable)
		return nil
	})
	if err != nil {
		return nil, errs.Persistence("release table", err)
	}
	s.logger.Info("table released", zap.Uint("table_id", table.ID), zap.Int("number", table.Number))
	return table, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.store.Orders().GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errs.NotFound("order", id)
		}
		return nil, errs.Persistence("get order", err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, status string, limit int) ([]models.Order, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if status != "" && !IsKnownStatus(models.OrderStatus(status)) {
		return nil, errs.Validation("status", "unknown status %q", status)
	}
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	orders, err := s.store.Orders().List(ctx, status, limit)
	if err != nil {
		return nil, errs.Persistence("list orders", err)
	}
	return orders, nil
}

func (s *orderService) notifyCustomer(ctx context.Context, order *models.Order) {
	if s.notifier == nil || isBlank(order.CustomerPhone) {
		return
	}
	message, ok := customerNotice(order)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := s.notifier.SendText(ctx, *order.CustomerPhone, message); err != nil {
		s.logger.Warn("customer notification failed",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
}

func (s *orderService) publish(ctx context.Context, eventType string, payload interface{}) {
	err := s.publisher.Publish(ctx, messaging.NewEvent(eventType, s.clock.Now(), payload))
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("event publish failed", zap.String("type", eventType), zap.Error(err))
	}
}

func statusPayload(order *models.Order, oldStatus string) messaging.OrderStatusPayload {
	return messaging.OrderStatusPayload{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OrderType:   order.OrderType,
		OldStatus:   oldStatus,
		NewStatus:   order.Status,
		TableID:     order.TableID,
	}
}

func toLines(items []models.OrderItem) []pricing.Line {
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, pricing.Line{UnitPrice: item.UnitPrice, Quantity: item.Quantity})
	}
	return lines
}

func applyBreakdown(order *models.Order, b pricing.Breakdown) {
	order.Subtotal = b.Subtotal
	order.Discount = b.Discount
	order.Tax = b.Tax
	order.DeliveryFee = b.DeliveryFee
	order.Total = b.Total
}

func applyPayment(order *models.Order, method *string) {
	if method == nil {
		return
	}
	order.PaymentMethod = method
	order.PaymentStatus = string(models.PaymentPaid)
}
