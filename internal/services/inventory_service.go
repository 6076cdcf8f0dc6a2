package services

import (
	"context"
	"fmt"
	"sort"

	"restaurant_pos/internal/errs"
	"restaurant_pos/internal/messaging"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/observability"
	"restaurant_pos/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type InventoryService interface {
	Reconcile(ctx context.Context, orderID uint) (*ReconciliationResult, error)
	Adjust(ctx context.Context, req AdjustmentRequest) (*AdjustmentResult, error)
	CreateItem(ctx context.Context, req CreateInventoryRequest) (*AdjustmentResult, error)
	GetItem(ctx context.Context, id uint) (*models.InventoryItem, error)
	History(ctx context.Context, inventoryID uint, limit int) ([]models.StockHistory, error)
	Audit(ctx context.Context, inventoryID uint) (*LedgerAudit, error)
	LowStock(ctx context.Context) ([]models.InventoryItem, error)

	reconciler
}

// reconciler deducts an order's ingredients inside a caller-owned transaction.
type reconciler interface {
	reconcileTx(ctx context.Context, tx repository.Store, order *models.Order) (*ReconciliationResult, error)
	announceLowStock(ctx context.Context, items []models.InventoryItem)
}

type inventoryService struct {
	store     repository.Store
	publisher messaging.Publisher
	clock     Clock
	logger    *zap.Logger
	tracer    trace.Tracer
}

func NewInventoryService(store repository.Store, publisher messaging.Publisher, clock Clock, logger *zap.Logger) InventoryService {
	return &inventoryService{
		store:     store,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
		tracer:    observability.Tracer(),
	}
}

// Reconcile reports the deduction of a completed order. Ingredients are deducted only
// by the COMPLETED transition, so an open order is refused rather than deducted early.
func (s *inventoryService) Reconcile(ctx context.Context, orderID uint) (*ReconciliationResult, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.reconcile", trace.WithAttributes(attribute.Int("order.id", int(orderID))))
	defer span.End()

	order, err := s.store.Orders().GetByID(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errs.NotFound("order", orderID)
		}
		return nil, errs.Persistence("reconcile order", err)
	}

	switch models.OrderStatus(order.Status) {
	case models.OrderCompleted:
	case models.OrderCancelled:
		err = errs.Conflict(errs.CodeOrderClosed, "order %s was cancelled and cannot be reconciled", order.OrderNumber)
	default:
		err = errs.Conflict(errs.CodeNotCompleted, "order %s is %s, ingredients are deducted when it is completed", order.OrderNumber, order.Status)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reconciliation refused")
		return nil, err
	}

	result, err := s.reconcileTx(ctx, s.store, order)
	if err != nil {
		return nil, errs.Persistence("reconcile order", err)
	}
	return result, nil
}

func (s *inventoryService) reconcileTx(ctx context.Context, tx repository.Store, order *models.Order) (*ReconciliationResult, error) {
	result := &ReconciliationResult{
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		Deductions:        []Deduction{},
		InsufficientItems: []errs.Shortfall{},
	}

	if order.Status == string(models.OrderCompleted) {
		result.OK = true
		result.AlreadyReconciled = true
		result.Message = fmt.Sprintf("order %s was already reconciled", order.OrderNumber)
		return result, nil
	}
	done, err := tx.Inventory().HasOrderEntries(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	if done {
		result.OK = true
		result.AlreadyReconciled = true
		result.Message = fmt.Sprintf("order %s was already reconciled", order.OrderNumber)
		return result, nil
	}

	lines, err := tx.OrderItems().GetWithIngredients(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	// one inventory item may feed several menu items in the same order
	required := make(map[uint]decimal.Decimal)
	for _, line := range lines {
		if line.MenuItem == nil {
			return nil, errs.NotFound("menu item", line.MenuItemID)
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		for _, ing := range line.MenuItem.Ingredients {
			required[ing.InventoryItemID] = required[ing.InventoryItemID].Add(ing.QuantityPerUnit.Mul(qty))
		}
	}

	ids := make([]uint, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items, err := tx.Inventory().LockByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(items) != len(ids) {
		found := make(map[uint]bool, len(items))
		for _, item := range items {
			found[item.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, errs.NotFound("inventory item", id)
			}
		}
	}

	for _, item := range items {
		need := required[item.ID]
		if need.GreaterThan(item.Quantity) {
			result.InsufficientItems = append(result.InsufficientItems, errs.Shortfall{
				InventoryItemID: item.ID,
				ItemName:        item.Name,
				Required:        need,
				Available:       item.Quantity,
				Unit:            item.Unit,
			})
		}
	}
	if len(result.InsufficientItems) > 0 {
		result.Message = fmt.Sprintf("not enough stock to complete order %s", order.OrderNumber)
		return result, &errs.InsufficientStockError{Items: result.InsufficientItems}
	}

	now := s.clock.Now()
	reason := fmt.Sprintf("order %s", order.OrderNumber)
	for i := range items {
		item := &items[i]
		need := required[item.ID]
		wasLow := item.IsLowStock()

		_, err := appendLedger(ctx, tx, item, ledgerEntry{
			Type:     models.StockOut,
			After:    item.Quantity.Sub(need),
			Reason:   strPtr(reason),
			OrderID:  &order.ID,
			Occurred: now,
		})
		if err != nil {
			return nil, err
		}

		result.Deductions = append(result.Deductions, Deduction{
			InventoryItemID: item.ID,
			ItemName:        item.Name,
			Quantity:        need,
			Remaining:       item.Quantity,
			Unit:            item.Unit,
		})
		if !wasLow && item.IsLowStock() {
			result.lowStock = append(result.lowStock, *item)
		}
	}

	result.OK = true
	result.Message = fmt.Sprintf("deducted %d ingredients for order %s", len(result.Deductions), order.OrderNumber)
	return result, nil
}

func (s *inventoryService) Adjust(ctx context.Context, req AdjustmentRequest) (*AdjustmentResult, error) {
	if err := ValidateAdjustment(&req); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "inventory.adjust", trace.WithAttributes(
		attribute.Int("inventory.id", int(req.InventoryID)),
		attribute.String("inventory.movement", req.Type),
	))
	defer span.End()

	var (
		result   *AdjustmentResult
		crossed  bool
		movement = models.StockMovementType(req.Type)
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		item, err := tx.Inventory().GetForUpdate(ctx, req.InventoryID)
		if err != nil {
			if repository.IsNotFound(err) {
				return errs.NotFound("inventory item", req.InventoryID)
			}
			return err
		}

		var after decimal.Decimal
		switch movement {
		case models.StockIn:
			after = item.Quantity.Add(req.Quantity)
		case models.StockOut:
			if req.Quantity.GreaterThan(item.Quantity) {
				return &errs.InsufficientStockError{Items: []errs.Shortfall{{
					InventoryItemID: item.ID,
					ItemName:        item.Name,
					Required:        req.Quantity,
					Available:       item.Quantity,
					Unit:            item.Unit,
				}}}
			}
			after = item.Quantity.Sub(req.Quantity)
		case models.StockAdjustment:
			if req.Quantity.Equal(item.Quantity) {
				return errs.Validation("quantity", "counted quantity matches the current stock of %s", item.Name)
			}
			after = req.Quantity
		}

		wasLow := item.IsLowStock()
		entry, err := appendLedger(ctx, tx, item, ledgerEntry{
			Type:     movement,
			After:    after,
			Reason:   req.Reason,
			Occurred: s.clock.Now(),
		})
		if err != nil {
			return err
		}
		crossed = !wasLow && item.IsLowStock()

		result = &AdjustmentResult{
			InventoryItem: item,
			HistoryEntry:  entry,
			Message:       fmt.Sprintf("%s stock is now %s %s", item.Name, item.Quantity, item.Unit),
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "adjustment failed")
		return nil, errs.Persistence("adjust inventory", err)
	}

	s.publish(ctx, messaging.EventInventoryAdjusted, result.HistoryEntry)
	if crossed {
		s.announceLowStock(ctx, []models.InventoryItem{*result.InventoryItem})
	}
	return result, nil
}

// CreateItem registers a new inventory item. Its opening quantity enters through the ledger.
func (s *inventoryService) CreateItem(ctx context.Context, req CreateInventoryRequest) (*AdjustmentResult, error) {
	if err := ValidateCreateInventory(&req); err != nil {
		return nil, err
	}

	var result *AdjustmentResult
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		item := &models.InventoryItem{
			Name:              req.Name,
			Quantity:          decimal.Zero,
			Unit:              req.Unit,
			LowStockThreshold: req.LowStockThreshold,
			CostPerUnit:       req.CostPerUnit,
			Supplier:          req.Supplier,
		}
		if err := tx.Inventory().Create(ctx, item); err != nil {
			if repository.IsUniqueViolation(err) {
				return errs.Conflict(errs.CodeDuplicate, "inventory item %q already exists", req.Name)
			}
			return err
		}

		result = &AdjustmentResult{
			InventoryItem: item,
			Message:       fmt.Sprintf("%s added to inventory", item.Name),
		}
		if !req.Quantity.IsPositive() {
			return nil
		}

		entry, err := appendLedger(ctx, tx, item, ledgerEntry{
			Type:     models.StockIn,
			After:    req.Quantity,
			Reason:   strPtr("initial stock"),
			Occurred: s.clock.Now(),
		})
		if err != nil {
			return err
		}
		result.HistoryEntry = entry
		return nil
	})
	if err != nil {
		return nil, errs.Persistence("create inventory item", err)
	}
	return result, nil
}

func (s *inventoryService) GetItem(ctx context.Context, id uint) (*models.InventoryItem, error) {
	item, err := s.store.Inventory().GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, errs.NotFound("inventory item", id)
		}
		return nil, errs.Persistence("get inventory item", err)
	}
	return item, nil
}

func (s *inventoryService) History(ctx context.Context, inventoryID uint, limit int) ([]models.StockHistory, error) {
	if _, err := s.GetItem(ctx, inventoryID); err != nil {
		return nil, err
	}
	entries, err := s.store.Inventory().History(ctx, inventoryID, limit)
	if err != nil {
		return nil, errs.Persistence("stock history", err)
	}
	return entries, nil
}

// Audit checks that the on-hand quantity equals the signed sum of the ledger.
func (s *inventoryService) Audit(ctx context.Context, inventoryID uint) (*LedgerAudit, error) {
	item, err := s.GetItem(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.Inventory().Ledger(ctx, inventoryID)
	if err != nil {
		return nil, errs.Persistence("stock ledger", err)
	}

	balance := ledgerBalance(entries)
	audit := &LedgerAudit{
		InventoryItemID: item.ID,
		Quantity:        item.Quantity,
		LedgerBalance:   balance,
		Drift:           item.Quantity.Sub(balance),
		Entries:         len(entries),
	}
	audit.Consistent = audit.Drift.IsZero()
	if !audit.Consistent {
		s.logger.Error("stock ledger drift detected",
			zap.Uint("inventory_item_id", item.ID),
			zap.String("quantity", item.Quantity.String()),
			zap.String("ledger_balance", balance.String()),
		)
	}
	return audit, nil
}

func (s *inventoryService) LowStock(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.store.Inventory().LowStock(ctx)
	if err != nil {
		return nil, errs.Persistence("low stock", err)
	}
	return items, nil
}

func (s *inventoryService) announceLowStock(ctx context.Context, items []models.InventoryItem) {
	for _, item := range items {
		s.logger.Warn("inventory item below threshold",
			zap.Uint("inventory_item_id", item.ID),
			zap.String("name", item.Name),
			zap.String("quantity", item.Quantity.String()),
		)
		s.publish(ctx, messaging.EventInventoryLowStock, messaging.LowStockPayload{
			InventoryItemID: item.ID,
			Name:            item.Name,
			Quantity:        item.Quantity.String(),
			Threshold:       item.LowStockThreshold.String(),
			Unit:            item.Unit,
		})
	}
}

func (s *inventoryService) publish(ctx context.Context, eventType string, payload interface{}) {
	if err := s.publisher.Publish(ctx, messaging.NewEvent(eventType, s.clock.Now(), payload)); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", eventType), zap.Error(err))
	}
}
