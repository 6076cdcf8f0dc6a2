package repository

import (
	"context"
	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetForUpdate(ctx context.Context, id uint) (*models.Order, error)
	FindOpenByTable(ctx context.Context, tableID uint) (*models.Order, error)
	CountOpenByTable(ctx context.Context, tableID uint) (int64, error)
	UpdateTotals(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, order *models.Order) error
	List(ctx context.Context, status string, limit int) ([]models.Order, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetForUpdate locks the order row for the rest of the transaction.
func (r *orderRepository) GetForUpdate(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := forUpdate(r.db.WithContext(ctx)).First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindOpenByTable returns the table's open order, or nil when there is none.
func (r *orderRepository) FindOpenByTable(ctx context.Context, tableID uint) (*models.Order, error) {
	var orders []models.Order
	err := forUpdate(r.db.WithContext(ctx)).
		Where("table_id = ? AND status IN ?", tableID, models.OpenOrderStatuses).
		Order("id").
		Limit(1).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return &orders[0], nil
}

// CountOpenByTable counts orders attached to the table that are not yet completed or cancelled.
func (r *orderRepository) CountOpenByTable(ctx context.Context, tableID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("table_id = ? AND status NOT IN ?", tableID, []string{
			string(models.OrderCompleted),
			string(models.OrderCancelled),
		}).
		Count(&count).Error
	return count, err
}

func (r *orderRepository) UpdateTotals(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Model(order).
		Select("subtotal", "discount", "tax_rate", "tax", "delivery_fee", "total", "payment_method", "payment_status", "updated_at").
		Updates(order).Error
}

func (r *orderRepository) UpdateStatus(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Model(order).
		Select("status", "completed_at", "cancelled_at", "updated_at").
		Updates(order).Error
}

func (r *orderRepository) List(ctx context.Context, status string, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.WithContext(ctx).Preload("Items").Order("id DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&orders).Error
	return orders, err
}
