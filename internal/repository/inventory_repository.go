package repository

import (
	"context"
	"restaurant_pos/internal/models"
	"time"

	"gorm.io/gorm"
)

type InventoryRepository interface {
	Create(ctx context.Context, item *models.InventoryItem) error
	GetByID(ctx context.Context, id uint) (*models.InventoryItem, error)
	GetForUpdate(ctx context.Context, id uint) (*models.InventoryItem, error)
	LockByIDs(ctx context.Context, ids []uint) ([]models.InventoryItem, error)
	SetQuantity(ctx context.Context, item *models.InventoryItem) error
	AppendHistory(ctx context.Context, entry *models.StockHistory) error
	History(ctx context.Context, inventoryID uint, limit int) ([]models.StockHistory, error)
	Ledger(ctx context.Context, inventoryID uint) ([]models.StockHistory, error)
	HasOrderEntries(ctx context.Context, orderID uint) (bool, error)
	LowStock(ctx context.Context) ([]models.InventoryItem, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *inventoryRepository) GetByID(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) GetForUpdate(ctx context.Context, id uint) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := forUpdate(r.db.WithContext(ctx)).First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// LockByIDs locks the rows in ascending id order so that concurrent reconciliations
// touching overlapping ingredients always acquire locks in the same order.
func (r *inventoryRepository) LockByIDs(ctx context.Context, ids []uint) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if len(ids) == 0 {
		return items, nil
	}
	err := forUpdate(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("id").
		Find(&items).Error
	return items, err
}

// SetQuantity persists quantity and restock time. Only the stock ledger calls it.
func (r *inventoryRepository) SetQuantity(ctx context.Context, item *models.InventoryItem) error {
	item.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Model(item).
		Select("quantity", "last_restocked_at", "updated_at").
		Updates(item).Error
}

func (r *inventoryRepository) AppendHistory(ctx context.Context, entry *models.StockHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *inventoryRepository) History(ctx context.Context, inventoryID uint, limit int) ([]models.StockHistory, error) {
	var entries []models.StockHistory
	query := r.db.WithContext(ctx).Where("inventory_item_id = ?", inventoryID).Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&entries).Error
	return entries, err
}

// Ledger returns every entry for the item, oldest first.
func (r *inventoryRepository) Ledger(ctx context.Context, inventoryID uint) ([]models.StockHistory, error) {
	var entries []models.StockHistory
	err := r.db.WithContext(ctx).Where("inventory_item_id = ?", inventoryID).Order("id").Find(&entries).Error
	return entries, err
}

func (r *inventoryRepository) HasOrderEntries(ctx context.Context, orderID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.StockHistory{}).
		Where("order_id = ? AND type = ?", orderID, string(models.StockOut)).
		Count(&count).Error
	return count > 0, err
}

func (r *inventoryRepository) LowStock(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.db.WithContext(ctx).Order("name").Find(&items).Error; err != nil {
		return nil, err
	}
	// decimal columns compare in Go; text affinity in some dialects breaks SQL comparison
	low := make([]models.InventoryItem, 0)
	for _, item := range items {
		if item.IsLowStock() {
			low = append(low, item)
		}
	}
	return low, nil
}
