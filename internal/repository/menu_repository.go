package repository

import (
	"context"
	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type MenuRepository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	GetByIDs(ctx context.Context, ids []uint) ([]models.MenuItem, error)
	SetAvailability(ctx context.Context, id uint, available bool) error
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

// Create stores the menu item together with its ingredients.
func (r *menuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *menuRepository) GetByIDs(ctx context.Context, ids []uint) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error
	return items, err
}

func (r *menuRepository) SetAvailability(ctx context.Context, id uint, available bool) error {
	return r.db.WithContext(ctx).Model(&models.MenuItem{}).Where("id = ?", id).Update("is_available", available).Error
}
