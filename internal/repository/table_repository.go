package repository

import (
	"context"
	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type TableRepository interface {
	Create(ctx context.Context, table *models.Table) error
	GetForUpdate(ctx context.Context, id uint) (*models.Table, error)
	UpdateStatus(ctx context.Context, id uint, status models.TableStatus) error
}

type tableRepository struct {
	db *gorm.DB
}

func NewTableRepository(db *gorm.DB) TableRepository {
	return &tableRepository{db: db}
}

func (r *tableRepository) Create(ctx context.Context, table *models.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

// GetForUpdate locks the table row; order creation and merge for one table serialize on it.
func (r *tableRepository) GetForUpdate(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	err := forUpdate(r.db.WithContext(ctx)).First(&table, id).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepository) UpdateStatus(ctx context.Context, id uint, status models.TableStatus) error {
	return r.db.WithContext(ctx).Model(&models.Table{}).Where("id = ?", id).Update("status", string(status)).Error
}
