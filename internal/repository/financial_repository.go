package repository

import (
	"context"
	"restaurant_pos/internal/models"

	"gorm.io/gorm"
)

type FinancialRepository interface {
	CreateSettings(ctx context.Context, settings *models.FinancialSettings) error
	GetSettings(ctx context.Context, settingName string) (*models.FinancialSettings, error)
	UpdateSettings(ctx context.Context, settings *models.FinancialSettings) error
}

type financialRepository struct {
	db *gorm.DB
}

func NewFinancialRepository(db *gorm.DB) FinancialRepository {
	return &financialRepository{db: db}
}

func (r *financialRepository) CreateSettings(ctx context.Context, settings *models.FinancialSettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *financialRepository) GetSettings(ctx context.Context, settingName string) (*models.FinancialSettings, error) {
	var settings models.FinancialSettings
	err := r.db.WithContext(ctx).
		Where("setting_name = ? AND is_active = ?", settingName, true).
		Order("id DESC").
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *financialRepository) UpdateSettings(ctx context.Context, settings *models.FinancialSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
