// Package settings exposes the configured tax rate to the order workflow.
package settings

import (
	"context"
	"errors"
	"time"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/redis"
	"restaurant_pos/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TaxRateProvider interface {
	CurrentTaxRate(ctx context.Context) decimal.Decimal
}

// Cache is the subset of the redis client the provider needs.
type Cache interface {
	GetTaxRate(ctx context.Context) (decimal.Decimal, error)
	SetTaxRate(ctx context.Context, rate decimal.Decimal, ttl time.Duration) error
	InvalidateTaxRate(ctx context.Context) error
}

type Service struct {
	financialRepo repository.FinancialRepository
	cache         Cache
	ttl           time.Duration
	fallback      decimal.Decimal
	logger        *zap.Logger
}

// NewService builds the provider. cache may be nil.
func NewService(financialRepo repository.FinancialRepository, cache Cache, ttl time.Duration, fallback decimal.Decimal, logger *zap.Logger) *Service {
	return &Service{
		financialRepo: financialRepo,
		cache:         cache,
		ttl:           ttl,
		fallback:      fallback,
		logger:        logger,
	}
}

// CurrentTaxRate never fails: cache, then the settings table, then the fallback rate.
func (s *Service) CurrentTaxRate(ctx context.Context) decimal.Decimal {
	if s.cache != nil {
		rate, err := s.cache.GetTaxRate(ctx)
		if err == nil {
			return rate
		}
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("tax rate cache read failed", zap.Error(err))
		}
	}

	setting, err := s.financialRepo.GetSettings(ctx, models.TaxRateSetting)
	if err != nil {
		s.logger.Warn("tax rate unavailable, using fallback",
			zap.Error(err),
			zap.String("fallback", s.fallback.String()),
		)
		return s.fallback
	}

	if s.cache != nil {
		if err := s.cache.SetTaxRate(ctx, setting.PercentageValue, s.ttl); err != nil {
			s.logger.Warn("tax rate cache write failed", zap.Error(err))
		}
	}
	return setting.PercentageValue
}

// UpdateTaxRate stores a new rate and drops the cached value.
func (s *Service) UpdateTaxRate(ctx context.Context, rate decimal.Decimal, updatedBy uint) (*models.FinancialSettings, error) {
	setting, err := s.financialRepo.GetSettings(ctx, models.TaxRateSetting)
	if err != nil {
		if !repository.IsNotFound(err) {
			return nil, err
		}
		setting = &models.FinancialSettings{SettingName: models.TaxRateSetting, IsActive: true, CreatedBy: updatedBy}
		setting.PercentageValue = rate
		if err := s.financialRepo.CreateSettings(ctx, setting); err != nil {
			return nil, err
		}
	} else {
		setting.PercentageValue = rate
		if err := s.financialRepo.UpdateSettings(ctx, setting); err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		if err := s.cache.InvalidateTaxRate(ctx); err != nil {
			s.logger.Warn("tax rate cache invalidation failed", zap.Error(err))
		}
	}
	return setting, nil
}

// Fixed is a provider that always returns the same rate.
type Fixed decimal.Decimal

func (f Fixed) CurrentTaxRate(context.Context) decimal.Decimal {
	return decimal.Decimal(f)
}
