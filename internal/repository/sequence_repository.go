package repository

import (
	"context"
	"restaurant_pos/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next increments the named counter and returns the new value. The UPDATE holds the
// row lock until the surrounding transaction ends, so two callers never share a value.
func (r *sequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	db := r.db.WithContext(ctx)

	for attempt := 0; attempt < 2; attempt++ {
		res := db.Model(&models.Sequence{}).
			Where("name = ?", name).
			Update("value", gorm.Expr("value + ?", 1))
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			var seq models.Sequence
			if err := db.Where("name = ?", name).First(&seq).Error; err != nil {
				return 0, err
			}
			return seq.Value, nil
		}

		// first use: create the row and try again
		err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Sequence{Name: name, Value: 0}).Error
		if err != nil {
			return 0, err
		}
	}
	return 0, gorm.ErrRecordNotFound
}
