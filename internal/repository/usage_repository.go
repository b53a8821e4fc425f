package repository

import (
	"gorm.io/gorm"

	"plew-backend/internal/model"
)

type UsageRepository interface {
	Create(record *model.UsageRecord) error
	Totals() (totalCost float64, totalRequests int64, err error)
}

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

func (r *usageRepository) Create(record *model.UsageRecord) error {
	return r.db.Create(record).Error
}

// Totals aggregates the append-only usage table. The ceiling check reads
// this sum rather than an in-memory counter, so every instance of the
// backend sees the same spend.
func (r *usageRepository) Totals() (float64, int64, error) {
	var totalCost float64
	if err := r.db.Model(&model.UsageRecord{}).
		Select("COALESCE(SUM(cost_usd), 0)").
		Scan(&totalCost).Error; err != nil {
		return 0, 0, err
	}
	var totalRequests int64
	if err := r.db.Model(&model.UsageRecord{}).Count(&totalRequests).Error; err != nil {
		return 0, 0, err
	}
	return totalCost, totalRequests, nil
}
