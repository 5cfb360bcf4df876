package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"solarops/fieldstore/internal/models"
)

// PerformanceRepository handles daily generation records.
type PerformanceRepository struct {
	db *gorm.DB
}

func NewPerformanceRepository(db *gorm.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// PerformanceFilter narrows List queries.
type PerformanceFilter struct {
	SiteID          *string
	Status          *string
	FromDate        *string
	ToDate          *string
	ArchivedOnly    bool
	IncludeArchived bool
	Limit           int
}

// CreateBatch bulk-inserts records, used by the seed pipeline.
func (r *PerformanceRepository) CreateBatch(ctx context.Context, records []models.PerformanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
	}
	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("failed to insert performance records: %w", err)
	}
	return nil
}

// List returns records newest first. Date bounds are inclusive and
// compare lexically, which is exact for YYYY-MM-DD keys.
func (r *PerformanceRepository) List(ctx context.Context, filter PerformanceFilter) ([]models.PerformanceRecord, error) {
	q := r.db.WithContext(ctx).Model(&models.PerformanceRecord{})
	if filter.ArchivedOnly {
		q = q.Where("archived = ?", true)
	} else if !filter.IncludeArchived {
		q = q.Where("archived = ?", false)
	}
	if filter.SiteID != nil {
		q = q.Where("site_id = ?", *filter.SiteID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		q = q.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("date <= ?", *filter.ToDate)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var records []models.PerformanceRecord
	if err := q.Order("date DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list performance records: %w", err)
	}
	return records, nil
}

// Count returns the total number of performance rows, archived included.
func (r *PerformanceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PerformanceRecord{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count performance records: %w", err)
	}
	return count, nil
}
