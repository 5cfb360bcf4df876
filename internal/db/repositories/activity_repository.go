package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/models"
)

// ActivityRepository handles the append-only activity feed. Rows are
// immutable after creation except for the archived and synced flags.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// ActivityFilter narrows List queries.
type ActivityFilter struct {
	Type            *string
	SiteID          *string
	UserID          *string
	ArchivedOnly    bool
	IncludeArchived bool
	Limit           int
}

// Create appends an activity row.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// GetByID retrieves an activity by its ID
func (r *ActivityRepository) GetByID(ctx context.Context, activityID string) (*models.Activity, error) {
	var activity models.Activity
	err := r.db.WithContext(ctx).Where("id = ?", activityID).First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("activity %s: %w", activityID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch activity: %w", err)
	}
	return &activity, nil
}

// List returns activities newest first.
func (r *ActivityRepository) List(ctx context.Context, filter ActivityFilter) ([]models.Activity, error) {
	q := r.db.WithContext(ctx).Model(&models.Activity{})
	if filter.ArchivedOnly {
		q = q.Where("archived = ?", true)
	} else if !filter.IncludeArchived {
		q = q.Where("archived = ?", false)
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.SiteID != nil {
		q = q.Where("site_id = ?", *filter.SiteID)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var activities []models.Activity
	if err := q.Order("timestamp DESC").Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// MarkSynced flips the synced flag.
func (r *ActivityRepository) MarkSynced(ctx context.Context, activityID string) error {
	result := r.db.WithContext(ctx).Model(&models.Activity{}).
		Where("id = ?", activityID).
		Update("synced", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark activity synced: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("activity %s: %w", activityID, apperrors.ErrNotFound)
	}
	return nil
}
