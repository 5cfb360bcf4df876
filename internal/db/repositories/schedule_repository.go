package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/models"
)

// ScheduleRepository handles schedule table operations
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ScheduleFilter narrows List queries.
type ScheduleFilter struct {
	SiteID          *string
	UserID          *string
	Date            *string
	Status          *string
	ArchivedOnly    bool
	IncludeArchived bool
	Limit           int
}

// clockMinutes converts an "HH:MM AM/PM" string to minutes past
// midnight. The column stores the 12-hour display string, which does
// not collate chronologically ("02:00 PM" < "09:00 AM" as text).
// Unparseable times sort last.
func clockMinutes(clock string) int {
	ts, err := time.Parse("3:04 PM", strings.ToUpper(strings.TrimSpace(clock)))
	if err != nil {
		return 24 * 60
	}
	return ts.Hour()*60 + ts.Minute()
}

func validateRequiem(s *models.Schedule) error {
	if s.IsRequiem && s.SiteID != nil {
		return fmt.Errorf("requiem visit must not carry a site id: %w", apperrors.ErrValidation)
	}
	if !s.IsRequiem && s.SiteID == nil {
		return fmt.Errorf("non-requiem visit requires a site id: %w", apperrors.ErrValidation)
	}
	return nil
}

// Create inserts a schedule after enforcing the requiem invariant.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if err := validateRequiem(schedule); err != nil {
		return err
	}
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	if schedule.Status == "" {
		schedule.Status = "scheduled"
	}
	if err := r.db.WithContext(ctx).Create(schedule).Error; err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// GetByID retrieves a schedule by its ID
func (r *ScheduleRepository) GetByID(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	var schedule models.Schedule
	err := r.db.WithContext(ctx).Where("id = ?", scheduleID).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("schedule %s: %w", scheduleID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	return &schedule, nil
}

// List returns schedules matching the filter, ascending by date then
// time so the day view reads top to bottom.
func (r *ScheduleRepository) List(ctx context.Context, filter ScheduleFilter) ([]models.Schedule, error) {
	q := r.db.WithContext(ctx).Model(&models.Schedule{})
	if filter.ArchivedOnly {
		q = q.Where("archived = ?", true)
	} else if !filter.IncludeArchived {
		q = q.Where("archived = ?", false)
	}
	if filter.SiteID != nil {
		q = q.Where("site_id = ?", *filter.SiteID)
	}
	if filter.UserID != nil {
		q = q.Where("assigned_user_id = ?", *filter.UserID)
	}
	if filter.Date != nil {
		q = q.Where("date = ?", *filter.Date)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var schedules []models.Schedule
	if err := q.Order("date ASC").Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	sort.SliceStable(schedules, func(i, j int) bool {
		if schedules[i].Date != schedules[j].Date {
			return schedules[i].Date < schedules[j].Date
		}
		return clockMinutes(schedules[i].Time) < clockMinutes(schedules[j].Time)
	})
	return schedules, nil
}

// ForUserOnDate returns the non-archived schedules for one technician
// on one calendar day, optionally excluding a schedule under edit.
func (r *ScheduleRepository) ForUserOnDate(ctx context.Context, userID, date string, excludeID *string) ([]models.Schedule, error) {
	q := r.db.WithContext(ctx).Model(&models.Schedule{}).
		Where("assigned_user_id = ?", userID).
		Where("date = ?", date).
		Where("archived = ?", false).
		Where("status != ?", "cancelled")
	if excludeID != nil {
		q = q.Where("id != ?", *excludeID)
	}

	var schedules []models.Schedule
	if err := q.Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch schedules for %s on %s: %w", userID, date, err)
	}
	return schedules, nil
}

// Count returns the total number of schedule rows, archived included.
func (r *ScheduleRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Schedule{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count schedules: %w", err)
	}
	return count, nil
}

// Update applies a partial mutation inside one write transaction and
// re-checks the requiem invariant on the mutated row.
func (r *ScheduleRepository) Update(ctx context.Context, scheduleID string, mutate func(*models.Schedule) error) (*models.Schedule, error) {
	var updated *models.Schedule
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var schedule models.Schedule
		if err := tx.Where("id = ?", scheduleID).First(&schedule).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("schedule %s: %w", scheduleID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to fetch schedule: %w", err)
		}
		if err := mutate(&schedule); err != nil {
			return err
		}
		if err := validateRequiem(&schedule); err != nil {
			return err
		}
		schedule.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&schedule).Error; err != nil {
			return fmt.Errorf("failed to save schedule: %w", err)
		}
		updated = &schedule
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// HardDelete removes a schedule row. Explicitly allowed independently
// of the owning site, unlike activities and forms.
func (r *ScheduleRepository) HardDelete(ctx context.Context, scheduleID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", scheduleID).Delete(&models.Schedule{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete schedule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("schedule %s: %w", scheduleID, apperrors.ErrNotFound)
	}
	return nil
}

// MarkSynced flips the synced flag.
func (r *ScheduleRepository) MarkSynced(ctx context.Context, scheduleID string) error {
	result := r.db.WithContext(ctx).Model(&models.Schedule{}).
		Where("id = ?", scheduleID).
		Update("synced", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark schedule synced: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("schedule %s: %w", scheduleID, apperrors.ErrNotFound)
	}
	return nil
}
