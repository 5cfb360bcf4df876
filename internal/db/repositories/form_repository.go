package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/constants"
	"solarops/fieldstore/internal/models"
)

// FormRepository handles maintenance forms and their photos.
type FormRepository struct {
	db *gorm.DB
}

func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

// FormFilter narrows List queries.
type FormFilter struct {
	SiteID          *string
	UserID          *string
	CompletedOnly   bool
	ReadyForSync    bool
	ArchivedOnly    bool
	IncludeArchived bool
	Limit           int
}

// Create starts an in-progress form.
func (r *FormRepository) Create(ctx context.Context, form *models.MaintenanceForm) error {
	if form.ID == "" {
		form.ID = uuid.NewString()
	}
	if form.Timestamp.IsZero() {
		form.Timestamp = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(form).Error; err != nil {
		return fmt.Errorf("failed to create maintenance form: %w", err)
	}
	return nil
}

// GetByID retrieves a form with its photos preloaded.
func (r *FormRepository) GetByID(ctx context.Context, formID string) (*models.MaintenanceForm, error) {
	var form models.MaintenanceForm
	err := r.db.WithContext(ctx).Preload("Photos").Where("id = ?", formID).First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("maintenance form %s: %w", formID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch maintenance form: %w", err)
	}
	return &form, nil
}

// List returns forms newest first.
func (r *FormRepository) List(ctx context.Context, filter FormFilter) ([]models.MaintenanceForm, error) {
	q := r.db.WithContext(ctx).Model(&models.MaintenanceForm{})
	if filter.ArchivedOnly {
		q = q.Where("archived = ?", true)
	} else if !filter.IncludeArchived {
		q = q.Where("archived = ?", false)
	}
	if filter.SiteID != nil {
		q = q.Where("site_id = ?", *filter.SiteID)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.CompletedOnly {
		q = q.Where("completed = ?", true)
	}
	if filter.ReadyForSync {
		q = q.Where("completed = ? AND synced = ?", true, false).
			Where("inverter_serial IS NOT NULL AND inverter_serial != ''").
			Where("site_photo_uri IS NOT NULL AND site_photo_uri != ''")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var forms []models.MaintenanceForm
	if err := q.Order("timestamp DESC").Find(&forms).Error; err != nil {
		return nil, fmt.Errorf("failed to list maintenance forms: %w", err)
	}
	return forms, nil
}

// Update applies a partial mutation inside one write transaction,
// used as inspection fields are filled in incrementally.
func (r *FormRepository) Update(ctx context.Context, formID string, mutate func(*models.MaintenanceForm) error) (*models.MaintenanceForm, error) {
	var updated *models.MaintenanceForm
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var form models.MaintenanceForm
		if err := tx.Where("id = ?", formID).First(&form).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("maintenance form %s: %w", formID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to fetch maintenance form: %w", err)
		}
		if err := mutate(&form); err != nil {
			return err
		}
		form.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&form).Error; err != nil {
			return fmt.Errorf("failed to save maintenance form: %w", err)
		}
		updated = &form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddPhoto attaches a photo to a form.
func (r *FormRepository) AddPhoto(ctx context.Context, photo *models.FormPhoto) error {
	if photo.ID == "" {
		photo.ID = uuid.NewString()
	}
	if photo.Timestamp.IsZero() {
		photo.Timestamp = time.Now().UTC()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.MaintenanceForm{}).Where("id = ?", photo.FormID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check form: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("maintenance form %s: %w", photo.FormID, apperrors.ErrNotFound)
		}
		if err := tx.Create(photo).Error; err != nil {
			return fmt.Errorf("failed to attach photo: %w", err)
		}
		return nil
	})
	return err
}

// MarkSynced flips the synced flag and stamps SyncedAt. Only forms
// that satisfy IsReadyForSync may be marked.
func (r *FormRepository) MarkSynced(ctx context.Context, formID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var form models.MaintenanceForm
		if err := tx.Where("id = ?", formID).First(&form).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("maintenance form %s: %w", formID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to fetch maintenance form: %w", err)
		}
		if !form.IsReadyForSync() {
			return fmt.Errorf("%s: %w", constants.MsgFormNotReady, apperrors.ErrIllegalState)
		}
		now := time.Now().UTC()
		form.Synced = true
		form.SyncedAt = &now
		form.UpdatedAt = now
		if err := tx.Save(&form).Error; err != nil {
			return fmt.Errorf("failed to mark form synced: %w", err)
		}
		return nil
	})
}
