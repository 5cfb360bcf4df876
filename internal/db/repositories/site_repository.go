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

// SiteRepository handles site table operations
type SiteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

// SiteFilter narrows List queries.
type SiteFilter struct {
	ArchivedOnly   bool
	IncludeArchived bool
	UserCreatedOnly bool
	Limit           int
}

func validateCoordinates(site *models.Site) error {
	if site.Latitude < -90 || site.Latitude > 90 || site.Longitude < -180 || site.Longitude > 180 {
		return fmt.Errorf("coordinates out of range (%f, %f): %w",
			site.Latitude, site.Longitude, apperrors.ErrValidation)
	}
	return nil
}

// Create inserts a technician-created site. Bundled reference sites
// are inserted only by the seed pipeline via CreateBundled.
func (r *SiteRepository) Create(ctx context.Context, site *models.Site) error {
	if err := validateCoordinates(site); err != nil {
		return err
	}
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	site.IsUserCreated = true
	if err := r.db.WithContext(ctx).Create(site).Error; err != nil {
		return fmt.Errorf("failed to create site: %w", err)
	}
	return nil
}

// CreateBundled inserts a bundled reference site preserving its
// static identifier. Seed pipeline only.
func (r *SiteRepository) CreateBundled(ctx context.Context, site *models.Site) error {
	site.IsUserCreated = false
	if err := r.db.WithContext(ctx).Create(site).Error; err != nil {
		return fmt.Errorf("failed to create bundled site: %w", err)
	}
	return nil
}

// GetByID retrieves a site by its ID
func (r *SiteRepository) GetByID(ctx context.Context, siteID string) (*models.Site, error) {
	var site models.Site
	err := r.db.WithContext(ctx).Where("id = ?", siteID).First(&site).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("site %s: %w", siteID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch site: %w", err)
	}
	return &site, nil
}

// First returns the earliest-created site in the store, or ErrNotFound
// when the store is empty.
func (r *SiteRepository) First(ctx context.Context) (*models.Site, error) {
	var site models.Site
	err := r.db.WithContext(ctx).Order("created_at ASC").First(&site).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("no sites in store: %w", apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch first site: %w", err)
	}
	return &site, nil
}

// List returns sites matching the filter, sorted by name.
func (r *SiteRepository) List(ctx context.Context, filter SiteFilter) ([]models.Site, error) {
	q := r.db.WithContext(ctx).Model(&models.Site{})
	if filter.ArchivedOnly {
		q = q.Where("archived = ?", true)
	} else if !filter.IncludeArchived {
		q = q.Where("archived = ?", false)
	}
	if filter.UserCreatedOnly {
		q = q.Where("is_user_created = ?", true)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var sites []models.Site
	if err := q.Order("name ASC").Find(&sites).Error; err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	return sites, nil
}

// Count returns the total number of site rows, archived included.
func (r *SiteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Site{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sites: %w", err)
	}
	return count, nil
}

// Update applies a partial mutation to a user-created site inside one
// write transaction. Bundled sites are immutable except for archival.
func (r *SiteRepository) Update(ctx context.Context, siteID string, mutate func(*models.Site) error) (*models.Site, error) {
	var updated *models.Site
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var site models.Site
		if err := tx.Where("id = ?", siteID).First(&site).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("site %s: %w", siteID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to fetch site: %w", err)
		}
		if !site.Editable() {
			return fmt.Errorf("%s: %w", constants.MsgBundledSiteImmutable, apperrors.ErrIllegalState)
		}
		if err := mutate(&site); err != nil {
			return err
		}
		if err := validateCoordinates(&site); err != nil {
			return err
		}
		site.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&site).Error; err != nil {
			return fmt.Errorf("failed to save site: %w", err)
		}
		updated = &site
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkSynced flips the synced flag. The only remote interaction the
// app performs is this explicit local marking.
func (r *SiteRepository) MarkSynced(ctx context.Context, siteID string) error {
	result := r.db.WithContext(ctx).Model(&models.Site{}).
		Where("id = ?", siteID).
		Update("synced", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark site synced: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("site %s: %w", siteID, apperrors.ErrNotFound)
	}
	return nil
}
