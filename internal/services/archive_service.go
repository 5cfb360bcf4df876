package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/constants"
	"solarops/fieldstore/internal/logging"
	"solarops/fieldstore/internal/metrics"
	"solarops/fieldstore/internal/models"
)

// childTable pairs a child model with its metric label. The four
// tables referencing sites by site_id have no ordering dependency
// between them; the transaction boundary is what guarantees
// all-or-nothing behavior.
type childTable struct {
	model interface{}
	name  string
}

func cascadeChildren() []childTable {
	return []childTable{
		{&models.Activity{}, "activities"},
		{&models.Schedule{}, "schedules"},
		{&models.MaintenanceForm{}, "maintenance_forms"},
		{&models.PerformanceRecord{}, "performance_records"},
	}
}

// ArchiveService is the cascade archive engine. A site archive
// propagates to every row referencing it; the inverse restores only
// rows currently archived for that site.
type ArchiveService struct {
	db      *gorm.DB
	bus     *ChangeBus
	metrics *metrics.MetricsRegistry
}

func NewArchiveService(db *gorm.DB, bus *ChangeBus, reg *metrics.MetricsRegistry) *ArchiveService {
	return &ArchiveService{db: db, bus: bus, metrics: reg}
}

// ArchiveSite soft-deletes a site and every child row referencing it
// within one atomic transaction.
func (s *ArchiveService) ArchiveSite(ctx context.Context, siteID string) error {
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var site models.Site
		if err := tx.Where("id = ?", siteID).First(&site).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("site %s: %w", siteID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to fetch site: %w", err)
		}

		if err := tx.Model(&models.Site{}).Where("id = ?", siteID).Updates(map[string]interface{}{
			"archived":    true,
			"archived_at": now,
			"synced":      false,
			"updated_at":  now,
		}).Error; err != nil {
			return fmt.Errorf("failed to archive site: %w", err)
		}

		for _, child := range cascadeChildren() {
			result := tx.Model(child.model).
				Where("site_id = ?", siteID).
				Updates(map[string]interface{}{"archived": true, "updated_at": now})
			if result.Error != nil {
				return fmt.Errorf("failed to archive %s for site %s: %w", child.name, siteID, result.Error)
			}
			if s.metrics != nil {
				s.metrics.CascadeRowsTotal.WithLabelValues(child.name).Add(float64(result.RowsAffected))
			}
		}
		return nil
	})

	s.record("archive", err)
	if err != nil {
		return err
	}

	logging.Info("Site archived with cascade", "site_id", siteID)
	s.notify(siteID)
	return nil
}

// UnarchiveSite restores a site and the child rows currently archived
// for it. Rows are only ever archived by cascade or direct per-row
// call, so restoring everything archived under the site id is exact.
func (s *ArchiveService) UnarchiveSite(ctx context.Context, siteID string) error {
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var site models.Site
		if err := tx.Where("id = ?", siteID).First(&site).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("site %s: %w", siteID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to fetch site: %w", err)
		}

		if err := tx.Model(&models.Site{}).Where("id = ?", siteID).Updates(map[string]interface{}{
			"archived":    false,
			"archived_at": nil,
			"synced":      false,
			"updated_at":  now,
		}).Error; err != nil {
			return fmt.Errorf("failed to unarchive site: %w", err)
		}

		for _, child := range cascadeChildren() {
			result := tx.Model(child.model).
				Where("site_id = ? AND archived = ?", siteID, true).
				Updates(map[string]interface{}{"archived": false, "updated_at": now})
			if result.Error != nil {
				return fmt.Errorf("failed to unarchive %s for site %s: %w", child.name, siteID, result.Error)
			}
			if s.metrics != nil {
				s.metrics.CascadeRowsTotal.WithLabelValues(child.name).Add(float64(result.RowsAffected))
			}
		}
		return nil
	})

	s.record("unarchive", err)
	if err != nil {
		return err
	}

	logging.Info("Site unarchived with cascade", "site_id", siteID)
	s.notify(siteID)
	return nil
}

// CascadeDeleteSite hard-deletes a user-created site and every child
// row referencing it. Bundled sites can never be hard-deleted.
func (s *ArchiveService) CascadeDeleteSite(ctx context.Context, siteID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var site models.Site
		if err := tx.Where("id = ?", siteID).First(&site).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("site %s: %w", siteID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to fetch site: %w", err)
		}
		if !site.IsUserCreated {
			return fmt.Errorf("%s: %w", constants.MsgBundledSiteImmutable, apperrors.ErrIllegalState)
		}

		for _, child := range cascadeChildren() {
			if err := tx.Where("site_id = ?", siteID).Delete(child.model).Error; err != nil {
				return fmt.Errorf("failed to delete %s for site %s: %w", child.name, siteID, err)
			}
		}
		if err := tx.Where("id = ?", siteID).Delete(&models.Site{}).Error; err != nil {
			return fmt.Errorf("failed to delete site: %w", err)
		}
		return nil
	})

	s.record("delete", err)
	if err != nil {
		return err
	}

	logging.Info("User site deleted with cascade", "site_id", siteID)
	s.notify(siteID)
	return nil
}

func (s *ArchiveService) record(direction string, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.metrics.CascadeOpsTotal.WithLabelValues(direction, result).Inc()
}

func (s *ArchiveService) notify(siteID string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ChangeEvent{Kind: KindSite, ID: siteID})
	s.bus.Publish(ChangeEvent{Kind: KindSchedule})
	s.bus.Publish(ChangeEvent{Kind: KindActivity})
	s.bus.Publish(ChangeEvent{Kind: KindForm})
	s.bus.Publish(ChangeEvent{Kind: KindPerformance})
}
