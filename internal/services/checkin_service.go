package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/constants"
	"solarops/fieldstore/internal/devices"
	"solarops/fieldstore/internal/logging"
	"solarops/fieldstore/internal/metrics"
	"solarops/fieldstore/internal/models"
)

// CheckInService runs the geofenced check-in/check-out flow. Device
// location is resolved before any store mutation begins, so a device
// failure can never leave the store half-written.
type CheckInService struct {
	db             *gorm.DB
	geofenceRadius float64
	bus            *ChangeBus
	metrics        *metrics.MetricsRegistry
}

func NewCheckInService(db *gorm.DB, geofenceRadiusMeters float64, bus *ChangeBus, reg *metrics.MetricsRegistry) *CheckInService {
	return &CheckInService{
		db:             db,
		geofenceRadius: geofenceRadiusMeters,
		bus:            bus,
		metrics:        reg,
	}
}

// CheckIn verifies the technician is inside the site geofence, then
// atomically creates the check-in activity and stamps the schedule.
// Requiem visits carry no site and skip the geofence check.
func (s *CheckInService) CheckIn(ctx context.Context, scheduleID string, location devices.LocationProvider) (*models.Schedule, error) {
	schedule, err := s.loadSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !schedule.Open() {
		s.record("checkin", "rejected")
		return nil, fmt.Errorf("visit is %s: %w", schedule.Status, apperrors.ErrIllegalState)
	}
	if schedule.CheckedIn() {
		s.record("checkin", "rejected")
		return nil, fmt.Errorf("%s: %w", constants.MsgAlreadyCheckedIn, apperrors.ErrIllegalState)
	}

	var site *models.Site
	meta := models.Metadata{"schedule_id": scheduleID}
	if !schedule.IsRequiem {
		var found models.Site
		if err := s.db.WithContext(ctx).Where("id = ?", *schedule.SiteID).First(&found).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("site %s: %w", *schedule.SiteID, apperrors.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to fetch site: %w", err)
		}
		site = &found

		// Device call happens outside the transaction.
		fix, err := location.CurrentLocation(ctx)
		if err != nil {
			s.record("checkin", "device_error")
			return nil, err
		}
		distance := devices.DistanceMeters(fix.Latitude, fix.Longitude, site.Latitude, site.Longitude)
		if distance > s.geofenceRadius {
			s.record("checkin", "outside_geofence")
			return nil, fmt.Errorf("%s (%.0fm away, limit %.0fm): %w",
				constants.MsgOutsideGeofence, distance, s.geofenceRadius, apperrors.ErrValidation)
		}
		meta["latitude"] = fix.Latitude
		meta["longitude"] = fix.Longitude
		meta["accuracy"] = fix.Accuracy
		meta["distance_m"] = math.Round(distance)
	}

	now := time.Now().UTC()
	title := "Checked in"
	var siteID, siteName *string
	if site != nil {
		title = fmt.Sprintf("Checked in at %s", site.Name)
		siteID = &site.ID
		siteName = &site.Name
	}

	activity := &models.Activity{
		ID:        uuid.NewString(),
		Type:      constants.ActivityCheckIn,
		Title:     title,
		SiteID:    siteID,
		SiteName:  siteName,
		Timestamp: now,
		Icon:      "map-pin",
		Metadata:  meta,
		UserID:    schedule.AssignedUserID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(activity).Error; err != nil {
			return fmt.Errorf("failed to create check-in activity: %w", err)
		}
		result := tx.Model(&models.Schedule{}).
			Where("id = ? AND checked_in_at IS NULL", scheduleID).
			Updates(map[string]interface{}{
				"checked_in_at": now,
				"activity_id":   activity.ID,
				"synced":        false,
				"updated_at":    now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to stamp check-in: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%s: %w", constants.MsgAlreadyCheckedIn, apperrors.ErrIllegalState)
		}
		return nil
	})
	if err != nil {
		s.record("checkin", "error")
		return nil, err
	}

	s.record("checkin", "ok")
	logging.Info("Checked in", "schedule_id", scheduleID, "activity_id", activity.ID)
	s.publish(scheduleID)
	return s.loadSchedule(ctx, scheduleID)
}

// CheckOut closes an open check-in: stamps the end time, computes the
// actual duration and completes the visit.
func (s *CheckInService) CheckOut(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	schedule, err := s.loadSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !schedule.CheckedIn() {
		s.record("checkout", "rejected")
		return nil, fmt.Errorf("%s: %w", constants.MsgNotCheckedIn, apperrors.ErrIllegalState)
	}
	if schedule.CheckedOutAt != nil {
		s.record("checkout", "rejected")
		return nil, fmt.Errorf("visit already checked out: %w", apperrors.ErrIllegalState)
	}

	now := time.Now().UTC()
	duration := int(math.Round(now.Sub(*schedule.CheckedInAt).Minutes()))

	title := "Checked out"
	var siteName *string
	if schedule.SiteID != nil {
		var site models.Site
		if err := s.db.WithContext(ctx).Where("id = ?", *schedule.SiteID).First(&site).Error; err == nil {
			title = fmt.Sprintf("Checked out of %s", site.Name)
			siteName = &site.Name
		}
	}

	activity := &models.Activity{
		ID:        uuid.NewString(),
		Type:      constants.ActivityCheckIn,
		Title:     title,
		SiteID:    schedule.SiteID,
		SiteName:  siteName,
		Timestamp: now,
		Icon:      "map-pin",
		Metadata: models.Metadata{
			"schedule_id":      scheduleID,
			"duration_minutes": duration,
		},
		UserID: schedule.AssignedUserID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(activity).Error; err != nil {
			return fmt.Errorf("failed to create check-out activity: %w", err)
		}
		result := tx.Model(&models.Schedule{}).
			Where("id = ? AND checked_out_at IS NULL", scheduleID).
			Updates(map[string]interface{}{
				"checked_out_at":          now,
				"actual_duration_minutes": duration,
				"status":                  constants.ScheduleStatusCompleted,
				"completed_at":            now,
				"synced":                  false,
				"updated_at":              now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to stamp check-out: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("visit already checked out: %w", apperrors.ErrIllegalState)
		}
		return nil
	})
	if err != nil {
		s.record("checkout", "error")
		return nil, err
	}

	s.record("checkout", "ok")
	logging.Info("Checked out",
		"schedule_id", scheduleID,
		"duration_minutes", duration,
	)
	s.publish(scheduleID)
	return s.loadSchedule(ctx, scheduleID)
}

func (s *CheckInService) loadSchedule(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	var schedule models.Schedule
	err := s.db.WithContext(ctx).Where("id = ?", scheduleID).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("schedule %s: %w", scheduleID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	return &schedule, nil
}

func (s *CheckInService) record(operation, result string) {
	if s.metrics != nil {
		s.metrics.CheckInsTotal.WithLabelValues(operation, result).Inc()
	}
}

func (s *CheckInService) publish(scheduleID string) {
	if s.bus != nil {
		s.bus.Publish(ChangeEvent{Kind: KindSchedule, ID: scheduleID})
		s.bus.Publish(ChangeEvent{Kind: KindActivity})
	}
}
