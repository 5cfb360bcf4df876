package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/constants"
	"solarops/fieldstore/internal/devices"
	"solarops/fieldstore/internal/models"
)

// Mock LocationProvider
type mockLocation struct {
	currentLocationFunc func(ctx context.Context) (*devices.Location, error)
}

func (m *mockLocation) CurrentLocation(ctx context.Context) (*devices.Location, error) {
	return m.currentLocationFunc(ctx)
}

func seedVisit(t *testing.T, gdb *gorm.DB) (siteID, scheduleID string) {
	t.Helper()
	site := &models.Site{ID: "site-001", Name: "Bhadla Solar Park", Capacity: "2245 MW", Latitude: 27.539, Longitude: 71.916}
	if err := gdb.Create(site).Error; err != nil {
		t.Fatalf("Failed to create site: %v", err)
	}
	schedule := &models.Schedule{
		ID:             "sched-001",
		SiteID:         &site.ID,
		Date:           "2025-03-01",
		Time:           "09:00 AM",
		Title:          "Quarterly inspection",
		AssignedUserID: strPtr("user-001"),
		Status:         "scheduled",
	}
	if err := gdb.Create(schedule).Error; err != nil {
		t.Fatalf("Failed to create schedule: %v", err)
	}
	return site.ID, schedule.ID
}

func TestCheckIn_InsideGeofence(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewCheckInService(gdb, 500, nil, nil)
	_, scheduleID := seedVisit(t, gdb)

	schedule, err := svc.CheckIn(context.Background(), scheduleID, devices.StaticLocation{Lat: 27.539, Lng: 71.916})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if schedule.CheckedInAt == nil {
		t.Fatal("CheckedInAt not stamped")
	}
	if schedule.ActivityID == nil {
		t.Fatal("check-in activity not linked")
	}
	if schedule.Synced {
		t.Error("check-in must clear the synced flag")
	}

	var activity models.Activity
	if err := gdb.Where("id = ?", *schedule.ActivityID).First(&activity).Error; err != nil {
		t.Fatalf("Failed to fetch linked activity: %v", err)
	}
	if activity.Type != constants.ActivityCheckIn {
		t.Errorf("activity type = %q, want %q", activity.Type, constants.ActivityCheckIn)
	}
	if activity.Metadata["schedule_id"] != scheduleID {
		t.Errorf("activity metadata schedule_id = %v", activity.Metadata["schedule_id"])
	}
}

func TestCheckIn_OutsideGeofenceWritesNothing(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewCheckInService(gdb, 500, nil, nil)
	_, scheduleID := seedVisit(t, gdb)

	// Roughly 110 km north of the site.
	_, err := svc.CheckIn(context.Background(), scheduleID, devices.StaticLocation{Lat: 28.539, Lng: 71.916})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("CheckIn outside geofence = %v, want ErrValidation", err)
	}

	var schedule models.Schedule
	if err := gdb.Where("id = ?", scheduleID).First(&schedule).Error; err != nil {
		t.Fatalf("Failed to fetch schedule: %v", err)
	}
	if schedule.CheckedInAt != nil || schedule.ActivityID != nil {
		t.Error("rejected check-in must leave the schedule untouched")
	}

	var count int64
	if err := gdb.Model(&models.Activity{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count activities: %v", err)
	}
	if count != 0 {
		t.Errorf("rejected check-in wrote %d activity rows", count)
	}
}

func TestCheckIn_DeviceFailureWritesNothing(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewCheckInService(gdb, 500, nil, nil)
	_, scheduleID := seedVisit(t, gdb)

	provider := &mockLocation{
		currentLocationFunc: func(ctx context.Context) (*devices.Location, error) {
			return nil, devices.ErrPermissionDenied
		},
	}

	_, err := svc.CheckIn(context.Background(), scheduleID, provider)
	if !errors.Is(err, apperrors.ErrTransportUnavailable) {
		t.Fatalf("CheckIn with device failure = %v, want ErrTransportUnavailable", err)
	}

	var count int64
	if err := gdb.Model(&models.Activity{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count activities: %v", err)
	}
	if count != 0 {
		t.Error("device failure must not touch the store")
	}
}

func TestCheckIn_DoubleCheckInRejected(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewCheckInService(gdb, 500, nil, nil)
	_, scheduleID := seedVisit(t, gdb)
	onSite := devices.StaticLocation{Lat: 27.539, Lng: 71.916}

	if _, err := svc.CheckIn(context.Background(), scheduleID, onSite); err != nil {
		t.Fatalf("first CheckIn: %v", err)
	}
	if _, err := svc.CheckIn(context.Background(), scheduleID, onSite); !errors.Is(err, apperrors.ErrIllegalState) {
		t.Fatalf("second CheckIn = %v, want ErrIllegalState", err)
	}
}

func TestCheckIn_RequiemSkipsGeofence(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewCheckInService(gdb, 500, nil, nil)

	schedule := &models.Schedule{
		ID:             "sched-requiem",
		Date:           "2025-03-01",
		Time:           "02:00 PM",
		Title:          "Warehouse inventory",
		AssignedUserID: strPtr("user-001"),
		Status:         "scheduled",
		IsRequiem:      true,
		RequiemReason:  strPtr("inventory"),
	}
	if err := gdb.Create(schedule).Error; err != nil {
		t.Fatalf("Failed to create requiem schedule: %v", err)
	}

	// The provider errors on every call; a requiem visit never asks
	// for a fix, so check-in still succeeds.
	provider := &mockLocation{
		currentLocationFunc: func(ctx context.Context) (*devices.Location, error) {
			return nil, devices.ErrServicesDisabled
		},
	}

	updated, err := svc.CheckIn(context.Background(), schedule.ID, provider)
	if err != nil {
		t.Fatalf("CheckIn(requiem): %v", err)
	}
	if updated.CheckedInAt == nil {
		t.Error("requiem check-in not stamped")
	}
}

func TestCheckOut_CompletesVisit(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewCheckInService(gdb, 500, nil, nil)
	_, scheduleID := seedVisit(t, gdb)

	if _, err := svc.CheckIn(context.Background(), scheduleID, devices.StaticLocation{Lat: 27.539, Lng: 71.916}); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	schedule, err := svc.CheckOut(context.Background(), scheduleID)
	if err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if schedule.CheckedOutAt == nil {
		t.Error("CheckedOutAt not stamped")
	}
	if schedule.Status != constants.ScheduleStatusCompleted || schedule.CompletedAt == nil {
		t.Errorf("status = %q completed_at = %v, want completed visit", schedule.Status, schedule.CompletedAt)
	}
	if schedule.ActualDurationMinutes == nil || *schedule.ActualDurationMinutes < 0 {
		t.Errorf("actual duration = %v, want non-negative minutes", schedule.ActualDurationMinutes)
	}

	var count int64
	if err := gdb.Model(&models.Activity{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count activities: %v", err)
	}
	if count != 2 {
		t.Errorf("activity rows = %d, want check-in plus check-out", count)
	}
}

func TestCheckOut_RequiresOpenCheckIn(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewCheckInService(gdb, 500, nil, nil)
	_, scheduleID := seedVisit(t, gdb)

	if _, err := svc.CheckOut(context.Background(), scheduleID); !errors.Is(err, apperrors.ErrIllegalState) {
		t.Fatalf("CheckOut before check-in = %v, want ErrIllegalState", err)
	}

	if _, err := svc.CheckIn(context.Background(), scheduleID, devices.StaticLocation{Lat: 27.539, Lng: 71.916}); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if _, err := svc.CheckOut(context.Background(), scheduleID); err != nil {
		t.Fatalf("CheckOut: %v", err)
	}
	if _, err := svc.CheckOut(context.Background(), scheduleID); !errors.Is(err, apperrors.ErrIllegalState) {
		t.Fatalf("double CheckOut = %v, want ErrIllegalState", err)
	}
}

func TestCheckIn_MissingSchedule(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewCheckInService(gdb, 500, nil, nil)

	if _, err := svc.CheckIn(context.Background(), "missing", devices.StaticLocation{Lat: 0, Lng: 0}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("CheckIn(missing) = %v, want ErrNotFound", err)
	}
}
