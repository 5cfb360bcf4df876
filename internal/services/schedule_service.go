package services

import (
	"context"
	"fmt"
	"time"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/constants"
	"solarops/fieldstore/internal/db/repositories"
	"solarops/fieldstore/internal/devices"
	"solarops/fieldstore/internal/logging"
	"solarops/fieldstore/internal/models"
)

// ScheduleService owns the visit-planning flow: conflict-checked
// creation, cancellation and deletion, each leaving an activity trail.
type ScheduleService struct {
	schedules  *repositories.ScheduleRepository
	sites      *repositories.SiteRepository
	activities *repositories.ActivityRepository
	conflicts  *ConflictService
	calendar   devices.CalendarExporter
	bus        *ChangeBus
}

func NewScheduleService(
	schedules *repositories.ScheduleRepository,
	sites *repositories.SiteRepository,
	activities *repositories.ActivityRepository,
	conflicts *ConflictService,
	calendar devices.CalendarExporter,
	bus *ChangeBus,
) *ScheduleService {
	return &ScheduleService{
		schedules:  schedules,
		sites:      sites,
		activities: activities,
		conflicts:  conflicts,
		calendar:   calendar,
		bus:        bus,
	}
}

// CreateScheduleInput carries the fields a technician supplies when
// booking a visit.
type CreateScheduleInput struct {
	SiteID          *string
	Date            string
	Time            string
	Title           string
	Description     *string
	AssignedUserID  *string
	DurationMinutes int
	IsRequiem       bool
	RequiemReason   *string
	LinkedSiteID    *string
}

// CreateSchedule validates the slot for the assigned technician,
// persists the visit and records a schedule activity. A conflict is
// returned as a typed result, not an error. Calendar export is
// best-effort and never affects persisted state.
func (s *ScheduleService) CreateSchedule(ctx context.Context, input CreateScheduleInput) (*models.Schedule, *ConflictResult, error) {
	if input.AssignedUserID != nil {
		result, err := s.conflicts.ValidateSchedule(ctx, *input.AssignedUserID, input.Date, input.Time, input.DurationMinutes, nil)
		if err != nil {
			return nil, nil, err
		}
		if result.HasConflict {
			return nil, result, nil
		}
	} else if _, err := ParseDateTime(input.Date, input.Time); err != nil {
		return nil, nil, err
	}

	var siteName *string
	if input.SiteID != nil {
		site, err := s.sites.GetByID(ctx, *input.SiteID)
		if err != nil {
			return nil, nil, err
		}
		siteName = &site.Name
	}

	schedule := &models.Schedule{
		SiteID:         input.SiteID,
		Date:           input.Date,
		Time:           input.Time,
		Title:          input.Title,
		Description:    input.Description,
		AssignedUserID: input.AssignedUserID,
		Status:         constants.ScheduleStatusScheduled,
		IsRequiem:      input.IsRequiem,
		RequiemReason:  input.RequiemReason,
		LinkedSiteID:   input.LinkedSiteID,
	}
	if err := s.schedules.Create(ctx, schedule); err != nil {
		return nil, nil, err
	}

	activity := &models.Activity{
		Type:      constants.ActivitySchedule,
		Title:     fmt.Sprintf("Scheduled visit: %s", input.Title),
		SiteID:    input.SiteID,
		SiteName:  siteName,
		Timestamp: time.Now().UTC(),
		Icon:      "calendar",
		UserID:    input.AssignedUserID,
		Metadata: models.Metadata{
			"schedule_id": schedule.ID,
			"date":        input.Date,
			"time":        input.Time,
		},
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		logging.Warn("Failed to record schedule activity", "schedule_id", schedule.ID, "error", err.Error())
	}

	if s.calendar != nil {
		if err := s.calendar.ExportSchedule(ctx, schedule); err != nil {
			logging.Warn("Calendar export failed", "schedule_id", schedule.ID, "error", err.Error())
		}
	}

	s.publish(schedule.ID)
	return schedule, nil, nil
}

// Cancel moves an open visit to cancelled.
func (s *ScheduleService) Cancel(ctx context.Context, scheduleID string) (*models.Schedule, error) {
	updated, err := s.schedules.Update(ctx, scheduleID, func(sched *models.Schedule) error {
		if sched.Status != constants.ScheduleStatusScheduled {
			return fmt.Errorf("cannot cancel a %s visit: %w", sched.Status, apperrors.ErrIllegalState)
		}
		sched.Status = constants.ScheduleStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(scheduleID)
	return updated, nil
}

// Delete hard-removes a visit, independently of its site.
func (s *ScheduleService) Delete(ctx context.Context, scheduleID string) error {
	if err := s.schedules.HardDelete(ctx, scheduleID); err != nil {
		return err
	}
	s.publish(scheduleID)
	return nil
}

func (s *ScheduleService) publish(scheduleID string) {
	if s.bus != nil {
		s.bus.Publish(ChangeEvent{Kind: KindSchedule, ID: scheduleID})
		s.bus.Publish(ChangeEvent{Kind: KindActivity})
	}
}
