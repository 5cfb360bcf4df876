package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"solarops/fieldstore/internal/apperrors"
	"solarops/fieldstore/internal/db/repositories"
	"solarops/fieldstore/internal/metrics"
	"solarops/fieldstore/internal/models"
)

const (
	// DefaultVisitDuration is assumed when the caller gives none.
	DefaultVisitDuration = 90 * time.Minute
	// SchedulingBuffer is the mandatory gap between two visits for the
	// same technician.
	SchedulingBuffer = 5 * time.Minute
	// TravelTime is the assumed drive between sites when suggesting
	// the next free slot.
	TravelTime = 30 * time.Minute
)

const dateTimeLayout = "2006-01-02 3:04 PM"

// TimeSlot is a half-open visit interval.
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// ParseDateTime converts a calendar date and a 12-hour clock string
// ("HH:MM AM/PM") into a local instant. 12 AM maps to hour zero and
// 12 PM stays noon.
func ParseDateTime(date, clock string) (time.Time, error) {
	normalized := strings.ToUpper(strings.TrimSpace(clock))
	ts, err := time.ParseInLocation(dateTimeLayout, date+" "+normalized, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed date/time %q %q: %w", date, clock, apperrors.ErrValidation)
	}
	return ts, nil
}

// CalculateEndTime adds the visit duration to a start instant,
// falling back to the default when durationMinutes is zero or less.
func CalculateEndTime(start time.Time, durationMinutes int) time.Time {
	if durationMinutes <= 0 {
		return start.Add(DefaultVisitDuration)
	}
	return start.Add(time.Duration(durationMinutes) * time.Minute)
}

// TimeSlotsOverlap reports whether two visit intervals collide. With
// includeBuffer, each interval's end is extended by the scheduling
// buffer, so two visits exactly one buffer apart do not collide.
func TimeSlotsOverlap(a, b TimeSlot, includeBuffer bool) bool {
	buffer := time.Duration(0)
	if includeBuffer {
		buffer = SchedulingBuffer
	}
	return startsWithin(a, b, buffer) || startsWithin(b, a, buffer)
}

func startsWithin(x, y TimeSlot, buffer time.Duration) bool {
	return !x.Start.Before(y.Start) && x.Start.Before(y.End.Add(buffer))
}

// SuggestNextAvailableSlot proposes the earliest acceptable slot after
// a prior visit: buffer plus assumed travel time, then the duration
// rule for the end.
func SuggestNextAvailableSlot(lastEndTime time.Time, durationMinutes int) TimeSlot {
	start := lastEndTime.Add(SchedulingBuffer + TravelTime)
	return TimeSlot{Start: start, End: CalculateEndTime(start, durationMinutes)}
}

// ConflictResult is a typed validation outcome, not an error: callers
// branch on HasConflict.
type ConflictResult struct {
	HasConflict bool
	Conflicting *models.Schedule
	Slot        TimeSlot
	Reason      string
}

// ConflictService validates candidate bookings against a technician's
// existing schedules.
type ConflictService struct {
	schedules *repositories.ScheduleRepository
	metrics   *metrics.MetricsRegistry
}

func NewConflictService(schedules *repositories.ScheduleRepository, reg *metrics.MetricsRegistry) *ConflictService {
	return &ConflictService{schedules: schedules, metrics: reg}
}

// ValidateSchedule checks a candidate slot for one technician and day
// against every non-archived, non-cancelled booking. Existing bookings
// are evaluated in start-time order, so with multiple collisions the
// earliest-starting one is reported. excludeScheduleID skips the
// schedule under edit during re-validation.
func (s *ConflictService) ValidateSchedule(ctx context.Context, userID, date, clock string, durationMinutes int, excludeScheduleID *string) (*ConflictResult, error) {
	start, err := ParseDateTime(date, clock)
	if err != nil {
		return nil, err
	}
	candidate := TimeSlot{Start: start, End: CalculateEndTime(start, durationMinutes)}

	existing, err := s.schedules.ForUserOnDate(ctx, userID, date, excludeScheduleID)
	if err != nil {
		return nil, err
	}

	type parsed struct {
		schedule models.Schedule
		slot     TimeSlot
	}
	slots := make([]parsed, 0, len(existing))
	for _, sched := range existing {
		bookedStart, err := ParseDateTime(sched.Date, sched.Time)
		if err != nil {
			// A stored row with an unparseable time cannot be
			// conflict-checked; skip it rather than block scheduling.
			continue
		}
		duration := 0
		if sched.ActualDurationMinutes != nil {
			duration = *sched.ActualDurationMinutes
		}
		slots = append(slots, parsed{
			schedule: sched,
			slot:     TimeSlot{Start: bookedStart, End: CalculateEndTime(bookedStart, duration)},
		})
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].slot.Start.Before(slots[j].slot.Start)
	})

	for _, booked := range slots {
		if TimeSlotsOverlap(candidate, booked.slot, true) {
			s.record("conflict")
			conflicting := booked.schedule
			return &ConflictResult{
				HasConflict: true,
				Conflicting: &conflicting,
				Slot:        booked.slot,
				Reason: fmt.Sprintf(
					"Conflicts with %q (%s - %s); visits require a %d minute gap",
					conflicting.Title,
					booked.slot.Start.Format("3:04 PM"),
					booked.slot.End.Format("3:04 PM"),
					int(SchedulingBuffer.Minutes()),
				),
			}, nil
		}
	}

	s.record("clear")
	return &ConflictResult{HasConflict: false, Slot: candidate}, nil
}

func (s *ConflictService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.ConflictChecksTotal.WithLabelValues(outcome).Inc()
	}
}
