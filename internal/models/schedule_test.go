package models

import (
	"testing"
	"time"

	"solarops/fieldstore/internal/constants"
)

func TestScheduleOpen(t *testing.T) {
	s := &Schedule{Status: constants.ScheduleStatusScheduled}
	if !s.Open() {
		t.Fatal("a scheduled, unarchived visit should be open")
	}

	s.Archived = true
	if s.Open() {
		t.Error("archived visit should not be open")
	}

	s = &Schedule{Status: constants.ScheduleStatusCompleted}
	if s.Open() {
		t.Error("completed visit should not be open")
	}

	s = &Schedule{Status: constants.ScheduleStatusCancelled}
	if s.Open() {
		t.Error("cancelled visit should not be open")
	}
}

func TestScheduleCheckedIn(t *testing.T) {
	s := &Schedule{Status: constants.ScheduleStatusScheduled}
	if s.CheckedIn() {
		t.Error("visit without a check-in timestamp should not report checked in")
	}

	now := time.Now().UTC()
	s.CheckedInAt = &now
	if !s.CheckedIn() {
		t.Error("visit with a check-in timestamp should report checked in")
	}
}
