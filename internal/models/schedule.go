package models

import (
	"time"

	"solarops/fieldstore/internal/constants"
)

// Schedule is a planned site visit. SiteID is nullable: requiem visits
// are not tied to any site and may only reference one for context via
// LinkedSiteID. ActivityID is a weak back-reference to the Activity
// created at check-in time; no referential integrity is enforced at
// the store layer.
type Schedule struct {
	ID             string  `gorm:"column:id;primaryKey"`
	SiteID         *string `gorm:"column:site_id;index"`
	Date           string  `gorm:"column:date;index"`
	Time           string  `gorm:"column:time"`
	Title          string  `gorm:"column:title"`
	Description    *string `gorm:"column:description"`
	AssignedUserID *string `gorm:"column:assigned_user_id;index"`
	Status         string  `gorm:"column:status;index;default:scheduled"`

	CompletedAt           *time.Time `gorm:"column:completed_at"`
	CheckedInAt           *time.Time `gorm:"column:checked_in_at"`
	CheckedOutAt          *time.Time `gorm:"column:checked_out_at"`
	ActualDurationMinutes *int       `gorm:"column:actual_duration_minutes"`
	ActivityID            *string    `gorm:"column:activity_id"`

	IsRequiem     bool    `gorm:"column:is_requiem;default:false"`
	RequiemReason *string `gorm:"column:requiem_reason"`
	LinkedSiteID  *string `gorm:"column:linked_site_id"`

	Archived  bool      `gorm:"column:archived;index;default:false"`
	Synced    bool      `gorm:"column:synced;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Schedule) TableName() string {
	return "schedules"
}

// CheckedIn reports whether the visit has an open or closed check-in.
func (s *Schedule) CheckedIn() bool {
	return s.CheckedInAt != nil
}

// Open reports whether the visit can still be acted on.
func (s *Schedule) Open() bool {
	return s.Status == constants.ScheduleStatusScheduled && !s.Archived
}
