package models

import (
	"fmt"
	"time"
)

// Site is the root aggregate of the local store. Activities, schedules,
// forms and performance records reference it by id; the cascade engine
// is what gives the graph aggregate behavior.
type Site struct {
	ID              string     `gorm:"column:id;primaryKey"`
	Name            string     `gorm:"column:name;index"`
	Capacity        string     `gorm:"column:capacity"`
	Latitude        float64    `gorm:"column:latitude"`
	Longitude       float64    `gorm:"column:longitude"`
	IsUserCreated   bool       `gorm:"column:is_user_created;default:false"`
	CreatedByUserID *string    `gorm:"column:created_by_user_id"`
	Archived        bool       `gorm:"column:archived;index;default:false"`
	ArchivedAt      *time.Time `gorm:"column:archived_at"`
	Synced          bool       `gorm:"column:synced;default:false"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Site) TableName() string {
	return "sites"
}

// Location composes the coordinate pair for display.
func (s *Site) Location() string {
	return fmt.Sprintf("%.6f, %.6f", s.Latitude, s.Longitude)
}

// Editable reports whether the site may be mutated or hard-deleted.
// Bundled reference sites can only ever be archived.
func (s *Site) Editable() bool {
	return s.IsUserCreated
}
