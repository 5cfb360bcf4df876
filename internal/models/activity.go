package models

import "time"

// Activity is an append-only audit row created on every significant
// user action. Immutable once written except for the archived and
// synced flags.
type Activity struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Type        string    `gorm:"column:type;index"`
	Title       string    `gorm:"column:title"`
	Description *string   `gorm:"column:description"`
	SiteID      *string   `gorm:"column:site_id;index"`
	SiteName    *string   `gorm:"column:site_name"`
	Timestamp   time.Time `gorm:"column:timestamp;index"`
	Icon        string    `gorm:"column:icon"`
	Metadata    Metadata  `gorm:"column:metadata;type:text"`
	UserID      *string   `gorm:"column:user_id"`
	Archived    bool      `gorm:"column:archived;index;default:false"`
	Synced      bool      `gorm:"column:synced;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Activity) TableName() string {
	return "activities"
}
