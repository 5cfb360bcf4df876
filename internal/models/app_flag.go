package models

import "time"

// AppFlag is a key-value marker row. The migration manager persists
// the schema version and migration-complete markers here.
type AppFlag struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (AppFlag) TableName() string {
	return "app_flags"
}
