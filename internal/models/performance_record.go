package models

import "time"

// PerformanceRecord is one day of generation data for a site. Records
// are bulk-created by the seed pipeline; technicians never create them
// directly. One record per site per day is a soft expectation only.
type PerformanceRecord struct {
	ID                   string    `gorm:"column:id;primaryKey"`
	SiteID               string    `gorm:"column:site_id;index"`
	Date                 string    `gorm:"column:date;index"`
	EnergyGeneratedKwh   float64   `gorm:"column:energy_generated_kwh"`
	PeakPower            *float64  `gorm:"column:peak_power"`
	EfficiencyPercentage *float64  `gorm:"column:efficiency_percentage"`
	Status               string    `gorm:"column:status;index"`
	Archived             bool      `gorm:"column:archived;index;default:false"`
	Synced               bool      `gorm:"column:synced;default:false"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (PerformanceRecord) TableName() string {
	return "performance_records"
}

// IsAcceptable derives from the status thresholds: anything at or
// above normal output counts as acceptable.
func (r *PerformanceRecord) IsAcceptable() bool {
	return r.Status == "over" || r.Status == "normal"
}

// DerivePerformanceStatus maps a daily generation reading onto a
// status bucket. Thresholds match the bundled chart data: 0 is zero
// output, above 50 is over-performance, 40-50 is the normal band and
// anything below 40 is under-performance.
func DerivePerformanceStatus(energyKwh float64) string {
	switch {
	case energyKwh == 0:
		return "zero"
	case energyKwh > 50:
		return "over"
	case energyKwh >= 40:
		return "normal"
	default:
		return "under"
	}
}
