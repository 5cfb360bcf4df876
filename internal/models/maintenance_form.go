package models

import "time"

// MaintenanceForm is an offline inspection form filled out
// incrementally during a site visit.
type MaintenanceForm struct {
	ID             string    `gorm:"column:id;primaryKey"`
	FormID         string    `gorm:"column:form_id;index"`
	SiteID         string    `gorm:"column:site_id;index"`
	UserID         string    `gorm:"column:user_id"`
	TechnicianName string    `gorm:"column:technician_name"`
	Timestamp      time.Time `gorm:"column:timestamp;index"`
	Completed      bool      `gorm:"column:completed;default:false"`

	InverterSerial    *string    `gorm:"column:inverter_serial"`
	CurrentGeneration *string    `gorm:"column:current_generation"`
	PanelCondition    *string    `gorm:"column:panel_condition"`
	WiringIntegrity   *string    `gorm:"column:wiring_integrity"`
	IssuesObserved    StringList `gorm:"column:issues_observed;type:text"`
	SitePhotoURI      *string    `gorm:"column:site_photo_uri"`
	Documents         StringList `gorm:"column:documents;type:text"`

	Archived  bool       `gorm:"column:archived;index;default:false"`
	Synced    bool       `gorm:"column:synced;default:false"`
	SyncedAt  *time.Time `gorm:"column:synced_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Photos []FormPhoto `gorm:"foreignKey:FormID;references:ID"`
}

// TableName specifies the table name for GORM
func (MaintenanceForm) TableName() string {
	return "maintenance_forms"
}

// IsReadyForSync holds only for completed, unsynced forms that carry
// an inverter serial and a primary site photo.
func (f *MaintenanceForm) IsReadyForSync() bool {
	return f.Completed && !f.Synced &&
		f.InverterSerial != nil && *f.InverterSerial != "" &&
		f.SitePhotoURI != nil && *f.SitePhotoURI != ""
}

// FormPhoto is a photo attached to a maintenance form.
type FormPhoto struct {
	ID        string    `gorm:"column:id;primaryKey"`
	FormID    string    `gorm:"column:form_id;index"`
	PhotoURI  string    `gorm:"column:photo_uri"`
	PhotoType string    `gorm:"column:photo_type"`
	Caption   *string   `gorm:"column:caption"`
	Timestamp time.Time `gorm:"column:timestamp"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (FormPhoto) TableName() string {
	return "form_photos"
}
