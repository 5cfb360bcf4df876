package models

import "time"

// User is a local account. Two seed accounts exist; there is no
// registration flow and no session model in this core.
type User struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Username     string     `gorm:"column:username;uniqueIndex"`
	PasswordHash string     `gorm:"column:password_hash"`
	FullName     string     `gorm:"column:full_name"`
	Role         string     `gorm:"column:role"`
	Email        *string    `gorm:"column:email"`
	Phone        *string    `gorm:"column:phone"`
	AvatarURI    *string    `gorm:"column:avatar_uri"`
	LastLogin    *time.Time `gorm:"column:last_login"`
	IsActive     bool       `gorm:"column:is_active;default:true"`
	Archived     bool       `gorm:"column:archived;default:false"`
	Synced       bool       `gorm:"column:synced;default:false"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
