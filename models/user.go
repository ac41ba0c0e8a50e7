package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an employee account in the system (admin or shop-floor employee)
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"not null;default:'employee'" json:"role"` // "admin" or "employee"
	Position     string         `json:"position"`                                // job title, e.g. "Alfaiate"
	BirthDate    *time.Time     `json:"birth_date"`
	Sex          string         `json:"sex"`
	HireDate     *time.Time     `json:"hire_date"`
	PhotoKey     *string        `json:"photo_key"`                    // S3 key for the profile photo
	PhotoURL     *string        `gorm:"-" json:"photo_url,omitempty"` // computed field, presigned URL
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user has the administrator role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Recognized user roles
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)
