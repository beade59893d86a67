package models

import (
	"time"
)

// Role is the account type a user registered with. It never changes after registration.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDriver  Role = "driver"
	RoleSponsor Role = "sponsor"
)

// Roles lists every role in a stable order
var Roles = []Role{RoleAdmin, RoleDriver, RoleSponsor}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDriver, RoleSponsor:
		return true
	}
	return false
}

// User represents a registered account
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         Role      `gorm:"size:20;not null;index;check:chk_users_role,role IN ('admin', 'driver', 'sponsor')" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
