// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the platform-wide role of a user.
type Role string

const (
	RoleUser           Role = "user"
	RoleReviewer       Role = "reviewer"
	RoleGlobalReviewer Role = "global_reviewer"
	RoleAdmin          Role = "admin"
	RoleDev            Role = "dev"
)

// ValidRole reports whether r is a known role value.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleReviewer, RoleGlobalReviewer, RoleAdmin, RoleDev:
		return true
	}
	return false
}

// User represents an account on the platform.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Username     string         `gorm:"index" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         Role           `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	SchoolID     *uint          `gorm:"index" json:"school_id,omitempty"`
	School       *School        `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Principal is the acting identity attached to a request after
// authentication. Moderation operations authorize against it.
type Principal struct {
	ID       uint `json:"id"`
	Role     Role `json:"role"`
	SchoolID uint `json:"school_id"`
}

// PrincipalFromUser builds a Principal from a loaded user row.
func PrincipalFromUser(u *User) Principal {
	p := Principal{ID: u.ID, Role: u.Role}
	if u.SchoolID != nil {
		p.SchoolID = *u.SchoolID
	}
	return p
}
