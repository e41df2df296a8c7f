package models

import (
	"time"
)

// AdminLog is an append-only record of an administrative or developer
// action, kept separately from per-post review logs. The admin reference is
// weak: removing the account nulls the column, never the row.
type AdminLog struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	AdminID    *uint  `gorm:"index;constraint:OnDelete:SET NULL" json:"admin_id,omitempty"`
	Action     string `gorm:"not null" json:"action"`
	TargetType string `gorm:"not null;index" json:"target_type"`
	TargetID   *uint  `json:"target_id,omitempty"`
	// Details holds a JSON document describing the action.
	Details   string    `gorm:"type:text" json:"details,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
