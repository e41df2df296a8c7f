package models

import (
	"time"
)

// ReviewAction is a moderation action recorded in the review log.
type ReviewAction string

const (
	ActionApprove     ReviewAction = "approve"
	ActionReject      ReviewAction = "reject"
	ActionDelete      ReviewAction = "delete"
	ActionOverride    ReviewAction = "override"
	ActionDevOverride ReviewAction = "dev_override"
	ActionReset       ReviewAction = "reset"
)

// ReviewLog is one immutable entry in a post's moderation audit trail.
// Entries are appended exactly once per state-changing operation and are
// never updated or deleted; the reviewer reference is weak (set null when
// the reviewer account is removed) so audit history outlives accounts.
type ReviewLog struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	PostID     uint         `gorm:"not null;index;constraint:OnDelete:CASCADE" json:"post_id"`
	ReviewerID *uint        `gorm:"index;constraint:OnDelete:SET NULL" json:"reviewer_id,omitempty"`
	Action     ReviewAction `gorm:"type:varchar(16);not null;index" json:"action"`
	// OverrideAction records the underlying action when Action is override
	// or dev_override.
	OverrideAction *ReviewAction `gorm:"type:varchar(16)" json:"override_action,omitempty"`
	Reason         string        `gorm:"not null" json:"reason"`
	CreatedAt      time.Time     `json:"created_at"`
}
