package models

import (
	"time"
)

// NotificationType tags the reason a notification was produced.
type NotificationType string

const (
	NotificationPostStatusChange NotificationType = "post_status_change"
	NotificationReviewOverride   NotificationType = "review_override"
	NotificationPostApproved     NotificationType = "post_approved"
)

// Notification is a best-effort message to a user about a moderation event.
// Delivery is handled outside the core; rows here are the durable record.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index;constraint:OnDelete:CASCADE" json:"user_id"`
	Title     string           `gorm:"not null" json:"title"`
	Content   string           `gorm:"type:text;not null" json:"content"`
	Type      NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	IsRead    bool             `gorm:"not null;default:false;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
