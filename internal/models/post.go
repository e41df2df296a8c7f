package models

import (
	"time"
)

// PostStatus is the moderation state of a post.
type PostStatus string

const (
	StatusPending  PostStatus = "pending"
	StatusApproved PostStatus = "approved"
	StatusRejected PostStatus = "rejected"
	StatusDeleted  PostStatus = "deleted"
)

// Post represents a campus post moving through the moderation lifecycle.
//
// DeletedAt is the canonical deletion signal; StatusDeleted is written
// alongside it for compatibility but every guard checks DeletedAt. Posts are
// never hard-deleted, so DeletedAt is a plain nullable column rather than a
// gorm soft-delete: deleted posts stay queryable and a dev reset can clear it.
type Post struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Title       string  `gorm:"not null" json:"title"`
	Content     string  `gorm:"type:text;not null" json:"content"`
	IsAnonymous bool    `gorm:"not null;default:true" json:"is_anonymous"`
	AuthorID    *uint   `gorm:"index" json:"author_id,omitempty"`
	Author      *User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	SchoolID    uint    `gorm:"not null;index" json:"school_id"`
	School      *School `gorm:"foreignKey:SchoolID" json:"school,omitempty"`
	IsGlobal    bool    `gorm:"not null;default:false;index" json:"is_global"`

	Status          PostStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	IsSensitive     bool       `gorm:"not null;default:false" json:"is_sensitive"`
	SensitiveReason *string    `json:"sensitive_reason,omitempty"`
	ReviewedBy      *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewComment   *string    `json:"review_comment,omitempty"`

	ViewCount    int `gorm:"not null;default:0" json:"view_count"`
	LikeCount    int `gorm:"not null;default:0" json:"like_count"`
	CommentCount int `gorm:"not null;default:0" json:"comment_count"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Deleted reports whether the post is soft-deleted.
func (p *Post) Deleted() bool {
	return p.DeletedAt != nil
}
