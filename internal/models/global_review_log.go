package models

import (
	"time"
)

// GlobalReviewAction is a cross-school review action.
type GlobalReviewAction string

const (
	GlobalActionVote          GlobalReviewAction = "vote"
	GlobalActionOverride      GlobalReviewAction = "override"
	GlobalActionDevOverride   GlobalReviewAction = "dev_override"
	GlobalActionAppeal        GlobalReviewAction = "appeal"
	GlobalActionAppealApprove GlobalReviewAction = "appeal_approve"
	GlobalActionAppealReject  GlobalReviewAction = "appeal_reject"
)

// GlobalReviewLog records one cross-school review event. Vote is tri-state:
// true approve, false reject, nil abstain.
//
// The partial unique index on (post_id, user_id) for vote rows is what makes
// duplicate voting a storage-level conflict instead of a check-then-act race:
// two concurrent votes by the same reviewer cannot both commit.
type GlobalReviewLog struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	PostID    uint               `gorm:"not null;index;uniqueIndex:idx_global_vote_once,where:action = 'vote';constraint:OnDelete:CASCADE" json:"post_id"`
	UserID    *uint              `gorm:"uniqueIndex:idx_global_vote_once,where:action = 'vote';constraint:OnDelete:SET NULL" json:"user_id,omitempty"`
	Action    GlobalReviewAction `gorm:"type:varchar(20);not null;index" json:"action"`
	Vote      *bool              `json:"vote,omitempty"`
	Reason    string             `json:"reason"`
	CreatedAt time.Time          `json:"created_at"`
}
