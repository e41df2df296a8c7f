package repository

import (
	"context"
	"errors"
	"strings"

	"campusboard/internal/models"

	"gorm.io/gorm"
)

// VoteTally is the aggregate outcome of cross-school voting on one post.
type VoteTally struct {
	Total    int64
	Approves int64
}

// GlobalReviewLogRepository records cross-school votes and overrides.
//
// Vote uniqueness is enforced by a partial unique index on
// (post_id, user_id) for rows with action = 'vote', so a duplicate vote
// fails at the database even under concurrent requests.
type GlobalReviewLogRepository interface {
	Append(ctx context.Context, log *models.GlobalReviewLog) error
	Tally(ctx context.Context, postID uint) (VoteTally, error)
	ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.GlobalReviewLog, error)
	ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.GlobalReviewLog, error)
}

type globalReviewLogRepository struct {
	db *gorm.DB
}

// NewGlobalReviewLogRepository creates a new global review log repository
func NewGlobalReviewLogRepository(db *gorm.DB) GlobalReviewLogRepository {
	return &globalReviewLogRepository{db: db}
}

func (r *globalReviewLogRepository) Append(ctx context.Context, log *models.GlobalReviewLog) error {
	err := r.db.WithContext(ctx).Create(log).Error
	if err != nil && isDuplicateKey(err) {
		return models.NewInvalidStateError(models.CodeAlreadyVoted, "You have already voted on this post")
	}
	return err
}

func (r *globalReviewLogRepository) Tally(ctx context.Context, postID uint) (VoteTally, error) {
	var tally VoteTally
	base := r.db.WithContext(ctx).Model(&models.GlobalReviewLog{}).
		Where("post_id = ? AND action = ?", postID, models.GlobalActionVote)
	if err := base.Count(&tally.Total).Error; err != nil {
		return tally, err
	}
	err := r.db.WithContext(ctx).Model(&models.GlobalReviewLog{}).
		Where("post_id = ? AND action = ? AND vote = ?", postID, models.GlobalActionVote, true).
		Count(&tally.Approves).Error
	return tally, err
}

func (r *globalReviewLogRepository) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.GlobalReviewLog, error) {
	var logs []*models.GlobalReviewLog
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}

func (r *globalReviewLogRepository) ListByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.GlobalReviewLog, error) {
	var logs []*models.GlobalReviewLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}

// isDuplicateKey recognizes unique constraint violations from both the
// gorm error translation layer and raw driver messages (sqlite in tests).
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
