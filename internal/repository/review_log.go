package repository

import (
	"context"

	"campusboard/internal/models"

	"gorm.io/gorm"
)

// ReviewLogFilter narrows review log listings.
type ReviewLogFilter struct {
	PostID     *uint
	ReviewerID *uint
	Action     *models.ReviewAction
}

// ReviewLogRepository records and queries school moderation history.
type ReviewLogRepository interface {
	Append(ctx context.Context, log *models.ReviewLog) error
	List(ctx context.Context, filter ReviewLogFilter, limit, offset int) ([]*models.ReviewLog, error)
}

type reviewLogRepository struct {
	db *gorm.DB
}

// NewReviewLogRepository creates a new review log repository
func NewReviewLogRepository(db *gorm.DB) ReviewLogRepository {
	return &reviewLogRepository{db: db}
}

func (r *reviewLogRepository) Append(ctx context.Context, log *models.ReviewLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *reviewLogRepository) List(ctx context.Context, filter ReviewLogFilter, limit, offset int) ([]*models.ReviewLog, error) {
	q := r.db.WithContext(ctx).Model(&models.ReviewLog{})
	if filter.PostID != nil {
		q = q.Where("post_id = ?", *filter.PostID)
	}
	if filter.ReviewerID != nil {
		q = q.Where("reviewer_id = ?", *filter.ReviewerID)
	}
	if filter.Action != nil {
		q = q.Where("action = ?", *filter.Action)
	}

	var logs []*models.ReviewLog
	err := q.Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}
