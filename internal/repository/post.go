// Package repository implements data access for the application's models.
package repository

import (
	"context"
	"errors"
	"time"

	"campusboard/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows post listings.
type PostFilter struct {
	SchoolID *uint
	Status   *models.PostStatus
	Global   *bool
}

// PostRepository defines the interface for post data operations.
//
// The three mutation levels mirror the moderation authority levels:
// TransitionFromPending is the guarded school-review path,
// OverrideFields skips the pending guard but respects soft deletion, and
// ForceFields is unconditional (developer only). The guarded variants are
// conditional UPDATEs checked via RowsAffected, so two concurrent reviews
// of the same post cannot both succeed.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error)
	TransitionFromPending(ctx context.Context, id uint, fields map[string]interface{}) error
	OverrideFields(ctx context.Context, id uint, fields map[string]interface{}) error
	ForceFields(ctx context.Context, id uint, fields map[string]interface{}) error
	IncrementView(ctx context.Context, id uint) error
	Like(ctx context.Context, id uint) error
	Unlike(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("School").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewPostNotFoundError(id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, limit, offset int) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).Preload("School")
	if filter.SchoolID != nil {
		q = q.Where("school_id = ?", *filter.SchoolID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Global != nil {
		q = q.Where("is_global = ?", *filter.Global)
	}

	var posts []*models.Post
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

// TransitionFromPending applies fields only while the post is still pending
// and not soft-deleted. A zero-row result means another reviewer won the
// race (or the post was deleted meanwhile) and surfaces as a conflict.
func (r *postRepository) TransitionFromPending(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND status = ? AND deleted_at IS NULL", id, models.StatusPending).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewConflictError("Post is no longer pending")
	}
	return nil
}

// OverrideFields applies fields to any post that is not soft-deleted.
func (r *postRepository) OverrideFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewInvalidStateError(models.CodeAlreadyDeleted, "Post has been deleted")
	}
	return nil
}

// ForceFields applies fields unconditionally.
func (r *postRepository) ForceFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewPostNotFoundError(id)
	}
	return nil
}

func (r *postRepository) IncrementView(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *postRepository) Like(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
}

func (r *postRepository) Unlike(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND like_count > 0", id).
		UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
}

// ResetFields is the canonical field set restored by a developer reset.
func ResetFields(now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"status":           models.StatusPending,
		"reviewed_by":      nil,
		"reviewed_at":      nil,
		"review_comment":   nil,
		"is_sensitive":     false,
		"sensitive_reason": nil,
		"deleted_at":       nil,
		"updated_at":       now,
	}
}
