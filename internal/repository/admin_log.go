package repository

import (
	"context"

	"campusboard/internal/models"

	"gorm.io/gorm"
)

// AdminLogRepository is an append-only record of privileged actions.
type AdminLogRepository interface {
	Append(ctx context.Context, log *models.AdminLog) error
	ListRecent(ctx context.Context, limit, offset int) ([]*models.AdminLog, error)
	ListByTarget(ctx context.Context, targetType string, targetID uint, limit, offset int) ([]*models.AdminLog, error)
}

type adminLogRepository struct {
	db *gorm.DB
}

// NewAdminLogRepository creates a new admin log repository
func NewAdminLogRepository(db *gorm.DB) AdminLogRepository {
	return &adminLogRepository{db: db}
}

func (r *adminLogRepository) Append(ctx context.Context, log *models.AdminLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *adminLogRepository) ListRecent(ctx context.Context, limit, offset int) ([]*models.AdminLog, error) {
	var logs []*models.AdminLog
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}

func (r *adminLogRepository) ListByTarget(ctx context.Context, targetType string, targetID uint, limit, offset int) ([]*models.AdminLog, error) {
	var logs []*models.AdminLog
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}
