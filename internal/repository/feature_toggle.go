package repository

import (
	"context"
	"errors"

	"campusboard/internal/models"

	"gorm.io/gorm"
)

// FeatureToggleRepository manages per-school feature configuration.
type FeatureToggleRepository interface {
	Create(ctx context.Context, toggle *models.SchoolFeatureToggle) error
	Update(ctx context.Context, toggle *models.SchoolFeatureToggle) error
	GetBySchool(ctx context.Context, schoolID uint) (*models.SchoolFeatureToggle, error)
	List(ctx context.Context, limit, offset int) ([]*models.SchoolFeatureToggle, error)
	TemplateExists(ctx context.Context, templateID uint) (bool, error)
}

type featureToggleRepository struct {
	db *gorm.DB
}

// NewFeatureToggleRepository creates a new feature toggle repository
func NewFeatureToggleRepository(db *gorm.DB) FeatureToggleRepository {
	return &featureToggleRepository{db: db}
}

func (r *featureToggleRepository) Create(ctx context.Context, toggle *models.SchoolFeatureToggle) error {
	err := r.db.WithContext(ctx).Create(toggle).Error
	if err != nil && isDuplicateKey(err) {
		return models.NewConflictError("School already has a feature configuration")
	}
	return err
}

func (r *featureToggleRepository) Update(ctx context.Context, toggle *models.SchoolFeatureToggle) error {
	return r.db.WithContext(ctx).Save(toggle).Error
}

func (r *featureToggleRepository) GetBySchool(ctx context.Context, schoolID uint) (*models.SchoolFeatureToggle, error) {
	var toggle models.SchoolFeatureToggle
	err := r.db.WithContext(ctx).
		Where("school_id = ?", schoolID).
		First(&toggle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Feature configuration for school", schoolID)
		}
		return nil, err
	}
	return &toggle, nil
}

func (r *featureToggleRepository) List(ctx context.Context, limit, offset int) ([]*models.SchoolFeatureToggle, error) {
	var toggles []*models.SchoolFeatureToggle
	err := r.db.WithContext(ctx).
		Order("school_id ASC").
		Limit(limit).
		Offset(offset).
		Find(&toggles).Error
	return toggles, err
}

func (r *featureToggleRepository) TemplateExists(ctx context.Context, templateID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.IGTemplate{}).
		Where("id = ?", templateID).
		Count(&count).Error
	return count > 0, err
}
