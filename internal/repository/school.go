package repository

import (
	"context"
	"errors"

	"campusboard/internal/models"

	"gorm.io/gorm"
)

// SchoolRepository defines the interface for school data operations.
type SchoolRepository interface {
	Create(ctx context.Context, school *models.School) error
	GetByID(ctx context.Context, id uint) (*models.School, error)
	GetBySlug(ctx context.Context, slug string) (*models.School, error)
	List(ctx context.Context, limit, offset int) ([]*models.School, error)
}

type schoolRepository struct {
	db *gorm.DB
}

// NewSchoolRepository creates a new school repository
func NewSchoolRepository(db *gorm.DB) SchoolRepository {
	return &schoolRepository{db: db}
}

func (r *schoolRepository) Create(ctx context.Context, school *models.School) error {
	err := r.db.WithContext(ctx).Create(school).Error
	if err != nil && isDuplicateKey(err) {
		return models.NewConflictError("School slug is already taken")
	}
	return err
}

func (r *schoolRepository) GetByID(ctx context.Context, id uint) (*models.School, error) {
	var school models.School
	err := r.db.WithContext(ctx).First(&school, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("School", id)
		}
		return nil, err
	}
	return &school, nil
}

func (r *schoolRepository) GetBySlug(ctx context.Context, slug string) (*models.School, error) {
	var school models.School
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&school).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("School", slug)
		}
		return nil, err
	}
	return &school, nil
}

func (r *schoolRepository) List(ctx context.Context, limit, offset int) ([]*models.School, error) {
	var schools []*models.School
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&schools).Error
	return schools, err
}
