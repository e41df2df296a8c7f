package featuregate

import (
	"context"
	"errors"
	"testing"

	"campusboard/internal/cache"
	"campusboard/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubToggleRepo struct {
	GetBySchoolFn func(ctx context.Context, schoolID uint) (*models.SchoolFeatureToggle, error)
}

func (s *stubToggleRepo) Create(ctx context.Context, toggle *models.SchoolFeatureToggle) error {
	return nil
}
func (s *stubToggleRepo) Update(ctx context.Context, toggle *models.SchoolFeatureToggle) error {
	return nil
}
func (s *stubToggleRepo) GetBySchool(ctx context.Context, schoolID uint) (*models.SchoolFeatureToggle, error) {
	return s.GetBySchoolFn(ctx, schoolID)
}
func (s *stubToggleRepo) List(ctx context.Context, limit, offset int) ([]*models.SchoolFeatureToggle, error) {
	return nil, nil
}
func (s *stubToggleRepo) TemplateExists(ctx context.Context, templateID uint) (bool, error) {
	return false, nil
}

func TestGate_Enabled(t *testing.T) {
	ctx := context.Background()

	t.Run("Configured toggle", func(t *testing.T) {
		cache.SetClient(nil)
		repo := &stubToggleRepo{
			GetBySchoolFn: func(ctx context.Context, schoolID uint) (*models.SchoolFeatureToggle, error) {
				return &models.SchoolFeatureToggle{
					SchoolID:      schoolID,
					EnableDiscord: true,
					EnableIG:      false,
				}, nil
			},
		}
		g := NewGate(repo)

		assert.True(t, g.Enabled(ctx, 1, models.FeatureDiscord))
		assert.False(t, g.Enabled(ctx, 1, models.FeatureIG))
	})

	t.Run("Missing row uses defaults", func(t *testing.T) {
		cache.SetClient(nil)
		repo := &stubToggleRepo{
			GetBySchoolFn: func(ctx context.Context, schoolID uint) (*models.SchoolFeatureToggle, error) {
				return nil, models.NewNotFoundError("Feature configuration for school", schoolID)
			},
		}
		g := NewGate(repo)

		assert.False(t, g.Enabled(ctx, 1, models.FeatureIG))
		assert.False(t, g.Enabled(ctx, 1, models.FeatureDiscord))
		assert.True(t, g.Enabled(ctx, 1, models.FeatureComments))
		assert.True(t, g.Enabled(ctx, 1, models.FeatureCrossSchool))
	})

	t.Run("Store failure fails closed", func(t *testing.T) {
		cache.SetClient(nil)
		repo := &stubToggleRepo{
			GetBySchoolFn: func(ctx context.Context, schoolID uint) (*models.SchoolFeatureToggle, error) {
				return nil, errors.New("connection refused")
			},
		}
		g := NewGate(repo)

		assert.False(t, g.Enabled(ctx, 1, models.FeatureComments))
		assert.False(t, g.Enabled(ctx, 1, models.FeatureDiscord))
	})
}

func TestGate_Toggle_Cached(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer cache.SetClient(nil)

	ctx := context.Background()
	calls := 0
	repo := &stubToggleRepo{
		GetBySchoolFn: func(ctx context.Context, schoolID uint) (*models.SchoolFeatureToggle, error) {
			calls++
			return &models.SchoolFeatureToggle{SchoolID: schoolID, EnableIG: true}, nil
		},
	}
	g := NewGate(repo)

	first, err := g.Toggle(ctx, 7)
	require.NoError(t, err)
	assert.True(t, first.EnableIG)

	second, err := g.Toggle(ctx, 7)
	require.NoError(t, err)
	assert.True(t, second.EnableIG)

	assert.Equal(t, 1, calls, "second lookup should come from cache")
}
