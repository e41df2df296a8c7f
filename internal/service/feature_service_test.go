package service

import (
	"context"
	"testing"

	"campusboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memToggleRepo keeps one toggle row per school, like the unique school_id
// constraint does in postgres.
type memToggleRepo struct {
	toggles   map[uint]*models.SchoolFeatureToggle
	templates map[uint]bool
}

func newMemToggleRepo() *memToggleRepo {
	return &memToggleRepo{
		toggles:   map[uint]*models.SchoolFeatureToggle{},
		templates: map[uint]bool{},
	}
}

func (r *memToggleRepo) Create(_ context.Context, toggle *models.SchoolFeatureToggle) error {
	if _, ok := r.toggles[toggle.SchoolID]; ok {
		return models.NewConflictError("School already has a feature configuration")
	}
	toggle.ID = uint(len(r.toggles) + 1)
	r.toggles[toggle.SchoolID] = toggle
	return nil
}

func (r *memToggleRepo) Update(_ context.Context, toggle *models.SchoolFeatureToggle) error {
	r.toggles[toggle.SchoolID] = toggle
	return nil
}

func (r *memToggleRepo) GetBySchool(_ context.Context, schoolID uint) (*models.SchoolFeatureToggle, error) {
	toggle, ok := r.toggles[schoolID]
	if !ok {
		return nil, models.NewNotFoundError("Feature configuration for school", schoolID)
	}
	return toggle, nil
}

func (r *memToggleRepo) List(_ context.Context, _, _ int) ([]*models.SchoolFeatureToggle, error) {
	out := make([]*models.SchoolFeatureToggle, 0, len(r.toggles))
	for _, t := range r.toggles {
		out = append(out, t)
	}
	return out, nil
}

func (r *memToggleRepo) TemplateExists(_ context.Context, templateID uint) (bool, error) {
	return r.templates[templateID], nil
}

func TestFeatureService_CreateToggle(t *testing.T) {
	ctx := context.Background()
	admin := models.Principal{ID: 1, Role: models.RoleAdmin, SchoolID: 1}

	t.Run("Success", func(t *testing.T) {
		repo := newMemToggleRepo()
		svc := NewFeatureService(repo)

		toggle, err := svc.CreateToggle(ctx, admin, ToggleInput{
			SchoolID:      1,
			EnableDiscord: true,
		})
		require.NoError(t, err)
		assert.True(t, toggle.EnableDiscord)
		assert.False(t, toggle.EnableIG)

		_, err = repo.GetBySchool(ctx, 1)
		assert.NoError(t, err)
	})

	t.Run("Second row for the same school conflicts", func(t *testing.T) {
		repo := newMemToggleRepo()
		svc := NewFeatureService(repo)

		_, err := svc.CreateToggle(ctx, admin, ToggleInput{SchoolID: 1})
		require.NoError(t, err)

		_, err = svc.CreateToggle(ctx, admin, ToggleInput{SchoolID: 1})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
	})

	t.Run("IG enabled with unknown template", func(t *testing.T) {
		repo := newMemToggleRepo()
		svc := NewFeatureService(repo)
		templateID := uint(404)

		_, err := svc.CreateToggle(ctx, admin, ToggleInput{
			SchoolID:     1,
			EnableIG:     true,
			IGTemplateID: &templateID,
		})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})

	t.Run("IG enabled with known template", func(t *testing.T) {
		repo := newMemToggleRepo()
		repo.templates[7] = true
		svc := NewFeatureService(repo)
		templateID := uint(7)

		toggle, err := svc.CreateToggle(ctx, admin, ToggleInput{
			SchoolID:      1,
			EnableIG:      true,
			IGTemplateID:  &templateID,
			IGPublishAuto: true,
		})
		require.NoError(t, err)
		assert.True(t, toggle.IGPublishAuto)
	})

	t.Run("Reviewer may not manage toggles", func(t *testing.T) {
		svc := NewFeatureService(newMemToggleRepo())

		_, err := svc.CreateToggle(ctx,
			models.Principal{ID: 2, Role: models.RoleReviewer, SchoolID: 1},
			ToggleInput{SchoolID: 1})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeForbidden, appErr.Code)
	})
}

func TestFeatureService_UpdateToggle(t *testing.T) {
	ctx := context.Background()
	admin := models.Principal{ID: 1, Role: models.RoleAdmin, SchoolID: 1}

	t.Run("Replaces the configuration", func(t *testing.T) {
		repo := newMemToggleRepo()
		svc := NewFeatureService(repo)

		_, err := svc.CreateToggle(ctx, admin, ToggleInput{
			SchoolID:      1,
			EnableDiscord: true,
		})
		require.NoError(t, err)

		url := "https://discord.example/webhook"
		toggle, err := svc.UpdateToggle(ctx, admin, ToggleInput{
			SchoolID:          1,
			EnableDiscord:     true,
			EnableCrossSchool: true,
			DiscordWebhookURL: &url,
		})
		require.NoError(t, err)
		assert.True(t, toggle.EnableCrossSchool)
		require.NotNil(t, toggle.DiscordWebhookURL)
		assert.Equal(t, url, *toggle.DiscordWebhookURL)
	})

	t.Run("Unknown school", func(t *testing.T) {
		svc := NewFeatureService(newMemToggleRepo())

		_, err := svc.UpdateToggle(ctx, admin, ToggleInput{SchoolID: 9})
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
	})
}
