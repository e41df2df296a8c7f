// Package featuregate answers "is this feature on for this school" with a
// cache in front of the toggle store. Lookup failures report the feature as
// off; a missing toggle row means the school keeps the defaults.
package featuregate

import (
	"context"
	"errors"
	"log/slog"

	"campusboard/internal/cache"
	"campusboard/internal/models"
	"campusboard/internal/repository"
)

// Gate checks per-school feature flags.
type Gate interface {
	Enabled(ctx context.Context, schoolID uint, feature models.Feature) bool
	Toggle(ctx context.Context, schoolID uint) (*models.SchoolFeatureToggle, error)
}

type gate struct {
	toggles repository.FeatureToggleRepository
	logger  *slog.Logger
}

// NewGate creates a feature gate backed by the toggle repository.
func NewGate(toggles repository.FeatureToggleRepository) Gate {
	return &gate{toggles: toggles, logger: slog.Default()}
}

// Enabled reports whether feature is on for schoolID. Any failure to read
// the toggle is treated as off, so a flaky store can never switch on
// external publishing by accident.
func (g *gate) Enabled(ctx context.Context, schoolID uint, feature models.Feature) bool {
	toggle, err := g.Toggle(ctx, schoolID)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFoundGeneric {
			// No row configured yet, fall back to model defaults.
			return models.DefaultToggle(schoolID).Enabled(feature)
		}
		g.logger.Warn("feature gate lookup failed, treating as disabled",
			"school_id", schoolID,
			"feature", string(feature),
			"error", err)
		return false
	}
	return toggle.Enabled(feature)
}

// Toggle returns the school's toggle row, cache-aside with a short TTL.
func (g *gate) Toggle(ctx context.Context, schoolID uint) (*models.SchoolFeatureToggle, error) {
	var toggle models.SchoolFeatureToggle
	err := cache.Aside(ctx, cache.ToggleKey(schoolID), &toggle, cache.ToggleTTL, func() error {
		fetched, err := g.toggles.GetBySchool(ctx, schoolID)
		if err != nil {
			return err
		}
		toggle = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &toggle, nil
}
