package service

import (
	"context"

	"campusboard/internal/cache"
	"campusboard/internal/models"
	"campusboard/internal/repository"
)

// FeatureService manages per-school feature toggles. Reads go through the
// feature gate's cache; every write invalidates the school's cached row so
// a flipped switch takes effect on the next request.
type FeatureService struct {
	toggleRepo repository.FeatureToggleRepository
}

type ToggleInput struct {
	SchoolID uint

	EnableIG          bool
	EnableDiscord     bool
	EnableComments    bool
	EnableCrossSchool bool

	IGTemplateID  *uint
	IGPublishAuto bool

	DiscordWebhookURL  *string
	DiscordChannelName *string
}

func NewFeatureService(toggleRepo repository.FeatureToggleRepository) *FeatureService {
	return &FeatureService{toggleRepo: toggleRepo}
}

// CreateToggle creates the single toggle row for a school.
func (s *FeatureService) CreateToggle(ctx context.Context, principal models.Principal, in ToggleInput) (*models.SchoolFeatureToggle, error) {
	if err := Authorize(principal, OpManageToggles); err != nil {
		return nil, err
	}
	if err := s.validateTemplate(ctx, in); err != nil {
		return nil, err
	}

	toggle := applyToggleInput(&models.SchoolFeatureToggle{SchoolID: in.SchoolID}, in)
	if err := s.toggleRepo.Create(ctx, toggle); err != nil {
		return nil, err
	}
	cache.InvalidateToggle(ctx, in.SchoolID)
	return toggle, nil
}

// UpdateToggle replaces the school's toggle configuration.
func (s *FeatureService) UpdateToggle(ctx context.Context, principal models.Principal, in ToggleInput) (*models.SchoolFeatureToggle, error) {
	if err := Authorize(principal, OpManageToggles); err != nil {
		return nil, err
	}
	if err := s.validateTemplate(ctx, in); err != nil {
		return nil, err
	}

	toggle, err := s.toggleRepo.GetBySchool(ctx, in.SchoolID)
	if err != nil {
		return nil, err
	}
	toggle = applyToggleInput(toggle, in)
	if err := s.toggleRepo.Update(ctx, toggle); err != nil {
		return nil, err
	}
	cache.InvalidateToggle(ctx, in.SchoolID)
	return toggle, nil
}

func (s *FeatureService) GetToggle(ctx context.Context, schoolID uint) (*models.SchoolFeatureToggle, error) {
	return s.toggleRepo.GetBySchool(ctx, schoolID)
}

func (s *FeatureService) ListToggles(ctx context.Context, principal models.Principal, limit, offset int) ([]*models.SchoolFeatureToggle, error) {
	if err := Authorize(principal, OpManageToggles); err != nil {
		return nil, err
	}
	return s.toggleRepo.List(ctx, limit, offset)
}

// validateTemplate rejects IG configuration pointing at a template that does
// not exist.
func (s *FeatureService) validateTemplate(ctx context.Context, in ToggleInput) error {
	if !in.EnableIG || in.IGTemplateID == nil {
		return nil
	}
	exists, err := s.toggleRepo.TemplateExists(ctx, *in.IGTemplateID)
	if err != nil {
		return err
	}
	if !exists {
		return models.NewNotFoundError("IG template", *in.IGTemplateID)
	}
	return nil
}

func applyToggleInput(toggle *models.SchoolFeatureToggle, in ToggleInput) *models.SchoolFeatureToggle {
	toggle.EnableIG = in.EnableIG
	toggle.EnableDiscord = in.EnableDiscord
	toggle.EnableComments = in.EnableComments
	toggle.EnableCrossSchool = in.EnableCrossSchool
	toggle.IGTemplateID = in.IGTemplateID
	toggle.IGPublishAuto = in.IGPublishAuto
	toggle.DiscordWebhookURL = in.DiscordWebhookURL
	toggle.DiscordChannelName = in.DiscordChannelName
	return toggle
}
