package server

import (
	"fmt"

	"campusboard/internal/models"
	"campusboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type toggleRequest struct {
	SchoolID uint `json:"school_id"`

	EnableIG          bool `json:"enable_ig"`
	EnableDiscord     bool `json:"enable_discord"`
	EnableComments    bool `json:"enable_comments"`
	EnableCrossSchool bool `json:"enable_cross_school"`

	IGTemplateID  *uint `json:"ig_template_id"`
	IGPublishAuto bool  `json:"ig_publish_auto"`

	DiscordWebhookURL  *string `json:"discord_webhook_url"`
	DiscordChannelName *string `json:"discord_channel_name"`
}

func (r toggleRequest) toInput() service.ToggleInput {
	return service.ToggleInput{
		SchoolID:           r.SchoolID,
		EnableIG:           r.EnableIG,
		EnableDiscord:      r.EnableDiscord,
		EnableComments:     r.EnableComments,
		EnableCrossSchool:  r.EnableCrossSchool,
		IGTemplateID:       r.IGTemplateID,
		IGPublishAuto:      r.IGPublishAuto,
		DiscordWebhookURL:  r.DiscordWebhookURL,
		DiscordChannelName: r.DiscordChannelName,
	}
}

// CreateToggle handles POST /api/admin/toggles
func (s *Server) CreateToggle(c *fiber.Ctx) error {
	var req toggleRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.SchoolID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A school is required"))
	}

	principal := principalFrom(c)
	toggle, err := s.featureService.CreateToggle(c.Context(), principal, req.toInput())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	s.recordToggleChange(c, principal.ID, "create_toggle", req.SchoolID)
	return c.Status(fiber.StatusCreated).JSON(toggle)
}

// UpdateToggle handles PUT /api/admin/toggles/:schoolId
func (s *Server) UpdateToggle(c *fiber.Ctx) error {
	schoolID, err := parseID(c, "schoolId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var req toggleRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.SchoolID = schoolID

	principal := principalFrom(c)
	toggle, err := s.featureService.UpdateToggle(c.Context(), principal, req.toInput())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	s.recordToggleChange(c, principal.ID, "update_toggle", schoolID)
	return c.JSON(toggle)
}

// recordToggleChange appends an audit entry for a toggle mutation. A failed
// append never fails the request itself.
func (s *Server) recordToggleChange(c *fiber.Ctx, adminID uint, action string, schoolID uint) {
	targetID := schoolID
	_ = s.adminLogRepo.Append(c.Context(), &models.AdminLog{
		AdminID:    &adminID,
		Action:     action,
		TargetType: "school",
		TargetID:   &targetID,
		Details:    fmt.Sprintf(`{"school_id":%d}`, schoolID),
		IPAddress:  c.IP(),
	})
}

// GetToggle handles GET /api/admin/toggles/:schoolId
func (s *Server) GetToggle(c *fiber.Ctx) error {
	schoolID, err := parseID(c, "schoolId")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	toggle, err := s.featureService.GetToggle(c.Context(), schoolID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}
	return c.JSON(toggle)
}

// ListToggles handles GET /api/admin/toggles
func (s *Server) ListToggles(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	toggles, err := s.featureService.ListToggles(c.Context(), principalFrom(c), limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusForbidden, err)
	}
	return c.JSON(fiber.Map{
		"toggles": toggles,
		"limit":   limit,
		"offset":  offset,
	})
}
