package server

import (
	"campusboard/internal/models"
	"campusboard/internal/repository"
	"campusboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReviewPost handles POST /api/reviews/posts/:id
func (s *Server) ReviewPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var req struct {
		Action string `json:"action"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.reviewService.ReviewPost(c.Context(), principalFrom(c), service.ReviewPostInput{
		PostID: postID,
		Action: models.ReviewAction(req.Action),
		Reason: req.Reason,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	return c.JSON(post)
}

// OverridePost handles POST /api/reviews/posts/:id/override
func (s *Server) OverridePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var req struct {
		Action string `json:"action"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.reviewService.OverridePost(c.Context(), principalFrom(c), service.OverridePostInput{
		PostID:    postID,
		Action:    models.ReviewAction(req.Action),
		Reason:    req.Reason,
		IPAddress: c.IP(),
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	return c.JSON(post)
}

// DevForcePost handles POST /api/dev/posts/:id/force
func (s *Server) DevForcePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var req struct {
		Action string `json:"action"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.reviewService.DevForce(c.Context(), principalFrom(c), service.DevForceInput{
		PostID:    postID,
		Action:    models.ReviewAction(req.Action),
		Reason:    req.Reason,
		IPAddress: c.IP(),
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	return c.JSON(post)
}

// GetReviewLogs handles GET /api/reviews/logs and
// GET /api/reviews/posts/:id/logs
func (s *Server) GetReviewLogs(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	filter := repository.ReviewLogFilter{}
	if raw := c.Params("id"); raw != "" {
		postID, err := parseID(c, "id")
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		}
		filter.PostID = &postID
	}
	if v := c.QueryInt("reviewer_id", 0); v > 0 {
		reviewerID := uint(v)
		filter.ReviewerID = &reviewerID
	}
	if raw := c.Query("action"); raw != "" {
		action := models.ReviewAction(raw)
		filter.Action = &action
	}

	logs, err := s.reviewService.Logs(c.Context(), filter, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"logs":   logs,
		"limit":  limit,
		"offset": offset,
	})
}
