package server

import (
	"campusboard/internal/models"
	"campusboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// VoteGlobalPost handles POST /api/votes/posts/:id
func (s *Server) VoteGlobalPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var req struct {
		Vote   *bool  `json:"vote"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Vote == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A vote value is required"))
	}

	result, err := s.voteService.Vote(c.Context(), principalFrom(c), service.VoteInput{
		PostID: postID,
		Vote:   *req.Vote,
		Reason: req.Reason,
	})
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	return c.JSON(result)
}

// GetVoteTally handles GET /api/votes/posts/:id/tally
func (s *Server) GetVoteTally(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	tally, err := s.voteService.Tally(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"post_id":       postID,
		"total_votes":   tally.Total,
		"approve_votes": tally.Approves,
	})
}

// GetMyVotes handles GET /api/votes/mine
func (s *Server) GetMyVotes(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	logs, err := s.voteService.UserLogs(c.Context(), principalFrom(c).ID, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"logs":   logs,
		"limit":  limit,
		"offset": offset,
	})
}

// GetGlobalReviewLogs handles GET /api/votes/posts/:id/logs
func (s *Server) GetGlobalReviewLogs(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	limit, offset := parsePagination(c)

	logs, err := s.voteService.Logs(c.Context(), postID, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"logs":   logs,
		"limit":  limit,
		"offset": offset,
	})
}
