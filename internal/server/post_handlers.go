package server

import (
	"campusboard/internal/models"
	"campusboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		Content     string `json:"content"`
		IsAnonymous bool   `json:"is_anonymous"`
		IsGlobal    bool   `json:"is_global"`
		SchoolID    *uint  `json:"school_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	principal := principalFrom(c)
	schoolID := principal.SchoolID
	if req.SchoolID != nil {
		schoolID = *req.SchoolID
	}
	if schoolID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A school is required"))
	}

	in := service.CreatePostInput{
		Title:       req.Title,
		Content:     req.Content,
		IsAnonymous: req.IsAnonymous,
		IsGlobal:    req.IsGlobal,
		SchoolID:    schoolID,
	}
	if !req.IsAnonymous {
		authorID := principal.ID
		in.AuthorID = &authorID
	}

	post, err := s.postService.CreatePost(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	in := service.ListPostsInput{Limit: limit, Offset: offset}
	if v := c.QueryInt("school_id", 0); v > 0 {
		schoolID := uint(v)
		in.SchoolID = &schoolID
	}
	if raw := c.Query("status"); raw != "" {
		status := models.PostStatus(raw)
		in.Status = &status
	}
	if raw := c.Query("global"); raw != "" {
		global := raw == "true" || raw == "1"
		in.Global = &global
	}

	posts, err := s.postService.ListPosts(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"posts":  posts,
		"limit":  limit,
		"offset": offset,
	})
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	post, err := s.postService.GetPost(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}
	return c.JSON(post)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.postService.LikePost(c.Context(), postID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// UnlikePost handles DELETE /api/posts/:id/like
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.postService.UnlikePost(c.Context(), postID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
