package server

import (
	"strings"

	"campusboard/internal/models"
	"campusboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetSchools handles GET /api/schools
func (s *Server) GetSchools(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)

	schools, err := s.schoolRepo.List(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"schools": schools,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetSchoolBySlug handles GET /api/schools/:slug
func (s *Server) GetSchoolBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")
	school, err := s.schoolRepo.GetBySlug(c.Context(), slug)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}
	return c.JSON(school)
}

// CreateSchool handles POST /api/admin/schools
func (s *Server) CreateSchool(c *fiber.Ctx) error {
	if err := service.Authorize(principalFrom(c), service.OpManageUsers); err != nil {
		return models.RespondWithError(c, fiber.StatusForbidden, err)
	}

	var req struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(strings.ToLower(req.Slug))
	if req.Name == "" || req.Slug == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Name and slug are required"))
	}

	school := &models.School{Name: req.Name, Slug: req.Slug}
	if err := s.schoolRepo.Create(c.Context(), school); err != nil {
		return models.RespondWithError(c, fiber.StatusConflict, err)
	}
	return c.Status(fiber.StatusCreated).JSON(school)
}

// GetUsers handles GET /api/admin/users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	if err := service.Authorize(principalFrom(c), service.OpManageUsers); err != nil {
		return models.RespondWithError(c, fiber.StatusForbidden, err)
	}
	limit, offset := parsePagination(c)

	users, err := s.userRepo.List(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"users":  users,
		"limit":  limit,
		"offset": offset,
	})
}

// UpdateUserRole handles PUT /api/admin/users/:id/role
func (s *Server) UpdateUserRole(c *fiber.Ctx) error {
	principal := principalFrom(c)
	if err := service.Authorize(principal, service.OpManageUsers); err != nil {
		return models.RespondWithError(c, fiber.StatusForbidden, err)
	}

	userID, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	role := models.Role(req.Role)
	if !models.ValidRole(role) {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unknown role"))
	}
	// Only a dev may hand out the dev role.
	if role == models.RoleDev && principal.Role != models.RoleDev {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError(models.CodeForbidden, "Only a dev can assign the dev role"))
	}

	if err := s.userRepo.UpdateRole(c.Context(), userID, role); err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}

	adminID := principal.ID
	targetID := userID
	if logErr := s.adminLogRepo.Append(c.Context(), &models.AdminLog{
		AdminID:    &adminID,
		Action:     "update_user_role",
		TargetType: "user",
		TargetID:   &targetID,
		Details:    `{"role":"` + string(role) + `"}`,
		IPAddress:  c.IP(),
	}); logErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, logErr)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetAdminLogs handles GET /api/admin/logs
func (s *Server) GetAdminLogs(c *fiber.Ctx) error {
	if err := service.Authorize(principalFrom(c), service.OpReadAuditLog); err != nil {
		return models.RespondWithError(c, fiber.StatusForbidden, err)
	}
	limit, offset := parsePagination(c)

	logs, err := s.adminLogRepo.ListRecent(c.Context(), limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"logs":   logs,
		"limit":  limit,
		"offset": offset,
	})
}
