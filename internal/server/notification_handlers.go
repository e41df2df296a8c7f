package server

import (
	"campusboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMyNotifications handles GET /api/notifications
func (s *Server) GetMyNotifications(c *fiber.Ctx) error {
	limit, offset := parsePagination(c)
	unreadOnly := c.Query("unread") == "true"

	notifs, err := s.notifRepo.ListByUser(c.Context(), principalFrom(c).ID, unreadOnly, limit, offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{
		"notifications": notifs,
		"limit":         limit,
		"offset":        offset,
	})
}

// GetUnreadCount handles GET /api/notifications/unread-count
func (s *Server) GetUnreadCount(c *fiber.Ctx) error {
	count, err := s.notifRepo.CountUnread(c.Context(), principalFrom(c).ID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (s *Server) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err := s.notifRepo.MarkRead(c.Context(), id, principalFrom(c).ID); err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MarkAllNotificationsRead handles POST /api/notifications/read-all
func (s *Server) MarkAllNotificationsRead(c *fiber.Ctx) error {
	if err := s.notifRepo.MarkAllRead(c.Context(), principalFrom(c).ID); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
