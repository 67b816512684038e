package handlers

import (
	"fmt"

	"github.com/arnold/goalmate-api/internal/middleware"
	"github.com/arnold/goalmate-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) SearchUsers(c *fiber.Ctx) error {
	users, err := h.partners.SearchUsers(c.UserContext(), middleware.GetUserID(c), c.Query("query"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) SendPartnerRequest(c *fiber.Ctx) error {
	targetID, ok := paramUUID(c, "userId")
	if !ok {
		return badRequest(c, "Invalid user ID")
	}

	if _, err := h.partners.SendRequest(c.UserContext(), middleware.GetUserID(c), targetID); err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Partner request sent",
	})
}

func (h *Handler) ListPartnerRequests(c *fiber.Ctx) error {
	requests, err := h.partners.ListRequests(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(requests)
}

func (h *Handler) RespondToPartnerRequest(c *fiber.Ctx) error {
	requestID, ok := paramUUID(c, "requestId")
	if !ok {
		return badRequest(c, "Invalid request ID")
	}

	var req models.RespondRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	resolved, err := h.partners.Respond(c.UserContext(), middleware.GetUserID(c), requestID, req.Status)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Request %s", resolved.Status),
	})
}

func (h *Handler) ListPartnerGoals(c *fiber.Ctx) error {
	goals, err := h.partners.PartnerGoals(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(goals)
}

func (h *Handler) CurrentPartner(c *fiber.Ctx) error {
	partner, err := h.partners.CurrentPartner(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"partner": partner,
	})
}
