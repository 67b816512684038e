package handlers

import (
	"github.com/arnold/goalmate-api/internal/middleware"
	"github.com/arnold/goalmate-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.auth.Register(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
		Token: token,
		User:  user.Public(),
	})
}

func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	user, err := h.auth.Login(c.UserContext(), req)
	if err != nil {
		return h.respondError(c, err)
	}

	token, err := h.jwt.GenerateToken(user.ID, user.Email)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(models.AuthResponse{
		Token: token,
		User:  user.Public(),
	})
}

func (h *Handler) GetMe(c *fiber.Ctx) error {
	user, err := h.auth.Me(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"id":                    user.ID,
		"name":                  user.Name,
		"email":                 user.Email,
		"avatar":                user.Avatar,
		"score":                 user.Score,
		"accountabilityPartner": user.AccountabilityPartnerID,
		"createdAt":             user.CreatedAt,
	})
}
