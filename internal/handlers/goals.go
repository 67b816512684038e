package handlers

import (
	"github.com/arnold/goalmate-api/internal/middleware"
	"github.com/arnold/goalmate-api/internal/models"
	"github.com/gofiber/fiber/v2"
)

type milestoneBody struct {
	Title      string `json:"title"`
	TargetDate string `json:"targetDate"`
}

type createGoalBody struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    models.Category `json:"category"`
	TargetDate  string          `json:"targetDate"`
	Priority    models.Priority `json:"priority"`
	IsPublic    bool            `json:"isPublic"`
	Milestones  []milestoneBody `json:"milestones"`
}

func (h *Handler) CreateGoal(c *fiber.Ctx) error {
	var body createGoalBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	target, err := parseDate(body.TargetDate)
	if err != nil {
		return badRequest(c, "Invalid target date")
	}

	in := models.GoalInput{
		Title:       body.Title,
		Description: body.Description,
		Category:    body.Category,
		TargetDate:  target,
		Priority:    body.Priority,
		IsPublic:    body.IsPublic,
	}
	for _, m := range body.Milestones {
		date, err := parseDate(m.TargetDate)
		if err != nil {
			return badRequest(c, "Invalid milestone target date")
		}
		in.Milestones = append(in.Milestones, models.MilestoneInput{Title: m.Title, TargetDate: date})
	}

	goal, err := h.goals.CreateGoal(c.UserContext(), middleware.GetUserID(c), in)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func (h *Handler) ListGoals(c *fiber.Ctx) error {
	list, err := h.goals.ListGoals(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) RecordProgress(c *fiber.Ctx) error {
	goalID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid goal ID")
	}

	var req models.ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Progress == nil {
		return badRequest(c, "Progress is required")
	}

	goal, err := h.goals.RecordProgress(c.UserContext(), middleware.GetUserID(c), goalID, *req.Progress, req.Notes)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(goal)
}

func (h *Handler) GetAnalytics(c *fiber.Ctx) error {
	a, err := h.analytics.Get(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(a)
}

func (h *Handler) AddMilestone(c *fiber.Ctx) error {
	goalID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid goal ID")
	}

	var body milestoneBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	target, err := parseDate(body.TargetDate)
	if err != nil {
		return badRequest(c, "Invalid milestone target date")
	}

	goal, err := h.goals.AddMilestone(c.UserContext(), middleware.GetUserID(c), goalID, body.Title, target)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(goal)
}

func (h *Handler) SetMilestone(c *fiber.Ctx) error {
	goalID, ok := paramUUID(c, "id")
	if !ok {
		return badRequest(c, "Invalid goal ID")
	}
	milestoneID, ok := paramUUID(c, "milestoneId")
	if !ok {
		return badRequest(c, "Invalid milestone ID")
	}

	var req models.MilestoneUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Completed == nil {
		return badRequest(c, "Completed is required")
	}

	goal, err := h.goals.SetMilestoneCompleted(c.UserContext(), middleware.GetUserID(c), goalID, milestoneID, *req.Completed)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(goal)
}
