package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/arnold/goalmate-api/internal/apperr"
	"github.com/arnold/goalmate-api/internal/cache"
	"github.com/arnold/goalmate-api/internal/middleware"
	"github.com/arnold/goalmate-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// CheckFunc reports the health of one dependency.
type CheckFunc func(ctx context.Context) error

type Handler struct {
	auth      *services.AuthService
	goals     *services.GoalService
	partners  *services.PartnerService
	analytics *services.AnalyticsService
	cache     *cache.Cache
	jwt       *middleware.JWT
	checks    map[string]CheckFunc
	log       *slog.Logger
}

type Deps struct {
	Auth      *services.AuthService
	Goals     *services.GoalService
	Partners  *services.PartnerService
	Analytics *services.AnalyticsService
	Cache     *cache.Cache
	JWT       *middleware.JWT
	Checks    map[string]CheckFunc
	Log       *slog.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		auth:      d.Auth,
		goals:     d.Goals,
		partners:  d.Partners,
		analytics: d.Analytics,
		cache:     d.Cache,
		jwt:       d.JWT,
		checks:    d.Checks,
		log:       log,
	}
}

// respondError maps service errors to status codes. Anything that is not a
// known kind is logged and answered with an opaque 500.
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	if !apperr.IsClientError(err) {
		h.log.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	status := fiber.StatusConflict
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, apperr.ErrUnauthorized):
		status = fiber.StatusUnauthorized
	}
	return c.Status(status).JSON(fiber.Map{
		"error": apperr.Message(err),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Health reports the status of every registered dependency.
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	deps := make(fiber.Map, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn("health check failed", "dependency", name, "error", err)
			deps[name] = "down"
			status = fiber.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	overall := "ok"
	if status != fiber.StatusOK {
		overall = "degraded"
	}
	resp := fiber.Map{
		"status":       overall,
		"dependencies": deps,
	}
	if h.cache != nil {
		stats := h.cache.Stats()
		resp["cache"] = fiber.Map{
			"enabled": h.cache.Enabled(),
			"hits":    stats.Hits,
			"misses":  stats.Misses,
		}
	}
	return c.Status(status).JSON(resp)
}
