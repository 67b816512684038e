package routes

import (
	"time"

	"github.com/arnold/goalmate-api/internal/handlers"
	"github.com/arnold/goalmate-api/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Options struct {
	// AuthRateLimit caps register/login attempts per client IP per minute.
	// Zero disables the limit.
	AuthRateLimit int
}

func Setup(app *fiber.App, h *handlers.Handler, jwt *middleware.JWT, opts Options) {
	app.Get("/health", h.Health)

	api := app.Group("/api")

	limited := func(next fiber.Handler) []fiber.Handler {
		return []fiber.Handler{next}
	}
	if opts.AuthRateLimit > 0 {
		limit := limiter.New(limiter.Config{
			Max:        opts.AuthRateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many attempts, try again later",
				})
			},
		})
		limited = func(next fiber.Handler) []fiber.Handler {
			return []fiber.Handler{limit, next}
		}
	}

	auth := api.Group("/auth")
	auth.Post("/register", limited(h.Register)...)
	auth.Post("/login", limited(h.Login)...)
	auth.Get("/me", jwt.Protected(), h.GetMe)

	goals := api.Group("/goals", jwt.Protected())
	goals.Post("/", h.CreateGoal)
	goals.Get("/", h.ListGoals)
	goals.Get("/analytics", h.GetAnalytics)
	goals.Patch("/:id/progress", h.RecordProgress)
	goals.Post("/:id/milestones", h.AddMilestone)
	goals.Patch("/:id/milestones/:milestoneId", h.SetMilestone)

	users := api.Group("/users", jwt.Protected())
	users.Get("/search", h.SearchUsers)
	users.Post("/partner-request/:userId", h.SendPartnerRequest)
	users.Get("/partner-requests", h.ListPartnerRequests)
	users.Patch("/partner-request/:requestId", h.RespondToPartnerRequest)
	users.Get("/partner-goals", h.ListPartnerGoals)
	users.Get("/current-partner", h.CurrentPartner)
}
