package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/arnold/goalmate-api/internal/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation", apperr.Validation("op", "Title is required"), fiber.StatusBadRequest, "Title is required"},
		{"not found", apperr.NotFound("op", "Goal"), fiber.StatusNotFound, "Goal not found"},
		{"duplicate", apperr.Duplicate("op", "Partner request already sent"), fiber.StatusConflict, "Partner request already sent"},
		{"conflict", apperr.Conflict("op", "Try again", errors.New("stale")), fiber.StatusConflict, "Try again"},
		{"unauthorized", apperr.Unauthorized("op", "Invalid credentials"), fiber.StatusUnauthorized, "Invalid credentials"},
		{"wrapped kind", fmt.Errorf("handler: %w", apperr.NotFound("op", "User")), fiber.StatusNotFound, "User not found"},
		{"server fault", errors.New("disk full"), fiber.StatusInternalServerError, "Internal server error"},
	}

	h := New(Deps{Log: slog.New(slog.NewTextHandler(io.Discard, nil))})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error { return h.respondError(c, tt.err) })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}
