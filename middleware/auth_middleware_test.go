package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appWithRole(role string, guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/guarded", func(c *fiber.Ctx) error {
		if role != "" {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
				"user_id": "8b2e54aa-7a39-4dd0-9f41-4c1d6d6a50cc",
				"role":    role,
			})
			c.Locals("user", token)
		}
		return c.Next()
	}, guard, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRoles(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		guard fiber.Handler
		want  int
	}{
		{"admin passes admin gate", "admin", AdminRequired(), fiber.StatusOK},
		{"student blocked at admin gate", "student", AdminRequired(), fiber.StatusForbidden},
		{"tutor passes tutor gate", "tutor", TutorRequired(), fiber.StatusOK},
		{"admin passes tutor gate", "admin", TutorRequired(), fiber.StatusOK},
		{"student blocked at tutor gate", "student", TutorRequired(), fiber.StatusForbidden},
		{"student passes student gate", "student", StudentRequired(), fiber.StatusOK},
		{"tutor blocked at student gate", "tutor", StudentRequired(), fiber.StatusForbidden},
		{"missing token is forbidden", "", AdminRequired(), fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := appWithRole(tt.role, tt.guard)
			resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestCallerClaims(t *testing.T) {
	app := fiber.New()
	app.Get("/whoami", func(c *fiber.Ctx) error {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"user_id": "8b2e54aa-7a39-4dd0-9f41-4c1d6d6a50cc",
			"role":    "tutor",
		})
		c.Locals("user", token)
		return c.JSON(fiber.Map{"id": CallerID(c), "role": CallerRole(c)})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
