package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/obinna925/course_management/database"
	"github.com/obinna925/course_management/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthApp(t *testing.T) *fiber.App {
	t.Helper()
	setupHandlerTestDB(t)

	app := fiber.New()
	app.Post("/api/v1/auth/register", RegisterUser)
	app.Post("/api/v1/auth/login", LoginUser)
	app.Post("/api/v1/auth/forgot-password", ForgotPassword)
	app.Post("/api/v1/auth/reset-password", ResetPassword)
	return app
}

type testResponse struct {
	Code int
	Body []byte
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) testResponse {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return testResponse{Code: resp.StatusCode, Body: raw}
}

func TestRegisterUser(t *testing.T) {
	t.Run("creates a student by default", func(t *testing.T) {
		app := setupAuthApp(t)

		rec := postJSON(t, app, "/api/v1/auth/register", fiber.Map{
			"full_name": "Ada Obi",
			"email":     "ada@example.com",
			"password":  "secret123",
		})
		assert.Equal(t, fiber.StatusCreated, rec.Code)

		var resp UserResponse
		require.NoError(t, json.Unmarshal(rec.Body, &resp))
		assert.Equal(t, "student", resp.Role)
		assert.Equal(t, "ada@example.com", resp.Email)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		app := setupAuthApp(t)

		payload := fiber.Map{
			"full_name": "Ada Obi",
			"email":     "ada@example.com",
			"password":  "secret123",
		}
		rec := postJSON(t, app, "/api/v1/auth/register", payload)
		require.Equal(t, fiber.StatusCreated, rec.Code)

		rec = postJSON(t, app, "/api/v1/auth/register", payload)
		assert.Equal(t, fiber.StatusConflict, rec.Code)
	})

	t.Run("admin role cannot be self-assigned", func(t *testing.T) {
		app := setupAuthApp(t)

		rec := postJSON(t, app, "/api/v1/auth/register", fiber.Map{
			"full_name": "Sneaky",
			"email":     "sneaky@example.com",
			"password":  "secret123",
			"role":      "admin",
		})
		assert.Equal(t, fiber.StatusBadRequest, rec.Code)
	})
}

func TestLoginUser(t *testing.T) {
	t.Run("issues a token for valid credentials", func(t *testing.T) {
		app := setupAuthApp(t)

		rec := postJSON(t, app, "/api/v1/auth/register", fiber.Map{
			"full_name": "Ada Obi",
			"email":     "ada@example.com",
			"password":  "secret123",
		})
		require.Equal(t, fiber.StatusCreated, rec.Code)

		rec = postJSON(t, app, "/api/v1/auth/login", fiber.Map{
			"email":    "ada@example.com",
			"password": "secret123",
		})
		assert.Equal(t, fiber.StatusOK, rec.Code)

		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body, &resp))
		assert.NotEmpty(t, resp["token"])
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		app := setupAuthApp(t)

		rec := postJSON(t, app, "/api/v1/auth/register", fiber.Map{
			"full_name": "Ada Obi",
			"email":     "ada@example.com",
			"password":  "secret123",
		})
		require.Equal(t, fiber.StatusCreated, rec.Code)

		rec = postJSON(t, app, "/api/v1/auth/login", fiber.Map{
			"email":    "ada@example.com",
			"password": "wrong",
		})
		assert.Equal(t, fiber.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects a deactivated account", func(t *testing.T) {
		app := setupAuthApp(t)

		rec := postJSON(t, app, "/api/v1/auth/register", fiber.Map{
			"full_name": "Ada Obi",
			"email":     "ada@example.com",
			"password":  "secret123",
		})
		require.Equal(t, fiber.StatusCreated, rec.Code)

		// deactivate directly
		require.NoError(t, database.DB.Model(&models.User{}).
			Where("email = ?", "ada@example.com").
			Update("is_active", false).Error)

		rec = postJSON(t, app, "/api/v1/auth/login", fiber.Map{
			"email":    "ada@example.com",
			"password": "secret123",
		})
		assert.Equal(t, fiber.StatusForbidden, rec.Code)
	})
}

func TestPasswordReset(t *testing.T) {
	t.Run("forgot-password is silent about unknown emails", func(t *testing.T) {
		app := setupAuthApp(t)

		rec := postJSON(t, app, "/api/v1/auth/forgot-password", fiber.Map{
			"email": "ghost@example.com",
		})
		assert.Equal(t, fiber.StatusOK, rec.Code)
	})

	t.Run("full reset round trip", func(t *testing.T) {
		app := setupAuthApp(t)

		rec := postJSON(t, app, "/api/v1/auth/register", fiber.Map{
			"full_name": "Ada Obi",
			"email":     "ada@example.com",
			"password":  "secret123",
		})
		require.Equal(t, fiber.StatusCreated, rec.Code)

		rec = postJSON(t, app, "/api/v1/auth/forgot-password", fiber.Map{
			"email": "ada@example.com",
		})
		require.Equal(t, fiber.StatusOK, rec.Code)

		var user models.User
		require.NoError(t, database.DB.Where("email = ?", "ada@example.com").First(&user).Error)
		require.NotNil(t, user.ResetPasswordToken)

		rec = postJSON(t, app, "/api/v1/auth/reset-password", fiber.Map{
			"token":        *user.ResetPasswordToken,
			"new_password": "brandnew123",
		})
		assert.Equal(t, fiber.StatusOK, rec.Code)

		rec = postJSON(t, app, "/api/v1/auth/login", fiber.Map{
			"email":    "ada@example.com",
			"password": "brandnew123",
		})
		assert.Equal(t, fiber.StatusOK, rec.Code)

		rec = postJSON(t, app, "/api/v1/auth/login", fiber.Map{
			"email":    "ada@example.com",
			"password": "secret123",
		})
		assert.Equal(t, fiber.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		app := setupAuthApp(t)

		rec := postJSON(t, app, "/api/v1/auth/register", fiber.Map{
			"full_name": "Ada Obi",
			"email":     "ada@example.com",
			"password":  "secret123",
		})
		require.Equal(t, fiber.StatusCreated, rec.Code)

		rec = postJSON(t, app, "/api/v1/auth/forgot-password", fiber.Map{
			"email": "ada@example.com",
		})
		require.Equal(t, fiber.StatusOK, rec.Code)

		var user models.User
		require.NoError(t, database.DB.Where("email = ?", "ada@example.com").First(&user).Error)
		require.NotNil(t, user.ResetPasswordToken)

		expired := time.Now().Add(-time.Minute)
		require.NoError(t, database.DB.Model(&user).
			Update("reset_password_token_expires_at", expired).Error)

		rec = postJSON(t, app, "/api/v1/auth/reset-password", fiber.Map{
			"token":        *user.ResetPasswordToken,
			"new_password": "brandnew123",
		})
		assert.Equal(t, fiber.StatusBadRequest, rec.Code)
	})

	t.Run("token without an expiry is rejected", func(t *testing.T) {
		app := setupAuthApp(t)

		rec := postJSON(t, app, "/api/v1/auth/register", fiber.Map{
			"full_name": "Ada Obi",
			"email":     "ada@example.com",
			"password":  "secret123",
		})
		require.Equal(t, fiber.StatusCreated, rec.Code)

		rec = postJSON(t, app, "/api/v1/auth/forgot-password", fiber.Map{
			"email": "ada@example.com",
		})
		require.Equal(t, fiber.StatusOK, rec.Code)

		var user models.User
		require.NoError(t, database.DB.Where("email = ?", "ada@example.com").First(&user).Error)
		require.NotNil(t, user.ResetPasswordToken)

		// A token row missing its expiry (hand-edited or half-written) must
		// read as expired, not crash the handler.
		require.NoError(t, database.DB.Model(&user).
			Update("reset_password_token_expires_at", nil).Error)

		rec = postJSON(t, app, "/api/v1/auth/reset-password", fiber.Map{
			"token":        *user.ResetPasswordToken,
			"new_password": "brandnew123",
		})
		assert.Equal(t, fiber.StatusBadRequest, rec.Code)
	})
}
