package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"newsdesk/internal/models"
	"newsdesk/internal/observability"
	"newsdesk/internal/session"
	"newsdesk/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthApp(t *testing.T) (*fiber.App, *session.CredentialProvider) {
	t.Helper()
	provider := session.NewCredentialProvider(testutil.NewFakeDocuments(), "unit-test-secret-at-least-32-chars!!")
	Init(provider)

	app := fiber.New()
	app.Get("/protected", AuthRequired, func(c *fiber.Ctx) error {
		identity, _ := c.Locals("identity").(*models.Identity)
		return c.JSON(fiber.Map{"id": identity.ID})
	})
	return app, provider
}

func TestAuthRequired(t *testing.T) {
	app, provider := setupAuthApp(t)

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Token abc")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token sets locals", func(t *testing.T) {
		token, err := provider.IssueToken(&models.Identity{ID: "u1", Email: "a@b.co"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("valid token puts the user id on the request context", func(t *testing.T) {
		var gotUserID any
		app.Get("/context", AuthRequired, func(c *fiber.Ctx) error {
			gotUserID = c.UserContext().Value(observability.UserIDKey)
			return c.SendStatus(http.StatusNoContent)
		})

		token, err := provider.IssueToken(&models.Identity{ID: "u42", Email: "c@d.co"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/context", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "u42", gotUserID)
	})
}
