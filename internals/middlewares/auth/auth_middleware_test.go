package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret, email, role string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newAuthApp(requiredRoles ...string) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{AuthJWT(testSecret)}
	if len(requiredRoles) > 0 {
		handlers = append(handlers, RequireRoles(requiredRoles...))
	}
	group := app.Group("/p", handlers...)
	group.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"email": c.Locals("user_email"),
			"role":  c.Locals("user_role"),
		})
	})
	return app
}

func TestAuthJWT(t *testing.T) {
	t.Run("valid bearer token passes and sets locals", func(t *testing.T) {
		app := newAuthApp()
		token := signToken(t, testSecret, "jane@example.com", "member", time.Now().Add(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/p/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("cookie fallback", func(t *testing.T) {
		app := newAuthApp()
		token := signToken(t, testSecret, "jane@example.com", "member", time.Now().Add(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/p/whoami", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing header", func(t *testing.T) {
		app := newAuthApp()
		req := httptest.NewRequest(http.MethodGet, "/p/whoami", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong secret", func(t *testing.T) {
		app := newAuthApp()
		token := signToken(t, "some-other-secret", "jane@example.com", "member", time.Now().Add(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/p/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		app := newAuthApp()
		token := signToken(t, testSecret, "jane@example.com", "member", time.Now().Add(-time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/p/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing email claim", func(t *testing.T) {
		app := newAuthApp()
		token := signToken(t, testSecret, "", "member", time.Now().Add(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/p/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRequireRoles(t *testing.T) {
	t.Run("allowed role", func(t *testing.T) {
		app := newAuthApp("librarian")
		token := signToken(t, testSecret, "desk@example.com", "librarian", time.Now().Add(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/p/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("wrong role is forbidden", func(t *testing.T) {
		app := newAuthApp("librarian")
		token := signToken(t, testSecret, "jane@example.com", "member", time.Now().Add(time.Hour))

		req := httptest.NewRequest(http.MethodGet, "/p/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
