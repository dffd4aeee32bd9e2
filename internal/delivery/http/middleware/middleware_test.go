package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"

	"ats-sync/internal/pkg/jwt"
)

func newProtectedApp(svc jwt.Service) *fiber.App {
	app := fiber.New()
	app.Use(NewErrorMiddleware(nil).Middleware())
	app.Get("/admin", NewAuthMiddleware(svc).RequireRole(jwt.RoleAdmin), func(c fiber.Ctx) error {
		return c.SendString(c.Locals(CtxSubjectKey).(string))
	})
	app.Get("/boom", func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusInternalServerError, "secret detail", nil, errors.New("pg: password wrong"))
	})
	app.Get("/panic", func(c fiber.Ctx) error {
		panic("kaboom")
	})
	return app
}

func TestRequireRole(t *testing.T) {
	svc := jwt.NewHMACService("secret", time.Minute)
	app := newProtectedApp(svc)

	admin, _, _ := svc.GenerateAccessToken("ops", jwt.RoleAdmin)
	viewer, _, _ := svc.GenerateAccessToken("bob", "viewer")

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"no token", "", "", fiber.StatusUnauthorized},
		{"garbage", "Bearer abc", "", fiber.StatusUnauthorized},
		{"wrong role", "Bearer " + viewer, "", fiber.StatusForbidden},
		{"admin", "Bearer " + admin, "", fiber.StatusOK},
		{"admin via query", "", "?access_token=" + admin, fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request: %v", err)
			}
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
		})
	}
}

func TestErrorMiddleware_HidesServerErrors(t *testing.T) {
	app := newProtectedApp(jwt.NewHMACService("secret", time.Minute))

	for _, path := range []string{"/boom", "/panic"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		if resp.StatusCode != fiber.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", path, resp.StatusCode)
		}
	}
}

func TestNormalizeError_KeepsServiceUnavailableMessage(t *testing.T) {
	status, msg, _ := normalizeError(NewAppError(fiber.StatusServiceUnavailable, "ATS integration is disabled", nil, nil))
	if status != fiber.StatusServiceUnavailable || msg != "ATS integration is disabled" {
		t.Fatalf("got %d %q", status, msg)
	}

	status, msg, _ = normalizeError(errors.New("raw"))
	if status != fiber.StatusInternalServerError || msg != "internal server error" {
		t.Fatalf("got %d %q", status, msg)
	}
}

func TestNormalizeError_BadGatewayHidesCause(t *testing.T) {
	status, msg, data := normalizeError(NewAppError(fiber.StatusBadGateway, "upstream said: tenant acme", map[string]string{"raw": "x"}, errors.New("status=500")))
	if status != fiber.StatusBadGateway || msg != "bad gateway" || data != nil {
		t.Fatalf("got %d %q %v", status, msg, data)
	}
}
