package admin

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollyabrams/express-jobly/internal/types"
)

func newApp(user *types.UserContext, cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals(types.UserCtxName, *user)
		}
		return c.Next()
	})
	app.Use(New(cfg))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestNew(t *testing.T) {
	admin := types.UserContext{Username: "root", Role: types.AdminRole}
	regular := types.UserContext{Username: "u1", Role: types.UserRole}

	tests := []struct {
		name   string
		user   *types.UserContext
		cfg    Config
		status int
	}{
		{"admin passes", &admin, Config{}, 200},
		{"regular user forbidden", &regular, Config{}, 403},
		{"no user context", nil, Config{}, 401},
		{"custom access hook", &regular, Config{HasAccess: func(u types.UserContext) bool { return u.Username == "u1" }}, 200},
		{"custom hook denies admin", &admin, Config{HasAccess: func(types.UserContext) bool { return false }}, 403},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newApp(tt.user, tt.cfg).Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
