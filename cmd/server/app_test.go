package main

import (
	"context"
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hollyabrams/express-jobly/internal/cache"
	platformconfig "github.com/hollyabrams/express-jobly/internal/platform/config"
	"github.com/hollyabrams/express-jobly/internal/testutil"
	"github.com/hollyabrams/express-jobly/internal/types"
	"github.com/hollyabrams/express-jobly/jobs/models"
	"github.com/hollyabrams/express-jobly/jobs/services"
	"github.com/hollyabrams/express-jobly/jobs/validation"
)

func newTestApp(t *testing.T, dbHealth func(context.Context) error) (*testutil.HTTPHelper, *services.MockJobService) {
	t.Helper()

	pub, _ := testutil.GenerateECDSAKeyPairPEM(t)
	cfg, err := platformconfig.LoadFromMap(map[string]string{"JWT_PUBLIC_KEY": pub})
	require.NoError(t, err)

	cacheService, err := cache.NewCacheService(cache.DefaultCacheConfig())
	require.NoError(t, err)
	t.Cleanup(func() { cacheService.Close() })

	svc := new(services.MockJobService)
	app := newApp(cfg, appDeps{
		JobService: svc,
		Validator:  validation.MustNewValidator(),
		Cache:      cacheService,
		DBHealth:   dbHealth,
	})
	return testutil.NewHTTPHelper(t, app), svc
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		helper, _ := newTestApp(t, func(context.Context) error { return nil })

		resp, body := helper.NewRequest("GET", "/health", nil).SendJSON()
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "ok", body["database"])

		stats, ok := body["cache"].(map[string]interface{})
		require.True(t, ok, "cache stats are reported")
		assert.Contains(t, stats, "backend")
	})

	t.Run("database down", func(t *testing.T) {
		helper, _ := newTestApp(t, func(context.Context) error { return errors.New("connection refused") })

		resp, body := helper.NewRequest("GET", "/health", nil).SendJSON()
		assert.Equal(t, 503, resp.StatusCode)
		assert.Equal(t, "unavailable", body["status"])
		assert.Equal(t, "connection refused", body["database"])
	})
}

func TestApp_UnknownRoute(t *testing.T) {
	helper, _ := newTestApp(t, nil)

	resp, body := helper.NewRequest("GET", "/companies", nil).SendJSON()
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.Equal(t, "Not Found", body["message"])
}

func TestApp_JobsRoutesAndMiddleware(t *testing.T) {
	helper, svc := newTestApp(t, nil)
	svc.On("SearchJobs", mock.Anything, models.JobFilter{}).Return([]models.Job{}, nil)

	resp, body := helper.NewRequest("GET", "/jobs", nil).
		WithHeader("Origin", "http://localhost:3000").
		SendJSON()
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, []interface{}{}, body["jobs"])
	assert.NotEmpty(t, resp.Header.Get(types.HeaderRequestID))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, _ = helper.NewRequest("POST", "/jobs", `{"title":"Dev","companyHandle":"c1"}`).SendJSON()
	assert.Equal(t, 401, resp.StatusCode)

	svc.AssertExpectations(t)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})
	app.Get("/written", func(c *fiber.Ctx) error {
		_ = c.Status(fiber.StatusConflict).JSON(fiber.Map{"code": "CONFLICT"})
		return errors.New("already answered")
	})
	helper := testutil.NewHTTPHelper(t, app)

	resp, body := helper.NewRequest("GET", "/teapot", nil).SendJSON()
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "ERROR", body["code"])
	assert.Equal(t, "short and stout", body["message"])

	resp, body = helper.NewRequest("GET", "/plain", nil).SendJSON()
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, "boom", body["message"])

	resp, body = helper.NewRequest("GET", "/written", nil).SendJSON()
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", body["code"])
}
