package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/hollyabrams/express-jobly/internal/cache"
	"github.com/hollyabrams/express-jobly/internal/middleware/requestid"
	"github.com/hollyabrams/express-jobly/internal/pkg/log"
	platformconfig "github.com/hollyabrams/express-jobly/internal/platform/config"
	"github.com/hollyabrams/express-jobly/jobs"
	"github.com/hollyabrams/express-jobly/jobs/handlers"
	"github.com/hollyabrams/express-jobly/jobs/services"
	"github.com/hollyabrams/express-jobly/jobs/validation"
)

// appDeps are the collaborators the HTTP app is built from
type appDeps struct {
	JobService services.JobService
	Validator  *validation.Validator
	Cache      *cache.GenericCacheService
	DBHealth   func(ctx context.Context) error
}

func newApp(cfg *platformconfig.Config, deps appDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.WebDomain,
		AllowCredentials: cfg.Server.WebDomain != "*",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:     "GET, POST, DELETE, PATCH, OPTIONS",
	}))

	app.Get("/health", healthHandler(deps))

	jobs.RegisterRoutes(app, &jobs.JobsHandlers{
		JobHandler: handlers.NewJobHandler(deps.JobService, deps.Validator),
	}, cfg)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"code":    "NOT_FOUND",
			"message": "Not Found",
		})
	})

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.ErrorWithContext(c.UserContext(), "[ErrorHandler] Path: %s, Error: %v, Code: %d", c.Path(), err, code)

	// If response already set by handler, don't override it
	if len(c.Response().Body()) > 0 {
		return nil
	}

	return c.Status(code).JSON(fiber.Map{
		"code":    "ERROR",
		"message": err.Error(),
	})
}

func healthHandler(deps appDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := fiber.Map{"status": "ok", "database": "ok"}
		if deps.Cache.IsEnabled() {
			body["cache"] = deps.Cache.GetStats()
		}

		if deps.DBHealth != nil {
			if err := deps.DBHealth(c.UserContext()); err != nil {
				body["status"] = "unavailable"
				body["database"] = err.Error()
				return c.Status(fiber.StatusServiceUnavailable).JSON(body)
			}
		}
		return c.JSON(body)
	}
}
