package jobs

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hollyabrams/express-jobly/internal/middleware/admin"
	"github.com/hollyabrams/express-jobly/internal/middleware/authjwt"
	"github.com/hollyabrams/express-jobly/internal/middleware/constraints"
	"github.com/hollyabrams/express-jobly/internal/middleware/ratelimit"
	platformconfig "github.com/hollyabrams/express-jobly/internal/platform/config"
	"github.com/hollyabrams/express-jobly/internal/types"
	"github.com/hollyabrams/express-jobly/jobs/handlers"
)

// JobsHandlers holds all the handlers this router needs.
type JobsHandlers struct {
	JobHandler *handlers.JobHandler
}

// RegisterRoutes is the single entry point for setting up jobs routes.
// Reads are public; writes require an admin token.
func RegisterRoutes(app *fiber.App, handlers *JobsHandlers, cfg *platformconfig.Config) {
	jwtMiddleware := authjwt.New(authjwt.Config{
		PublicKey:   cfg.JWT.PublicKey,
		ClaimKey:    types.ClaimKey,
		UserCtxName: types.UserCtxName,
	})
	adminMiddleware := admin.New(admin.Config{UserCtxName: types.UserCtxName})
	requireID := constraints.RequireInt("id")

	adminChain := []fiber.Handler{}
	if limits := cfg.RateLimits.Mutations; limits.Enabled {
		adminChain = append(adminChain, ratelimit.NewMutationLimiter(limits.Max, limits.Duration))
	}
	adminChain = append(adminChain, jwtMiddleware, adminMiddleware)

	withAdmin := func(hs ...fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, adminChain...), hs...)
	}

	group := app.Group("/jobs")

	// --- Public Routes ---
	group.Get("/", handlers.JobHandler.SearchJobs)
	group.Get("/:id", requireID, handlers.JobHandler.GetJob)

	// --- Admin Routes ---
	group.Post("/", withAdmin(handlers.JobHandler.CreateJob)...)
	group.Patch("/:id", withAdmin(requireID, handlers.JobHandler.UpdateJob)...)
	group.Delete("/:id", withAdmin(requireID, handlers.JobHandler.DeleteJob)...)
}
