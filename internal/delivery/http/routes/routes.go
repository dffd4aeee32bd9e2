package routes

import (
	"github.com/gofiber/fiber/v3"

	"ats-sync/internal/delivery/http/handler"
	"ats-sync/internal/delivery/http/middleware"
	"ats-sync/internal/ws"
)

type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Jobs       *handler.JobHandler
	Candidates *handler.CandidateHandler
	Sync       *handler.SyncHandler
	WS         *ws.Handler
}

type Registry struct {
	handlers Handlers
	auth     *middleware.AuthMiddleware
}

func NewRegistry(h Handlers, auth *middleware.AuthMiddleware) *Registry {
	return &Registry{handlers: h, auth: auth}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.handlers.Health != nil {
		r.handlers.Health.RegisterRoutes(app)
	}
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.handlers, r.auth)
}
