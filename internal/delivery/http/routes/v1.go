package routes

import (
	"github.com/gofiber/fiber/v3"

	"ats-sync/internal/delivery/http/middleware"
	"ats-sync/internal/pkg/jwt"
)

func RegisterV1(r fiber.Router, h Handlers, auth *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	if h.Jobs != nil {
		h.Jobs.RegisterRoutes(r.Group("/jobs"))
	}
	if h.Candidates != nil {
		h.Candidates.RegisterRoutes(r.Group("/candidates"))
	}

	admin := r.Group("/admin")
	if h.Auth != nil {
		h.Auth.RegisterRoutes(admin)
	}

	if auth == nil {
		return
	}
	atsGroup := admin.Group("/ats", auth.RequireRole(jwt.RoleAdmin))
	if h.Sync != nil {
		h.Sync.RegisterRoutes(atsGroup)
	}
	if h.WS != nil {
		atsGroup.Get("/ws", h.WS.HandleSyncWS)
	}
}
