package app

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"ats-sync/internal/delivery/http/handler"
	"ats-sync/internal/delivery/http/middleware"
	"ats-sync/internal/delivery/http/routes"
	"ats-sync/internal/infrastructure/ats"
	"ats-sync/internal/usecase/atssync"
	"ats-sync/internal/ws"
)

// bodyLimit leaves room for a maximum size resume plus multipart framing.
const bodyLimit = ats.MaxDocumentBytes + 1<<20

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName:   c.Config.App.AppName,
		BodyLimit: bodyLimit,
	})

	registerGlobalMiddleware(f, c)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap builds the container and the HTTP app. The returned cleanup
// releases every connection the container opened.
func Bootstrap(c *Container) (*App, func() error, error) {
	if c == nil {
		return nil, nil, fmt.Errorf("nil container")
	}
	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, c *Container) {
	errMw := middleware.NewErrorMiddleware(c.Logger.Named("http"))
	accessMw := middleware.NewAccessLogMiddleware(c.Logger.Named("access"))

	app.Use(accessMw.Middleware())
	app.Use(errMw.Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	search := atssync.Search{Jobs: c.JobSync, Candidates: c.CandidateSync}

	routes.NewRegistry(routes.Handlers{
		Health:     handler.NewHealthHandler(c.DB, c.Redis),
		Auth:       handler.NewAuthHandler(c.AuthService),
		Jobs:       handler.NewJobHandler(c.JobService),
		Candidates: handler.NewCandidateHandler(c.CandidateService),
		Sync:       handler.NewSyncHandler(c.Scheduler, c.Runs, c.Flags, search),
		WS:         ws.NewHandler(c.Hub, c.Logger.Named("ws")),
	}, middleware.NewAuthMiddleware(c.JWT)).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
