// Package server assembles the Fiber application: middleware, public routes,
// the JWT wall and the protected routes behind it.
package server

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/wichananm65/carehub-backend/internal/access"
	"github.com/wichananm65/carehub-backend/internal/application"
	"github.com/wichananm65/carehub-backend/internal/assistant"
	"github.com/wichananm65/carehub-backend/internal/auth"
	"github.com/wichananm65/carehub-backend/internal/cache"
	"github.com/wichananm65/carehub-backend/internal/config"
	"github.com/wichananm65/carehub-backend/internal/dashboard"
	"github.com/wichananm65/carehub-backend/internal/location"
	"github.com/wichananm65/carehub-backend/internal/metrics"
	"github.com/wichananm65/carehub-backend/internal/rating"
	"github.com/wichananm65/carehub-backend/internal/report"
	"github.com/wichananm65/carehub-backend/internal/request"
	"github.com/wichananm65/carehub-backend/internal/storage"
	"github.com/wichananm65/carehub-backend/internal/user"
	"go.uber.org/zap"
)

// Deps are the long-lived resources the server is built from.
type Deps struct {
	Config  config.Config
	DB      *sql.DB
	Cache   *cache.Cache
	Store   storage.Store
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

// Services groups the domain services so commands other than serve can
// reuse the same wiring.
type Services struct {
	Users        *user.Service
	Locations    *location.Service
	Requests     *request.Service
	Applications *application.Service
	Assistants   *assistant.Service
	Ratings      *rating.Service
	Dashboard    *dashboard.Service
}

// NewServices wires the Postgres repositories into the services.
func NewServices(db *sql.DB, c *cache.Cache, m *metrics.Metrics, log *zap.Logger) Services {
	users := user.NewService(user.NewPostgresRepository(db))
	locations := location.NewService(location.NewPostgresRepository(db), c, log)
	requests := request.NewService(request.NewPostgresRepository(db), locations, m)
	ratings := rating.NewService(rating.NewPostgresRepository(db), requests, m)
	assistants := assistant.NewService(assistant.NewPostgresRepository(db), users, ratings, locations)
	users.WithProvisioner(assistants)
	applications := application.NewService(application.NewPostgresRepository(db), requests, users, m, log)

	return Services{
		Users:        users,
		Locations:    locations,
		Requests:     requests,
		Applications: applications,
		Assistants:   assistants,
		Ratings:      ratings,
		Dashboard:    dashboard.NewService(requests, applications, ratings),
	}
}

type routes interface {
	RegisterPublicRoutes(app *fiber.App)
	RegisterProtectedRoutes(app *fiber.App)
}

type protectedRoutes interface {
	RegisterProtectedRoutes(app *fiber.App)
}

func New(d Deps) (*fiber.App, error) {
	if d.Config.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Cache == nil {
		d.Cache = cache.New(nil)
	}
	if d.Store == nil {
		store, err := storage.NewLocalStore(d.Config.UploadDir, d.Config.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		d.Store = store
	}
	issuer := auth.NewIssuer(d.Config.JWTSecret, d.Config.TokenTTL)
	svc := NewServices(d.DB, d.Cache, d.Metrics, d.Log)

	app := fiber.New(fiber.Config{
		AppName:      "carehub",
		BodyLimit:    8 << 20,
		ErrorHandler: errorHandler(d.Log),
	})
	app.Use(requestid.New())
	app.Use(requestLogger(d.Log))
	app.Use(recover.New())
	if d.Metrics != nil {
		app.Use(d.Metrics.Middleware())
		app.Get("/metrics", d.Metrics.Handler())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: d.Config.CORSOrigins != "*",
	}))
	app.Use(access.PageGuard(issuer, d.Cache))

	app.Get("/health", health(d.DB))
	app.Static("/uploads", d.Config.UploadDir)

	handlers := []routes{
		user.NewHandler(svc.Users, issuer, d.Cache, d.Store, d.Log),
		location.NewHandler(svc.Locations, d.Log),
		request.NewHandler(svc.Requests, d.Log),
		assistant.NewHandler(svc.Assistants, d.Log),
		rating.NewHandler(svc.Ratings, d.Log),
	}
	access.NewHandler(issuer, d.Cache).RegisterPublicRoutes(app)
	for _, h := range handlers {
		h.RegisterPublicRoutes(app)
	}

	// Only /api routes carry a token; pages and assets fall through to the
	// bundle below.
	app.Use(issuer.Middleware(d.Cache, func(c *fiber.Ctx) bool {
		return !strings.HasPrefix(c.Path(), "/api/")
	}))

	for _, h := range handlers {
		h.RegisterProtectedRoutes(app)
	}
	extra := []protectedRoutes{
		application.NewHandler(svc.Applications, d.Log),
		dashboard.NewHandler(svc.Dashboard, d.Log),
		report.NewHandler(report.NewPostgresSource(d.DB), d.Log),
	}
	for _, h := range extra {
		h.RegisterProtectedRoutes(app)
	}

	if d.Config.WebDir != "" {
		serveBundle(app, d.Config.WebDir)
	}
	return app, nil
}

// serveBundle serves the prebuilt front end, falling back to index.html for
// client-side routes.
func serveBundle(app *fiber.App, dir string) {
	app.Static("/", dir)
	index := strings.TrimRight(dir, "/") + "/index.html"
	app.Get("/*", func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not found"})
		}
		return c.SendFile(index)
	})
}

func health(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
