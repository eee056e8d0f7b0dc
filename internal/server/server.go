// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mooderia/internal/bootstrap"
	"mooderia/internal/config"
	"mooderia/internal/featureflags"
	"mooderia/internal/middleware"
	"mooderia/internal/models"
	"mooderia/internal/notifications"
	"mooderia/internal/observability"
	"mooderia/internal/scheduler"
	"mooderia/internal/service"
	"mooderia/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

// newMetrics builds the HTTP metrics collector. Tests replace it to avoid
// registering on the default registry more than once.
var newMetrics = func(serviceName string) *fiberprometheus.FiberPrometheus {
	return middleware.InitMetrics(serviceName, nil)
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	app            *fiber.App
	redis          *redis.Client
	store          storage.Store
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	clock          scheduler.Clock
	state          *service.AppState
	featureFlags   *featureflags.Manager
	notifier       *notifications.Notifier
	sessions       *service.SessionService
	social         *service.SocialService
	messages       *service.MessageService
	inbox          *service.NotificationService
	moods          *service.MoodService
	personas       *service.PersonaService
	closeRuntime   func() error
}

// NewServer creates a server over an initialized runtime and builds its
// Fiber app.
func NewServer(cfg *config.Config, rt *bootstrap.Runtime) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:         cfg,
		redis:          rt.Redis,
		store:          rt.Store,
		promMiddleware: newMetrics("mooderia-api"),
		shutdownCtx:    ctx,
		shutdownFn:     cancel,
		clock:          rt.Scheduler,
		state:          rt.State,
		featureFlags:   rt.Flags,
		notifier:       rt.Notifier,
		sessions:       rt.Sessions,
		social:         rt.Social,
		messages:       rt.Messages,
		inbox:          rt.Notifications,
		moods:          rt.Moods,
		personas:       rt.Personas,
		closeRuntime:   rt.Close,
	}

	s.app = fiber.New(fiber.Config{
		AppName: "Mooderia API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, err)
			}
			observability.GlobalLogger.ErrorContext(c.UserContext(), "unhandled handler error",
				slog.String("path", c.Path()),
				slog.String("error", err.Error()),
			)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(s.app)
	s.SetupRoutes(s.app)
	return s
}

// App exposes the Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api", s.BootGuard())

	system := api.Group("/system")
	system.Get("/status", s.GetSystemStatus)
	system.Post("/reset", s.ResetSystem)
	system.Get("/feature-flags", s.GetFeatureFlags)

	// Credential attempts are only bounded by the global limiter above.
	auth := api.Group("/auth")
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)
	auth.Post("/logout", s.Logout)

	// Everything registered before the protected group works without a
	// session.
	api.Get("/theme", s.GetTheme)
	api.Put("/theme", s.SetTheme)
	api.Post("/theme/toggle", s.ToggleTheme)

	zodiacs := api.Group("/zodiac")
	zodiacs.Get("/signs", s.GetSigns)
	zodiacs.Get("/signs/:sign", s.GetSign)
	zodiacs.Get("/sign-from-date", s.GetSignFromDate)
	zodiacs.Get("/signs/:sign/lucky", s.GetLucky)
	zodiacs.Get("/signs/:sign/horoscope", middleware.RateLimit(s.redis, 20, time.Minute, "horoscope"), s.GetHoroscope)
	zodiacs.Get("/signs/:sign/planetary", s.GetLastPlanetary)
	zodiacs.Post("/signs/:sign/planetary", middleware.RateLimit(s.redis, 10, time.Minute, "planetary"), s.CreatePlanetary)
	zodiacs.Get("/compatibility", s.GetLastCompatibility)
	zodiacs.Post("/compatibility", middleware.RateLimit(s.redis, 10, time.Minute, "compatibility"), s.CreateCompatibility)

	personas := api.Group("/personas")
	personas.Get("/", s.ListPersonas)
	personas.Get("/:persona", s.GetPersonaHistory)
	personas.Post("/:persona", middleware.RateLimit(s.redis, 20, time.Minute, "persona"), s.AskPersona)

	api.Get("/posts", s.GetPosts)
	api.Get("/notifications", s.GetNotifications)
	api.Get("/notifications/unread", s.GetUnreadNotifications)

	protected := api.Group("", s.AuthRequired())

	me := protected.Group("/me")
	me.Get("/", s.GetMe)
	me.Put("/", s.UpdateMe)
	me.Get("/blocked", s.GetBlockedUsers)

	posts := protected.Group("/posts")
	posts.Post("/", s.CreatePost)
	posts.Post("/:id/heart", s.HeartPost)
	posts.Post("/:id/comments", s.CommentPost)
	posts.Post("/:id/repost", s.RepostPost)

	users := protected.Group("/users")
	users.Get("/", s.SearchUsers)
	users.Get("/:username", s.GetUserProfile)
	users.Post("/:username/follow", s.ToggleFollow)
	users.Delete("/:username/follow", s.Unfollow)
	users.Post("/:username/block", s.Block)
	users.Delete("/:username/block", s.Unblock)

	messages := protected.Group("/messages")
	messages.Get("/", s.GetConversations)
	messages.Get("/unread", s.GetUnreadMessages)
	messages.Get("/:username", s.GetThread)
	messages.Post("/:username", middleware.RateLimit(s.redis, 30, time.Minute, "send_message"), s.SendMessage)

	protected.Post("/notifications/open", s.OpenNotifications)
	protected.Post("/notifications/read", s.MarkNotificationsRead)
	protected.Get("/notifications/stream", s.StreamNotifications)

	mood := protected.Group("/mood")
	mood.Get("/", s.GetMoodSummary)
	mood.Post("/", s.SubmitMood)
}

// BootGuard answers 503 on every route while the stored state is corrupted,
// except the status and reset endpoints.
func (s *Server) BootGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Path() {
		case "/api/system/status", "/api/system/reset":
			return c.Next()
		}
		status, err := s.state.Status()
		if status == service.BootCorrupted {
			return models.RespondWithError(c, fiber.StatusServiceUnavailable, err)
		}
		return c.Next()
	}
}

// AuthRequired rejects requests while no user is logged in and records the
// acting username for the rest of the chain.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		current := s.sessions.Current()
		if current == nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		middleware.SetUsername(c, current.Username)
		return c.Next()
	}
}

// HealthCheck reports liveness and the state of the store and Redis.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	bootStatus, _ := s.state.Status()

	storeStatus := "healthy"
	if _, err := s.store.Get(ctx, storage.KeyTheme); err != nil && !errors.Is(err, storage.ErrNotFound) {
		storeStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if storeStatus != "healthy" || bootStatus != service.BootReady {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "Welcome to Mooderia",
		"status":  overall,
		"checks": fiber.Map{
			"boot":  bootStatus,
			"store": storeStatus,
			"redis": redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	observability.GlobalLogger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Ends open notification streams.
	s.shutdownFn()

	var errs []error
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down HTTP server: %w", err))
	}
	if s.closeRuntime != nil {
		if err := s.closeRuntime(); err != nil {
			errs = append(errs, fmt.Errorf("closing runtime: %w", err))
		}
	}

	observability.GlobalLogger.Info("server shutdown complete")
	return errors.Join(errs...)
}
