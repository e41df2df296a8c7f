// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"campusboard/internal/cache"
	"campusboard/internal/config"
	"campusboard/internal/database"
	"campusboard/internal/featuregate"
	"campusboard/internal/middleware"
	"campusboard/internal/models"
	"campusboard/internal/notifications"
	"campusboard/internal/publish"
	"campusboard/internal/repository"
	"campusboard/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo      repository.UserRepository
	schoolRepo    repository.SchoolRepository
	postRepo      repository.PostRepository
	reviewLogRepo repository.ReviewLogRepository
	globalLogRepo repository.GlobalReviewLogRepository
	toggleRepo    repository.FeatureToggleRepository
	notifRepo     repository.NotificationRepository
	adminLogRepo  repository.AdminLogRepository

	gate       featuregate.Gate
	notifier   *notifications.Notifier
	dispatcher *notifications.Dispatcher

	postService    *service.PostService
	reviewService  *service.ReviewService
	voteService    *service.VoteService
	featureService *service.FeatureService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)
	prom := middleware.InitMetrics("campusboard-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       repository.NewUserRepository(db),
		schoolRepo:     repository.NewSchoolRepository(db),
		postRepo:       repository.NewPostRepository(db),
		reviewLogRepo:  repository.NewReviewLogRepository(db),
		globalLogRepo:  repository.NewGlobalReviewLogRepository(db),
		toggleRepo:     repository.NewFeatureToggleRepository(db),
		notifRepo:      repository.NewNotificationRepository(db),
		adminLogRepo:   repository.NewAdminLogRepository(db),
	}

	server.gate = featuregate.NewGate(server.toggleRepo)
	server.notifier = notifications.NewNotifier(redisClient)
	server.dispatcher = notifications.NewDispatcher(server.notifRepo, server.notifier)

	publishTimeout := time.Duration(cfg.PublishTimeoutSeconds) * time.Second
	server.postService = service.NewPostService(
		server.postRepo,
		server.gate,
		publish.NewDiscordPublisher(publishTimeout),
		publish.NewIGPublisher(cfg.IGAPIBaseURL, publishTimeout),
		publishTimeout,
	)
	server.reviewService = service.NewReviewService(
		server.postRepo, server.reviewLogRepo, server.adminLogRepo, server.dispatcher)
	server.voteService = service.NewVoteService(
		server.postRepo, server.globalLogRepo, server.reviewLogRepo, server.dispatcher,
		service.VotePolicy{Quorum: cfg.VoteQuorum, Ratio: cfg.ApproveRatio})
	server.featureService = service.NewFeatureService(server.toggleRepo)

	server.reviewService.SetPublisher(server.postService.PublishExternal)
	server.voteService.SetPublisher(server.postService.PublishExternal)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Campusboard Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public browse routes
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetPosts)
	publicPosts.Get("/:id", s.GetPost)

	schools := api.Group("/schools")
	schools.Get("/", s.GetSchools)
	schools.Get("/:slug", s.GetSchoolBySlug)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	protected.Get("/me", s.GetMe)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)

	// School-tier moderation
	reviews := protected.Group("/reviews")
	reviews.Post("/posts/:id", s.ReviewPost)
	reviews.Post("/posts/:id/override", s.OverridePost)
	reviews.Get("/posts/:id/logs", s.GetReviewLogs)
	reviews.Get("/logs", s.GetReviewLogs)

	// Cross-school voting
	votes := protected.Group("/votes")
	votes.Get("/mine", s.GetMyVotes)
	votes.Post("/posts/:id", s.VoteGlobalPost)
	votes.Get("/posts/:id/tally", s.GetVoteTally)
	votes.Get("/posts/:id/logs", s.GetGlobalReviewLogs)

	// Notifications
	notifs := protected.Group("/notifications")
	notifs.Get("/", s.GetMyNotifications)
	notifs.Get("/unread-count", s.GetUnreadCount)
	notifs.Post("/read-all", s.MarkAllNotificationsRead)
	notifs.Post("/:id/read", s.MarkNotificationRead)

	// Admin routes
	admin := protected.Group("/admin")
	admin.Post("/schools", s.CreateSchool)
	admin.Get("/toggles", s.ListToggles)
	admin.Get("/toggles/:schoolId", s.GetToggle)
	admin.Post("/toggles", s.CreateToggle)
	admin.Put("/toggles/:schoolId", s.UpdateToggle)
	admin.Get("/users", s.GetUsers)
	admin.Put("/users/:id/role", s.UpdateUserRole)
	admin.Get("/logs", s.GetAdminLogs)

	// Developer force override
	dev := protected.Group("/dev")
	dev.Post("/posts/:id/force", s.DevForcePost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. On success the
// request's principal (id, role, school) is stored in locals, resolved from
// the user row so role changes take effect without re-login.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, err := middleware.ParseUserID(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account no longer exists"))
		}

		principal := models.PrincipalFromUser(user)
		c.Locals("userID", principal.ID)
		c.Locals("principal", principal)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, principal.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Campusboard API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
