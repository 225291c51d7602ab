// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "atelier/docs" // swagger docs
	"atelier/internal/cache"
	"atelier/internal/config"
	"atelier/internal/database"
	"atelier/internal/featureflags"
	"atelier/internal/middleware"
	"atelier/internal/models"
	"atelier/internal/notifications"
	"atelier/internal/repository"
	"atelier/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/golang-jwt/jwt/v5"
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
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo         repository.UserRepository
	projectRepo      repository.ProjectRepository
	commentRepo      repository.CommentRepository
	followRepo       repository.FollowRepository
	invitationRepo   repository.InvitationRepository
	notificationRepo repository.NotificationRepository
	reportRepo       repository.ReportRepository
	analyticsRepo    repository.AnalyticsRepository

	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	userService         *service.UserService
	permissionService   *service.PermissionService
	projectService      *service.ProjectService
	commentService      *service.CommentService
	followService       *service.FollowService
	collabService       *service.CollabService
	rankingService      *service.RankingService
	analyticsService    *service.AnalyticsService
	moderationService   *service.ModerationService
	notificationService *service.NotificationService
	imageService        *service.ImageService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	prom := middleware.InitMetrics("atelier-api")

	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		promMiddleware:   prom,
		userRepo:         repository.NewUserRepository(db),
		projectRepo:      repository.NewProjectRepository(db),
		commentRepo:      repository.NewCommentRepository(db),
		followRepo:       repository.NewFollowRepository(db),
		invitationRepo:   repository.NewInvitationRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		reportRepo:       repository.NewReportRepository(db),
		analyticsRepo:    repository.NewAnalyticsRepository(db),
		featureFlags:     featureflags.New(cfg.FeatureFlags),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		if server.featureFlags.Enabled(featureflags.PushNotifications) {
			server.hub = notifications.NewHub()
		}
	}

	var publisher service.Publisher
	if server.notifier != nil && server.hub != nil {
		publisher = server.notifier
	}
	server.notificationService = service.NewNotificationService(server.notificationRepo, publisher)
	server.permissionService = service.NewPermissionService(server.followRepo)
	server.userService = service.NewUserService(server.userRepo)
	server.projectService = service.NewProjectService(
		server.projectRepo, server.userRepo, server.analyticsRepo,
		server.permissionService, server.notificationService)
	server.commentService = service.NewCommentService(
		server.commentRepo, server.projectRepo, server.userRepo,
		server.permissionService, server.notificationService, server.isAdminByUserID)
	server.followService = service.NewFollowService(
		server.followRepo, server.userRepo, server.permissionService, server.notificationService)
	server.collabService = service.NewCollabService(
		server.invitationRepo, server.projectRepo, server.userRepo, server.notificationService)
	server.rankingService = service.NewRankingService(server.analyticsRepo)
	server.analyticsService = service.NewAnalyticsService(server.analyticsRepo, server.projectRepo)
	server.moderationService = service.NewModerationService(
		server.reportRepo, server.userRepo, server.projectRepo, server.commentRepo,
		server.notificationService)

	imageService, err := service.NewImageService(cfg.AvatarDir)
	if err != nil {
		return nil, fmt.Errorf("avatar storage setup failed: %w", err)
	}
	server.imageService = imageService

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// Distributed tracing
	app.Use(middleware.TracingMiddleware())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
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

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Atelier Backend Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.Logout)
	auth.Put("/profile", s.AuthRequired(), s.UpdateProfile)

	// Public project browse. Visibility is enforced per request: anonymous
	// viewers only see public projects of public accounts.
	publicProjects := api.Group("/projects")
	publicProjects.Get("/", s.GetProjects)
	publicProjects.Get("/:id/comments", s.GetComments)
	publicProjects.Get("/:id", s.GetProject)

	// Public ranking routes
	ranking := api.Group("/ranking")
	ranking.Get("/global", s.GetGlobalRanking)
	ranking.Get("/projects", s.GetProjectRanking)
	ranking.Get("/tags", s.GetTagRanking)
	ranking.Get("/weekly", s.GetWeeklyRanking)
	ranking.Get("/my-position", s.AuthRequired(), s.GetMyPosition)

	// Public user profile (permission resolver decides what is shown)
	api.Get("/users/me", s.AuthRequired(), s.GetMe)
	api.Get("/users/search", s.SearchUsers)
	api.Get("/users/avatars/:file", s.GetAvatar)
	api.Get("/users/:username", s.GetUserProfile)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	protected.Post("/users/avatar", s.UploadAvatar)
	protected.Post("/users/:id/promote-admin", s.AdminRequired(), s.PromoteToAdmin)
	protected.Post("/users/:id/demote-admin", s.AdminRequired(), s.DemoteFromAdmin)

	// Project routes
	projects := protected.Group("/projects")
	projects.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_project"), s.CreateProject)
	projects.Get("/saved", s.GetSavedProjects)
	// Define specific /:id/:resource routes BEFORE generic /:id route
	projects.Post("/:id/like", s.LikeProject)
	projects.Delete("/:id/like", s.UnlikeProject)
	projects.Post("/:id/save", s.SaveProject)
	projects.Delete("/:id/save", s.UnsaveProject)
	projects.Post("/:id/comments", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	projects.Put("/:id/comments/:commentId", s.UpdateComment)
	projects.Delete("/:id/comments/:commentId", s.DeleteComment)
	projects.Post("/:id/comments/:commentId/like", s.LikeComment)
	projects.Delete("/:id/comments/:commentId/like", s.UnlikeComment)
	// Collaboration routes under a project
	projects.Post("/:id/collaborators/invite", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "collab_invite"), s.InviteCollaborator)
	projects.Get("/:id/collaborators", s.GetCollaborators)
	projects.Get("/:id/invitations", s.GetProjectInvitations)
	projects.Post("/:id/collaborators/leave", s.LeaveProject)
	projects.Put("/:id/collaborators/:userId/role", s.UpdateCollaboratorRole)
	projects.Delete("/:id/collaborators/:userId", s.RemoveCollaborator)
	projects.Get("/:id/stats", s.GetProjectStats)
	// Generic /:id routes (update, delete)
	projects.Put("/:id", s.UpdateProject)
	projects.Delete("/:id", s.DeleteProject)

	// Invitation routes addressed to the invitee
	collaborations := protected.Group("/collaborations")
	collaborations.Get("/invitations", s.GetMyInvitations)
	collaborations.Post("/invitations/:invitationId/accept", s.AcceptInvitation)
	collaborations.Post("/invitations/:invitationId/reject", s.RejectInvitation)

	// Follow routes
	follow := protected.Group("/follow")
	// Specific /requests routes before generic /:userId
	follow.Get("/requests", s.GetFollowRequests)
	follow.Post("/requests/:requestId/accept", s.AcceptFollowRequest)
	follow.Post("/requests/:requestId/reject", s.RejectFollowRequest)
	follow.Get("/privacy", s.GetPrivacySettings)
	follow.Put("/privacy", s.UpdatePrivacySettings)
	follow.Get("/blocked", s.GetBlockedUsers)
	follow.Post("/block/:userId", s.BlockUser)
	follow.Delete("/block/:userId", s.UnblockUser)
	follow.Get("/status/:userId", s.GetFollowStatus)
	follow.Get("/:username/followers", s.GetFollowers)
	follow.Get("/:username/following", s.GetFollowing)
	follow.Delete("/followers/:userId", s.RemoveFollower)
	// Generic /:userId route must be last
	follow.Post("/:userId", middleware.RateLimit(
		s.redis, 30, 5*time.Minute, "follow"), s.FollowUser)
	follow.Delete("/:userId", s.UnfollowUser)

	// Analytics routes
	analytics := protected.Group("/analytics")
	analytics.Get("/dashboard", s.GetDashboard)
	analytics.Get("/top-projects", s.GetTopProjects)

	// Notification routes
	notificationsGroup := protected.Group("/notifications")
	notificationsGroup.Get("/", s.GetNotifications)
	notificationsGroup.Get("/unread-count", s.GetUnreadCount)
	notificationsGroup.Put("/read-all", s.MarkAllNotificationsRead)
	notificationsGroup.Put("/:id/read", s.MarkNotificationRead)
	notificationsGroup.Delete("/:id", s.DeleteNotification)

	// Moderation
	protected.Post("/reports", middleware.RateLimit(
		s.redis, 10, 10*time.Minute, "report"), s.CreateReport)

	admin := protected.Group("/admin", s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Get("/reports", s.GetReports)
	admin.Put("/reports/:id", s.ResolveReport)
	admin.Post("/reports/:id/review", s.ReviewReport)
	admin.Get("/users/:id", s.AdminGetUser)
	admin.Post("/users/:id/suspend", s.SuspendUser)
	admin.Post("/users/:id/unsuspend", s.UnsuspendUser)
	admin.Post("/users/:id/ban", s.BanUser)
	admin.Post("/users/:id/unban", s.UnbanUser)
	admin.Post("/users/:id/delete", s.DeleteUserAccount)

	// WebSocket ticket issuance + push channel
	api.Post("/ws/ticket", s.AuthRequired(), s.IssueWSTicket)
	ws := api.Group("/ws", s.AuthRequired())
	ws.Get("/", s.WebsocketHandler())
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
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  overallStatus,
		"version": "1.0.0",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		admin, err := s.isAdminByUserID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}

		return c.Next()
	}
}

// AuthRequired returns the authentication middleware
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		isWSPath := strings.HasPrefix(path, "/api/ws")

		// 1. Try WebSocket ticket first (short-lived, single-use)
		ticket := c.Query("ticket")
		if ticket != "" && s.redis != nil {
			key := fmt.Sprintf("ws_ticket:%s", ticket)
			userIDStr, err := s.redis.Get(c.Context(), key).Result()
			if err == nil {
				userID, parseErr := strconv.ParseUint(userIDStr, 10, 32)
				if parseErr == nil {
					// Delete ticket immediately (single-use)
					s.redis.Del(c.Context(), key)

					c.Locals("userID", uint(userID))
					ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
					c.SetUserContext(ctx)
					return c.Next()
				}
			}
			// If ticket was provided but invalid/expired, we fail if it's a WS path
			if isWSPath {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}

		// 2. Fall back to JWT (Bearer token or query param)
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Reject token in query param for WS routes (must use ticket)
		if tokenString == "" && !isWSPath {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, err := s.parseToken(tokenString, c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(err.Error()))
		}

		c.Locals("userID", userID)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// parseToken validates signature, issuer, audience and the Redis JTI
// blacklist, and returns the subject user ID.
func (s *Server) parseToken(tokenString string, c *fiber.Ctx) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("Invalid token claims")
	}

	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "atelier-api" {
		return 0, fmt.Errorf("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "atelier-client" {
		return 0, fmt.Errorf("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fmt.Errorf("Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("Invalid user ID in token")
	}

	// Check JTI for revocation
	if jti, exists := claims["jti"].(string); exists && jti != "" && s.redis != nil {
		isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
		if err == nil && isBlacklisted > 0 {
			return 0, fmt.Errorf("Token has been revoked")
		}
	}

	return uint(userID), nil
}

// optionalUserID attempts to extract userID from Authorization header but does not enforce it.
func (s *Server) optionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}

	userID, err := s.parseToken(parts[1], c)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// GetFeatureFlags handles GET /api/admin/feature-flags
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"flags": s.featureFlags.List()})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Atelier API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if s.notifier != nil && s.hub != nil {
		go s.notifier.StartPatternSubscriber(s.shutdownCtx, s.hub)
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.hub != nil {
		s.hub.Shutdown()
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
