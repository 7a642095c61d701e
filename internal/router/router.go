package router

import (
	"net/http"
	"time"

	"github.com/admitra/admitra-backend/internal/config"
	"github.com/admitra/admitra-backend/internal/handler"
	"github.com/admitra/admitra-backend/internal/middleware"
	"github.com/admitra/admitra-backend/internal/response"
	"github.com/admitra/admitra-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Scan       *handler.ScanHandler
	Assignment *handler.AssignmentHandler
	Session    *handler.SessionHandler
	Feed       *handler.FeedHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for the scan endpoint: one device scans at human speed;
	// anything past this is a stuck client or someone probing signatures.
	scanLimiter := middleware.NewRateLimiter(60, time.Minute)

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/logout", middleware.RequireStaffJWT(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireStaffJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Scan Group (Proctor JWT + Single Device) ───────────────────
	scanAPI := router.Group("/api/v1")
	scanAPI.Use(
		middleware.RequireProctorJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
		scanLimiter.Middleware(),
	)
	{
		scanAPI.POST("/scan", handlers.Scan.Scan)
	}

	// ─── 3. WebSocket Group (Staff token via query param) ──────────────
	wsGroup := router.Group("/ws/v1")
	wsGroup.Use(middleware.RequireStaffJWT(authService))
	{
		wsGroup.GET("/sessions/:session_id/feed", handlers.Feed.SessionScanFeed)
	}

	// ─── 4. Admin Group (Admin JWT) ────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.POST("/assignments", handlers.Assignment.IssueAssignment)
		adminAPI.GET("/assignments/:id/qr.png", handlers.Assignment.GetQRCode)

		adminAPI.GET("/sessions/:id", handlers.Session.GetSession)
		adminAPI.PUT("/sessions/:id", handlers.Session.RescheduleSession)
	}

	return router
}
