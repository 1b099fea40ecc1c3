package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/alexpaac/testrh-backend/internal/config"
	"github.com/alexpaac/testrh-backend/internal/handler"
	"github.com/alexpaac/testrh-backend/internal/middleware"
	"github.com/alexpaac/testrh-backend/internal/response"
	"github.com/alexpaac/testrh-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Portal    *handler.PortalHandler
	WS        *handler.WSHandler
	Quiz      *handler.QuizHandler
	Question  *handler.QuestionHandler
	Candidate *handler.CandidateHandler
	Report    *handler.ReportHandler
	Monitor   *handler.MonitorHandler
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

	// Rate limiter for the candidate login (30 requests per minute per IP,
	// enough for a classroom behind one NAT, slow enough to stop guessing).
	loginLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(loginLimiter.Middleware())
	{
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
	}

	// ─── 2. Candidate Portal Group (Public) ────────────────────────────
	testAPI := router.Group("/api/v1/test")
	{
		testAPI.POST("/login", loginLimiter.Middleware(), handlers.Portal.Login)
		testAPI.GET("/sessions/:session_id", handlers.Portal.GetSession)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	// The session id is the bearer credential here: unguessable UUID
	// handed out at login.
	ws := router.Group("/ws/v1")
	{
		ws.GET("/test/sessions/:session_id/stream", handlers.WS.AttemptStream)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Quiz management
		adminAPI.GET("/quizzes", handlers.Quiz.List)
		adminAPI.POST("/quizzes", handlers.Quiz.Create)
		adminAPI.GET("/quizzes/:id", handlers.Quiz.Get)
		adminAPI.PUT("/quizzes/:id", handlers.Quiz.Update)
		adminAPI.DELETE("/quizzes/:id", handlers.Quiz.Delete)
		adminAPI.POST("/quizzes/:id/warm-cache", handlers.Quiz.WarmCache)

		// Question bank
		adminAPI.GET("/questions", handlers.Question.List)
		adminAPI.POST("/questions", handlers.Question.Create)
		adminAPI.POST("/questions/import", handlers.Question.ImportCSV)
		adminAPI.GET("/questions/:id", handlers.Question.Get)
		adminAPI.PUT("/questions/:id", handlers.Question.Update)
		adminAPI.DELETE("/questions/:id", handlers.Question.Delete)

		// Candidate roster
		adminAPI.GET("/candidates", handlers.Candidate.List)
		adminAPI.POST("/candidates", handlers.Candidate.Create)
		adminAPI.GET("/candidates/:id", handlers.Candidate.Get)
		adminAPI.PUT("/candidates/:id", handlers.Candidate.Update)
		adminAPI.DELETE("/candidates/:id", handlers.Candidate.Delete)

		// Results and reporting
		adminAPI.GET("/sessions", handlers.Report.ListSessions)
		adminAPI.GET("/sessions/export", handlers.Report.ExportCSV)
		adminAPI.GET("/sessions/:id", handlers.Report.GetSession)

		// Live monitoring
		adminAPI.GET("/monitor", handlers.Monitor.MonitorSSE)
	}

	return router
}
