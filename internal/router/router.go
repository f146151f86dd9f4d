package router

import (
	"net/http"
	"time"

	"github.com/coursekit/coursekit-backend/internal/config"
	"github.com/coursekit/coursekit-backend/internal/handler"
	"github.com/coursekit/coursekit-backend/internal/middleware"
	"github.com/coursekit/coursekit-backend/internal/model"
	"github.com/coursekit/coursekit-backend/internal/response"
	"github.com/coursekit/coursekit-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Course     *handler.CourseHandler
	Enrollment *handler.EnrollmentHandler
	Test       *handler.TestHandler
	Question   *handler.QuestionHandler
	Attempt    *handler.AttemptHandler
	Grading    *handler.GradingHandler
	Monitor    *handler.MonitorHandler
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

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── 2. Authenticated Group (any role) ─────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		// Catalog and content
		api.GET("/courses", handlers.Course.ListCatalog)
		api.GET("/courses/:course_id", handlers.Course.GetCourse)
		api.GET("/courses/:course_id/content", handlers.Course.GetContent)
		api.POST("/courses/:course_id/enroll", handlers.Enrollment.Enroll)
		api.GET("/enrollments", handlers.Enrollment.ListMine)

		// Taking tests
		api.GET("/tests/:test_id/paper", handlers.Test.GetPaper)
		api.POST("/tests/:test_id/attempts", handlers.Attempt.StartAttempt)
		api.GET("/tests/:test_id/attempts/:attempt_id", handlers.Attempt.GetState)
		api.PUT("/tests/:test_id/attempts/:attempt_id/responses", handlers.Attempt.SubmitResponse)
		api.POST("/tests/:test_id/attempts/:attempt_id/submit", handlers.Attempt.SubmitAttempt)
		api.GET("/tests/:test_id/attempts/:attempt_id/results", handlers.Attempt.GetResults)
		api.GET("/attempts", handlers.Attempt.ListMine)
	}

	// ─── 3. Management Group (Instructor/Admin) ────────────────────────
	manage := router.Group("/api/v1/manage")
	manage.Use(
		middleware.RequireAuth(authService),
		middleware.RequireRole(model.RoleInstructor, model.RoleAdmin),
	)
	{
		// Courses
		manage.POST("/courses", handlers.Course.CreateCourse)
		manage.GET("/courses", handlers.Course.ListOwned)
		manage.PATCH("/courses/:course_id", handlers.Course.UpdateCourse)
		manage.DELETE("/courses/:course_id", handlers.Course.DeleteCourse)
		manage.GET("/courses/:course_id/stats", handlers.Enrollment.CourseStats)

		// Modules and lessons
		manage.POST("/courses/:course_id/modules", handlers.Course.AddModule)
		manage.DELETE("/courses/:course_id/modules/:module_id", handlers.Course.DeleteModule)
		manage.POST("/courses/:course_id/modules/:module_id/lessons", handlers.Course.AddLesson)
		manage.PATCH("/courses/:course_id/modules/:module_id/lessons/:lesson_id", handlers.Course.UpdateLesson)
		manage.DELETE("/courses/:course_id/modules/:module_id/lessons/:lesson_id", handlers.Course.DeleteLesson)

		// Tests
		manage.POST("/tests", handlers.Test.CreateTest)
		manage.GET("/tests", handlers.Test.ListTests)
		manage.GET("/tests/:test_id", handlers.Test.GetTest)
		manage.PATCH("/tests/:test_id", handlers.Test.UpdateTest)
		manage.DELETE("/tests/:test_id", handlers.Test.DeleteTest)
		manage.POST("/tests/:test_id/publish", handlers.Test.PublishTest)
		manage.POST("/tests/:test_id/archive", handlers.Test.ArchiveTest)

		// Questions
		manage.POST("/tests/:test_id/questions", handlers.Question.AddQuestion)
		manage.GET("/tests/:test_id/questions", handlers.Question.ListQuestions)
		manage.PUT("/tests/:test_id/questions", handlers.Question.ReplaceQuestions)
		manage.DELETE("/tests/:test_id/questions/:question_id", handlers.Question.DeleteQuestion)

		// Attempts and grading
		manage.GET("/tests/:test_id/attempts", handlers.Grading.ListAttempts)
		manage.GET("/tests/:test_id/attempts/:attempt_id", handlers.Grading.GetAttemptDetail)
		manage.POST("/tests/:test_id/attempts/:attempt_id/grade", handlers.Grading.GradeAttempt)
	}

	// ─── 4. WebSocket Group (Instructor/Admin) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireAuth(authService),
		middleware.RequireRole(model.RoleInstructor, model.RoleAdmin),
	)
	{
		ws.GET("/tests/:test_id/monitor", handlers.Monitor.StreamTestMonitor)
	}

	return router
}
