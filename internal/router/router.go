package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Juenzo/CloudComputing-Project/internal/config"
	"github.com/Juenzo/CloudComputing-Project/internal/handler"
	"github.com/Juenzo/CloudComputing-Project/internal/middleware"
	"github.com/Juenzo/CloudComputing-Project/internal/observability"
	"github.com/Juenzo/CloudComputing-Project/internal/response"
)

const uploadsMaxAge = 365 * 24 * 60 * 60

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Course *handler.CourseHandler
	Lesson *handler.LessonHandler
	Quiz   *handler.QuizHandler
	Media  *handler.MediaHandler
	WS     *handler.WSHandler
	Health *handler.HealthHandler
}

// SetupRouter configures all Gin route groups with their middlewares.
// submitLimit guards grading; pass nil to leave it unlimited.
func SetupRouter(handlers *Handlers, cfg *config.Config, submitLimit gin.HandlerFunc) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()
	router.MaxMultipartMemory = 8 << 20

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(otelgin.Middleware(observability.ServiceName))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Uploaded files are already compressed; the WebSocket stream must not be
	// wrapped.
	router.Use(middleware.Brotli("/ws", "/uploads"))

	// Local uploads are served statically. Object names are random and never
	// rewritten, so they can be cached for a year.
	if cfg.StorageBackend == config.StorageLocal {
		uploads := router.Group("/uploads")
		uploads.Use(middleware.ImmutableCache(uploadsMaxAge))
		uploads.Static("/", cfg.UploadDir)
	}

	router.GET("/health", handlers.Health.Health)

	api := router.Group("/api")
	{
		courses := api.Group("/courses")
		courses.GET("", handlers.Course.List)
		courses.POST("", handlers.Course.Create)
		courses.GET("/:id", handlers.Course.Get)
		courses.PUT("/:id", handlers.Course.Update)
		courses.DELETE("/:id", handlers.Course.Delete)

		courses.GET("/:id/lessons", handlers.Lesson.ListByCourse)
		courses.POST("/:id/lessons/reorder", handlers.Lesson.Reorder)

		courses.GET("/:id/quiz", handlers.Quiz.ListByCourse)
		courses.POST("/:id/quiz", handlers.Quiz.Create)
		courses.PUT("/:id/quiz", handlers.Quiz.Save)
		courses.DELETE("/:id/quiz", handlers.Quiz.Delete)

		lessons := api.Group("/lessons")
		lessons.POST("", handlers.Lesson.Create)
		lessons.GET("/:id", handlers.Lesson.Get)
		lessons.PUT("/:id", handlers.Lesson.Update)
		lessons.DELETE("/:id", handlers.Lesson.Delete)

		api.POST("/upload", handlers.Media.Upload)

		// Quiz content changes whenever an author saves; never cache it.
		quizzes := api.Group("/quiz")
		quizzes.Use(middleware.NoStore())
		quizzes.GET("/:id", handlers.Quiz.Get)
		quizzes.GET("/:id/full", handlers.Quiz.GetFull)
		submit := []gin.HandlerFunc{handlers.Quiz.Submit}
		if submitLimit != nil {
			submit = append([]gin.HandlerFunc{submitLimit}, submit...)
		}
		quizzes.POST("/:id/submit", submit...)
	}

	router.GET("/ws/quiz/:id/attempt", handlers.WS.QuizAttemptStream)

	return router
}
