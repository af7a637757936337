package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/formai-backend/internal/handlers"
	"github.com/yungbote/formai-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
	UserHandler    *handlers.UserHandler
	SessionHandler *handlers.SessionHandler
	LiveHandler    *handlers.LiveHandler
	TracingEnabled bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("formai-backend"))
	}

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:8081",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/", handlers.Root)
	router.GET("/healthcheck", handlers.HealthCheck)

	router.POST("/user/register", cfg.AuthHandler.Register)
	router.POST("/user/login", cfg.AuthHandler.Login)
	router.POST("/user/onboard", cfg.UserHandler.Onboard)
	router.GET("/user/dashboard-config", cfg.UserHandler.DashboardConfig)
	router.GET("/sports", cfg.UserHandler.ListSports)

	router.POST("/session/analyze/deep", cfg.SessionHandler.AnalyzeDeep)
	router.GET("/session/live-ws/:user_id/:sport_id", cfg.LiveHandler.Stream)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	protected.GET("/user/me", cfg.UserHandler.Me)

	return router
}
