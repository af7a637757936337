package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/formai-backend/internal/db"
	"github.com/yungbote/formai-backend/internal/handlers"
	"github.com/yungbote/formai-backend/internal/logger"
	"github.com/yungbote/formai-backend/internal/middleware"
	"github.com/yungbote/formai-backend/internal/observability"
	"github.com/yungbote/formai-backend/internal/repos"
	"github.com/yungbote/formai-backend/internal/server"
	"github.com/yungbote/formai-backend/internal/services"
	"github.com/yungbote/formai-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing (opt-in)
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "formai-backend",
		Environment: os.Getenv("APP_ENV"),
		Version:     os.Getenv("APP_VERSION"),
	})
	if otelShutdown != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(ctx)
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	sportConfigDir := utils.GetEnv("SPORT_CONFIG_DIR", "configs/sports", log)
	port := utils.GetEnv("PORT", "8080", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	membershipRepo := repos.NewSportMembershipRepo(thePG, log)
	sessionRepo := repos.NewSessionRepo(thePG, log)

	// Redis (optional, dashboard stats cache)
	var redisClient *redis.Client
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Warn("Redis unreachable, dashboard stats cache disabled", "error", err)
			redisClient = nil
		}
	}

	// Services
	log.Info("Setting up Services from main...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Warn("Could not init BucketService, blob uploads will degrade", "error", err)
		bucketService = nil
	}
	geminiClient, err := services.NewGeminiClient(log)
	if err != nil {
		log.Warn("Could not init GeminiClient, deep analysis will fail at call time", "error", err)
		geminiClient = nil
	}
	var avatarService services.AvatarService
	if bucketService != nil {
		avatarService, err = services.NewAvatarService(thePG, log, userRepo, bucketService)
		if err != nil {
			log.Warn("Could not init AvatarService", "error", err)
			avatarService = nil
		}
	}
	sportConfigService := services.NewSportConfigService(log, sportConfigDir)
	authService := services.NewAuthService(thePG, log, userRepo, membershipRepo, avatarService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo, membershipRepo, sportConfigService)
	dashboardService := services.NewDashboardService(log, sessionRepo, redisClient)
	analysisService := services.NewAnalysisService(thePG, log, geminiClient, bucketService, sessionRepo)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, dashboardService, sportConfigService, membershipRepo)
	sessionHandler := handlers.NewSessionHandler(analysisService)
	liveHandler := handlers.NewLiveHandler(log)
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		UserHandler:    userHandler,
		SessionHandler: sessionHandler,
		LiveHandler:    liveHandler,
		TracingEnabled: otelShutdown != nil,
	})

	log.Info("Starting server...", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
