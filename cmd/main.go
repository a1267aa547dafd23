package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"seungpyo.lee/SurveyBuilder/internal/cache"
	"seungpyo.lee/SurveyBuilder/internal/config"
	"seungpyo.lee/SurveyBuilder/internal/database"
	"seungpyo.lee/SurveyBuilder/internal/repository"
	"seungpyo.lee/SurveyBuilder/internal/server"
	"seungpyo.lee/SurveyBuilder/internal/service"
	"seungpyo.lee/SurveyBuilder/internal/storage"
	"seungpyo.lee/SurveyBuilder/internal/validation"
	"seungpyo.lee/SurveyBuilder/pkg/jwt"
	"seungpyo.lee/SurveyBuilder/pkg/logger"
)

func main() {
	conf, err := config.LoadSurveyConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := logger.Init(conf.LogLevel, conf.LogDir); err != nil {
		log.Fatalf("Failed to initialize loggers: %v", err)
	}
	defer logger.Sync()

	db, err := database.Open(conf.PostgreConnectionString)
	if err != nil {
		logger.AppLogger.Fatal("Database startup failed", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.AppLogger.Error("Failed to close database", zap.Error(err))
		}
	}()

	var redisClient *redis.Client
	if addr := conf.RedisAddr(); addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:       addr,
			Password:   conf.RedisDBPassword,
			DB:         conf.RedisDB,
			MaxRetries: conf.RedisMaxRetries,
			PoolSize:   conf.RedisPoolSize,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.AppLogger.Warn("Redis unreachable, tokens will be checked against the database", zap.String("addr", addr), zap.Error(err))
		}
	} else {
		logger.AppLogger.Info("Redis not configured, token cache disabled")
	}

	if err := validation.Setup(); err != nil {
		logger.AppLogger.Fatal("Failed to configure validator", zap.Error(err))
	}

	gdb := db.DB()
	images := storage.NewLocalImageStore(conf.PublicDir, conf.AppURL)
	authSvc := service.NewAuthService(
		repository.NewUserRepository(gdb),
		repository.NewTokenRepository(gdb),
		cache.NewTokenCache(redisClient),
		jwt.NewTokenManager(conf.JWTSecretKey),
		conf.AccessTokenDuration(),
	)
	surveySvc := service.NewSurveyService(
		repository.NewSurveyRepository(gdb),
		repository.NewTransactor(gdb),
		images,
		conf.EnforceUpdateOwnership,
	)

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Dependencies{
		Auth:      authSvc,
		Surveys:   surveySvc,
		Images:    images,
		DB:        db,
		PublicDir: conf.PublicDir,
	})
	srv := server.NewHTTPServer(conf.ServerPort, router)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.AppLogger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.AppLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	logger.AppLogger.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.AppLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	logger.AppLogger.Info("Server exited properly")
}
