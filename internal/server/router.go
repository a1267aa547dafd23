package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"seungpyo.lee/SurveyBuilder/internal/database"
	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/internal/handler"
	"seungpyo.lee/SurveyBuilder/internal/middleware"
)

// Dependencies are the services the routes are built from.
type Dependencies struct {
	Auth      domain.AuthService
	Surveys   domain.SurveyService
	Images    domain.ImageStore
	DB        database.Service
	PublicDir string
}

// NewRouter wires every route onto a gin engine.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	authHandler := handler.NewAuthHandler(deps.Auth)
	surveyHandler := handler.NewSurveyHandler(deps.Surveys, deps.Images)

	r.POST("/signup", authHandler.Signup)
	r.POST("/login", authHandler.Login)

	if deps.PublicDir != "" {
		r.Static("/images", filepath.Join(deps.PublicDir, "images"))
	}
	r.GET("/health", func(c *gin.Context) {
		if deps.DB == nil {
			c.JSON(http.StatusOK, gin.H{"status": "unknown"})
			return
		}
		stats := deps.DB.Health(c.Request.Context())
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, stats)
	})

	authed := r.Group("/", middleware.AuthMiddleware(deps.Auth))
	authed.POST("/logout", authHandler.Logout)
	authed.GET("/user", authHandler.Me)
	authed.GET("/surveys", surveyHandler.ListSurveys)
	authed.POST("/surveys", surveyHandler.CreateSurvey)
	authed.GET("/surveys/:id", surveyHandler.GetSurvey)
	authed.PUT("/surveys/:id", surveyHandler.UpdateSurvey)
	authed.DELETE("/surveys/:id", surveyHandler.DeleteSurvey)

	return r
}

// NewHTTPServer wraps the router with the server timeouts.
func NewHTTPServer(port string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      h,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
