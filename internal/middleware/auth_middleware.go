package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/internal/util"
	"seungpyo.lee/SurveyBuilder/pkg/logger"
)

// AuthMiddleware returns a Gin middleware that resolves the bearer token
// to a user and injects both into the context.
func AuthMiddleware(auth domain.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortUnauthenticated(c, "missing or invalid Authorization header")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		user, token, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthenticated) {
				logger.ErrorLogger.Error("authentication failed", zap.Error(err))
			}
			abortUnauthenticated(c, "invalid access token")
			return
		}
		util.SetAuth(c, user, token)
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, reason string) {
	logger.AppLogger.Debug("request rejected",
		zap.String("reason", reason),
		zap.String("path", c.Request.URL.Path))
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthenticated."})
}
