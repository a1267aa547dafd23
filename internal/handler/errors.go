package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/internal/storage"
	"seungpyo.lee/SurveyBuilder/internal/util"
	"seungpyo.lee/SurveyBuilder/internal/validation"
	"seungpyo.lee/SurveyBuilder/pkg/logger"
)

var imageMessages = map[error]string{
	storage.ErrInvalidImageFormat:   "The image must be a base64 encoded data URI.",
	storage.ErrUnsupportedImageType: "The image must be a file of type: jpg, jpeg, gif, png.",
	storage.ErrImageDecode:          "The image could not be decoded.",
}

// respondError maps err to its HTTP status and body, logs it and aborts.
func respondError(c *gin.Context, err error) {
	status, body := classify(err)

	logger.ErrorLogger.Error("API Error",
		zap.Int("statusCode", status),
		zap.String("ip", c.ClientIP()),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Uint("user", util.GetUserID(c)),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(status, body)
}

// respondBindError handles errors from request binding. Bodies bound with
// ShouldBindBodyWith stay in the context and sharpen type error keys.
func respondBindError(c *gin.Context, err error) {
	var body []byte
	if raw, ok := c.Get(gin.BodyBytesKey); ok {
		body, _ = raw.([]byte)
	}
	if verr := validation.TranslateBody(err, body); verr != nil {
		respondError(c, verr)
		return
	}
	respondError(c, domain.NewValidationError("body", "The request body is invalid."))
}

func classify(err error) (int, gin.H) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, gin.H{"message": verr.First(), "errors": verr.Fields}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnprocessableEntity, gin.H{"error": "Invalid credentials"}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, gin.H{"message": "Unauthenticated."}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, gin.H{"message": "Unauthorized action"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, gin.H{"message": "Not Found"}
	}
	for target, msg := range imageMessages {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity, gin.H{"message": msg, "errors": gin.H{"image": []string{msg}}}
		}
	}
	return http.StatusInternalServerError, gin.H{"message": "Server Error"}
}
