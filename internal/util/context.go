package util

import (
	"github.com/gin-gonic/gin"
	"seungpyo.lee/SurveyBuilder/internal/domain"
)

const (
	userKey  = "user"
	tokenKey = "access_token"
)

// SetAuth stores the authenticated caller on the request context.
func SetAuth(c *gin.Context, user *domain.User, token *domain.AccessToken) {
	c.Set(userKey, user)
	c.Set(tokenKey, token)
}

// GetUser returns the caller resolved by the auth middleware.
func GetUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}

// GetAccessToken returns the token the current request authenticated with.
func GetAccessToken(c *gin.Context) (*domain.AccessToken, bool) {
	v, ok := c.Get(tokenKey)
	if !ok {
		return nil, false
	}
	token, ok := v.(*domain.AccessToken)
	return token, ok && token != nil
}

// GetUserID returns the caller id, or 0 when unauthenticated.
func GetUserID(c *gin.Context) uint {
	if user, ok := GetUser(c); ok {
		return user.ID
	}
	return 0
}
