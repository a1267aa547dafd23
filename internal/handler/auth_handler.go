package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/internal/model"
	"seungpyo.lee/SurveyBuilder/internal/util"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	Service domain.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service domain.AuthService) *AuthHandler {
	return &AuthHandler{Service: service}
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.Service.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewAuthResponse(result))
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := h.Service.Login(c.Request.Context(), req.Email, req.Password, req.Remember)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewAuthResponse(result))
}

// Logout handles POST /logout and revokes the token used for the request.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := util.GetAccessToken(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}
	if err := h.Service.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

// Me handles GET /user and returns the caller.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := util.GetUser(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, model.NewUserResource(user))
}
