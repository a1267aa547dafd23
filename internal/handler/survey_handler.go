package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/internal/model"
	"seungpyo.lee/SurveyBuilder/internal/util"
)

// SurveyHandler handles HTTP requests for surveys.
type SurveyHandler struct {
	Service domain.SurveyService
	Images  domain.ImageStore
}

// NewSurveyHandler creates a new SurveyHandler.
func NewSurveyHandler(service domain.SurveyService, images domain.ImageStore) *SurveyHandler {
	return &SurveyHandler{Service: service, Images: images}
}

// ListSurveys handles GET /surveys?page=N.
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	user, ok := util.GetUser(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}
	page := 1
	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	result, err := h.Service.List(c.Request.Context(), user, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSurveyPage(result, h.Images.URL))
}

// CreateSurvey handles POST /surveys.
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	user, ok := util.GetUser(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}
	input, ok := h.bindSurvey(c)
	if !ok {
		return
	}
	survey, err := h.Service.Create(c.Request.Context(), user, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": model.NewSurveyResource(survey, h.Images.URL)})
}

// GetSurvey handles GET /surveys/:id.
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	user, id, ok := h.target(c)
	if !ok {
		return
	}
	survey, err := h.Service.Show(c.Request.Context(), user, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": model.NewSurveyResource(survey, h.Images.URL)})
}

// UpdateSurvey handles PUT /surveys/:id.
func (h *SurveyHandler) UpdateSurvey(c *gin.Context) {
	user, id, ok := h.target(c)
	if !ok {
		return
	}
	input, ok := h.bindSurvey(c)
	if !ok {
		return
	}
	survey, err := h.Service.Update(c.Request.Context(), user, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": model.NewSurveyResource(survey, h.Images.URL)})
}

// DeleteSurvey handles DELETE /surveys/:id.
func (h *SurveyHandler) DeleteSurvey(c *gin.Context) {
	user, id, ok := h.target(c)
	if !ok {
		return
	}
	if err := h.Service.Destroy(c.Request.Context(), user, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// target resolves the caller and the :id path parameter. Ids that are not
// positive integers cannot name a survey and answer 404.
func (h *SurveyHandler) target(c *gin.Context) (*domain.User, uint, bool) {
	user, ok := util.GetUser(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return nil, 0, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, domain.ErrNotFound)
		return nil, 0, false
	}
	return user, uint(id), true
}

func (h *SurveyHandler) bindSurvey(c *gin.Context) (domain.SurveyInput, bool) {
	var req model.SurveyRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		respondBindError(c, err)
		return domain.SurveyInput{}, false
	}
	input, err := req.ToInput()
	if err != nil {
		respondError(c, err)
		return domain.SurveyInput{}, false
	}
	return input, true
}
