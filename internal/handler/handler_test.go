package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/internal/storage"
	"seungpyo.lee/SurveyBuilder/internal/util"
	"seungpyo.lee/SurveyBuilder/internal/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.Setup(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type MockSurveyService struct {
	mock.Mock
}

func (m *MockSurveyService) List(ctx context.Context, user *domain.User, page int) (*domain.Page[*domain.Survey], error) {
	args := m.Called(ctx, user, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Page[*domain.Survey]), args.Error(1)
}

func (m *MockSurveyService) Create(ctx context.Context, user *domain.User, input domain.SurveyInput) (*domain.Survey, error) {
	args := m.Called(ctx, user, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Survey), args.Error(1)
}

func (m *MockSurveyService) Show(ctx context.Context, user *domain.User, id uint) (*domain.Survey, error) {
	args := m.Called(ctx, user, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Survey), args.Error(1)
}

func (m *MockSurveyService) Update(ctx context.Context, user *domain.User, id uint, input domain.SurveyInput) (*domain.Survey, error) {
	args := m.Called(ctx, user, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Survey), args.Error(1)
}

func (m *MockSurveyService) Destroy(ctx context.Context, user *domain.User, id uint) error {
	return m.Called(ctx, user, id).Error(0)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, remember bool) (*domain.AuthResult, error) {
	args := m.Called(ctx, email, password, remember)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token *domain.AccessToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, bearer string) (*domain.User, *domain.AccessToken, error) {
	args := m.Called(ctx, bearer)
	return nil, nil, args.Error(2)
}

var (
	caller      = &domain.User{ID: 1, Name: "Jane", Email: "jane@example.com"}
	callerToken = &domain.AccessToken{ID: "token-1", UserID: 1}
)

func newTestRouter(auth domain.AuthService, surveys domain.SurveyService) *gin.Engine {
	r := gin.New()
	authHandler := NewAuthHandler(auth)
	surveyHandler := NewSurveyHandler(surveys, storage.NewLocalImageStore("public", "http://localhost:8000"))

	r.POST("/signup", authHandler.Signup)
	r.POST("/login", authHandler.Login)
	authed := r.Group("/", func(c *gin.Context) {
		util.SetAuth(c, caller, callerToken)
		c.Next()
	})
	authed.POST("/logout", authHandler.Logout)
	authed.GET("/user", authHandler.Me)
	authed.GET("/surveys", surveyHandler.ListSurveys)
	authed.POST("/surveys", surveyHandler.CreateSurvey)
	authed.GET("/surveys/:id", surveyHandler.GetSurvey)
	authed.PUT("/surveys/:id", surveyHandler.UpdateSurvey)
	authed.DELETE("/surveys/:id", surveyHandler.DeleteSurvey)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleSurvey() *domain.Survey {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	image := "images/cover.png"
	return &domain.Survey{
		ID: 9, UserID: 1, Title: "Feedback", Slug: "feedback", Status: true, Image: &image,
		CreatedAt: at, UpdatedAt: at,
		Questions: []*domain.Question{{ID: 4, SurveyID: 9, Question: "Pick", Type: domain.QuestionTypeRadio, Data: `["A","B"]`}},
	}
}

func TestCreateSurveyValidation(t *testing.T) {
	r := newTestRouter(new(MockAuthService), new(MockSurveyService))

	w := do(r, http.MethodPost, "/surveys", `{"questions":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{
		"message": "The status field is required.",
		"errors": {
			"status": ["The status field is required."],
			"title": ["The title field is required."]
		}
	}`, w.Body.String())

	w = do(r, http.MethodPost, "/surveys", `{"title":"T","status":"yes"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"status":["The status field must be a boolean."]`)

	w = do(r, http.MethodPost, "/surveys", `{"title":"   ","status":true,"questions":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{
		"message": "The title field is required.",
		"errors": {"title": ["The title field is required."]}
	}`, w.Body.String())

	w = do(r, http.MethodPost, "/surveys", `{"title":"T","status":true,"questions":[{"question":"ok","type":"text"},{"question":5,"type":"text"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"questions.1.question":["The question field must be a string."]`)

	w = do(r, http.MethodPost, "/surveys", `{"title":"T","status":true,"expire_date":"someday"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"expire_date"`)
}

func TestCreateSurvey(t *testing.T) {
	surveys := new(MockSurveyService)
	surveys.On("Create", mock.Anything, caller, mock.MatchedBy(func(in domain.SurveyInput) bool {
		return in.Title == "Feedback" && in.Status && len(in.Questions) == 1 && in.Questions[0].Type == "radio"
	})).Return(sampleSurvey(), nil)
	r := newTestRouter(new(MockAuthService), surveys)

	w := do(r, http.MethodPost, "/surveys", `{"title":"Feedback","status":true,"questions":[{"id":"tmp","question":"Pick","type":"radio","data":["A","B"]}]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"data": {
		"id": 9, "title": "Feedback", "slug": "feedback", "status": true,
		"image": "http://localhost:8000/images/cover.png", "description": null,
		"created_at": "2024-05-06 07:08:09", "updated_at": "2024-05-06 07:08:09", "expire_date": null,
		"questions": [{"id": 4, "type": "radio", "question": "Pick", "description": null, "data": ["A","B"]}]
	}}`, w.Body.String())
	surveys.AssertExpectations(t)
}

func TestCreateSurveyErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"question validation", domain.NewValidationError("questions.0.type", "The selected type is invalid."), http.StatusUnprocessableEntity, `"questions.0.type"`},
		{"bad image", errors.Join(errors.New("failed to save survey image"), storage.ErrUnsupportedImageType), http.StatusUnprocessableEntity, `"image":["The image must be a file of type: jpg, jpeg, gif, png."]`},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, `{"message":"Server Error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			surveys := new(MockSurveyService)
			surveys.On("Create", mock.Anything, caller, mock.Anything).Return(nil, tt.err)
			r := newTestRouter(new(MockAuthService), surveys)

			w := do(r, http.MethodPost, "/surveys", `{"title":"T","status":false}`)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
			assert.NotContains(t, w.Body.String(), "disk on fire")
		})
	}
}

func TestShowSurvey(t *testing.T) {
	surveys := new(MockSurveyService)
	surveys.On("Show", mock.Anything, caller, uint(9)).Return(sampleSurvey(), nil)
	surveys.On("Show", mock.Anything, caller, uint(10)).Return(nil, domain.ErrForbidden)
	surveys.On("Show", mock.Anything, caller, uint(11)).Return(nil, domain.ErrNotFound)
	r := newTestRouter(new(MockAuthService), surveys)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/surveys/9", "").Code)

	w := do(r, http.MethodGet, "/surveys/10", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"Unauthorized action"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/surveys/11", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/surveys/abc", "").Code)
}

func TestUpdateSurvey(t *testing.T) {
	surveys := new(MockSurveyService)
	surveys.On("Update", mock.Anything, caller, uint(9), mock.MatchedBy(func(in domain.SurveyInput) bool {
		return in.Description.Set && in.Description.Value == nil && !in.ExpireDate.Set
	})).Return(sampleSurvey(), nil)
	r := newTestRouter(new(MockAuthService), surveys)

	w := do(r, http.MethodPut, "/surveys/9", `{"title":"Feedback","status":true,"description":null,"questions":[]}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	surveys.AssertExpectations(t)
}

func TestDeleteSurvey(t *testing.T) {
	surveys := new(MockSurveyService)
	surveys.On("Destroy", mock.Anything, caller, uint(9)).Return(nil)
	r := newTestRouter(new(MockAuthService), surveys)

	w := do(r, http.MethodDelete, "/surveys/9", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestListSurveys(t *testing.T) {
	surveys := new(MockSurveyService)
	surveys.On("List", mock.Anything, caller, 2).Return(&domain.Page[*domain.Survey]{
		Items: []*domain.Survey{sampleSurvey()}, Total: 11, Page: 2, PerPage: 10,
	}, nil)
	r := newTestRouter(new(MockAuthService), surveys)

	w := do(r, http.MethodGet, "/surveys?page=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"meta":{"current_page":2,"last_page":2,"per_page":10,"total":11}`)
	surveys.AssertExpectations(t)
}

func TestSignupValidation(t *testing.T) {
	r := newTestRouter(new(MockAuthService), new(MockSurveyService))

	w := do(r, http.MethodPost, "/signup", `{"name":"Jane","email":"not-an-email","password":"short","password_confirmation":"other"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"email":["The email must be a valid email address."]`)
	assert.Contains(t, body, `"password":["The password must be at least 8 characters."]`)
	assert.Contains(t, body, `"password_confirmation":["The password confirmation does not match."]`)
}

func TestSignup(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("Signup", mock.Anything, "Jane", "jane@example.com", "long-enough").
		Return(&domain.AuthResult{User: caller, Token: "bearer"}, nil)
	r := newTestRouter(auth, new(MockSurveyService))

	w := do(r, http.MethodPost, "/signup", `{"name":"Jane","email":"jane@example.com","password":"long-enough","password_confirmation":"long-enough"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"token":"bearer"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLoginInvalidCredentials(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("Login", mock.Anything, "jane@example.com", "nope", true).Return(nil, domain.ErrInvalidCredentials)
	r := newTestRouter(auth, new(MockSurveyService))

	w := do(r, http.MethodPost, "/login", `{"email":"jane@example.com","password":"nope","remember":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())
}

func TestLogoutAndMe(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("Logout", mock.Anything, callerToken).Return(nil)
	r := newTestRouter(auth, new(MockSurveyService))

	w := do(r, http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":"true"}`, w.Body.String())

	w = do(r, http.MethodGet, "/user", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"jane@example.com"`)
	auth.AssertExpectations(t)
}
