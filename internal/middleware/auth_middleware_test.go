package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"seungpyo.lee/SurveyBuilder/internal/domain"
	"seungpyo.lee/SurveyBuilder/internal/util"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	args := m.Called(ctx, name, email, password)
	return nil, args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, remember bool) (*domain.AuthResult, error) {
	args := m.Called(ctx, email, password, remember)
	return nil, args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token *domain.AccessToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, bearer string) (*domain.User, *domain.AccessToken, error) {
	args := m.Called(ctx, bearer)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(*domain.AccessToken), args.Error(2)
}

func newRouter(auth domain.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/user", AuthMiddleware(auth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": util.GetUserID(c)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	auth := new(MockAuthService)
	auth.On("Authenticate", mock.Anything, "good").Return(&domain.User{ID: 3}, &domain.AccessToken{ID: "t"}, nil)
	auth.On("Authenticate", mock.Anything, "revoked").Return(nil, nil, domain.ErrUnauthenticated)
	r := newRouter(auth)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer good", http.StatusOK},
		{"revoked token", "Bearer revoked", http.StatusUnauthorized},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/user", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"id":3}`, w.Body.String())
			} else {
				assert.JSONEq(t, `{"message":"Unauthenticated."}`, w.Body.String())
			}
		})
	}
}
