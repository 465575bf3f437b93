package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-eduhr/internal/auth"
	autherrors "go-eduhr/internal/auth/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeAuthService struct {
	loginFn   func(ctx context.Context, email, password string) (auth.TokenPair, auth.AuthResponse, error)
	refreshFn func(ctx context.Context, token string) (auth.TokenPair, auth.AuthResponse, error)
	meFn      func(ctx context.Context, userID string) (auth.AuthResponse, error)
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (auth.TokenPair, auth.AuthResponse, error) {
	return f.loginFn(ctx, email, password)
}
func (f *fakeAuthService) RefreshToken(ctx context.Context, token string) (auth.TokenPair, auth.AuthResponse, error) {
	return f.refreshFn(ctx, token)
}
func (f *fakeAuthService) GetMe(ctx context.Context, userID string) (auth.AuthResponse, error) {
	return f.meFn(ctx, userID)
}

func TestHandler_Login(t *testing.T) {
	gin.SetMode(gin.TestMode)
	okSvc := &fakeAuthService{
		loginFn: func(ctx context.Context, email, password string) (auth.TokenPair, auth.AuthResponse, error) {
			return auth.TokenPair{AccessToken: "a", RefreshToken: "r"}, auth.AuthResponse{Email: email}, nil
		},
	}

	t.Run("web client gets cookies", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@school.edu","password":"x"}`))
		c.Request.Header.Set("Content-Type", "application/json")
		c.Request.Header.Set("X-Client-Type", "web")

		auth.NewHandler(okSvc, false).Login(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, w.Result().Cookies(), 2)
		assert.Contains(t, w.Body.String(), `"access_token":"a"`)
	})

	t.Run("api client gets body only", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@school.edu","password":"x"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		auth.NewHandler(okSvc, false).Login(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc := &fakeAuthService{
			loginFn: func(ctx context.Context, email, password string) (auth.TokenPair, auth.AuthResponse, error) {
				return auth.TokenPair{}, auth.AuthResponse{}, autherrors.ErrInvalidCredentials
			},
		}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@school.edu","password":"x"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		auth.NewHandler(svc, false).Login(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_FAILED")
	})

	t.Run("invalid email", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"nope","password":"x"}`))
		c.Request.Header.Set("Content-Type", "application/json")

		auth.NewHandler(okSvc, false).Login(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_RefreshToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/auth/refresh", strings.NewReader(`{}`))
		c.Request.Header.Set("Content-Type", "application/json")

		auth.NewHandler(&fakeAuthService{}, false).RefreshToken(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "NO_REFRESH_TOKEN")
	})

	t.Run("cookie token for web client", func(t *testing.T) {
		svc := &fakeAuthService{
			refreshFn: func(ctx context.Context, token string) (auth.TokenPair, auth.AuthResponse, error) {
				assert.Equal(t, "cookie-refresh", token)
				return auth.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, auth.AuthResponse{}, nil
			},
		}
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		c.Request.Header.Set("X-Client-Type", "web")
		c.Request.AddCookie(&http.Cookie{Name: "refresh_token", Value: "cookie-refresh"})

		auth.NewHandler(svc, false).RefreshToken(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHandler_Me(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeAuthService{
		meFn: func(ctx context.Context, userID string) (auth.AuthResponse, error) {
			assert.Equal(t, "u-1", userID)
			return auth.AuthResponse{ID: userID, Role: "TEACHER"}, nil
		},
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	c.Set("user_id", "u-1")

	auth.NewHandler(svc, false).Me(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"TEACHER"`)
}
