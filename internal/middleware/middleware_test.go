package middleware_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	"github.com/SscSPs/food_rescue_app/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	users map[string]*domain.User
	err   error
}

func (s stubAuthenticator) Authenticate(_ context.Context, header string) (*domain.User, error) {
	if u, ok := s.users[header]; ok {
		return u, nil
	}
	return nil, s.err
}

type recordingTracker struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTracker) Enqueue(distinctID string, event string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, distinctID+":"+event)
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/user", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetLoggerFromCtx_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), middleware.GetLoggerFromCtx(context.Background()))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := middleware.WithLogger(context.Background(), logger)
	assert.Same(t, logger, middleware.GetLoggerFromCtx(ctx))
}

func TestAuthMiddleware(t *testing.T) {
	authn := stubAuthenticator{
		users: map[string]*domain.User{"Bearer good": {UserID: "user-1"}},
		err:   apperrors.ErrTokenInvalid,
	}
	tracker := &recordingTracker{}

	r := newRouter()
	r.GET("/user", middleware.AuthMiddleware(authn), middleware.PosthogMiddleware(tracker), func(c *gin.Context) {
		userID, ok := middleware.GetUserIDFromContext(c)
		require.True(t, ok)
		c.String(http.StatusOK, userID)
	})

	w := serve(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, []string{"user-1:user"}, tracker.events)

	w = serve(r, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Authentication failed"}`, w.Body.String())
	assert.Len(t, tracker.events, 1, "rejected requests are not tracked")
}

func TestAuthMiddleware_StoresResolvedUser(t *testing.T) {
	resolved := &domain.User{UserID: "user-1", Email: "a@x.com"}
	authn := stubAuthenticator{users: map[string]*domain.User{"Bearer good": resolved}}

	r := newRouter()
	r.GET("/user", middleware.AuthMiddleware(authn), func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		require.True(t, ok)
		assert.Same(t, resolved, user)

		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, serve(r, "Bearer good").Code)

	r = newRouter()
	r.GET("/open", func(c *gin.Context) {
		_, ok := middleware.GetUserFromContext(c)
		assert.False(t, ok)
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_AlwaysUnauthorized(t *testing.T) {
	causes := []error{
		apperrors.ErrAuthMalformed,
		apperrors.ErrTokenExpired,
		apperrors.ErrUserNotFound,
		errors.New("database is down"),
	}
	for _, cause := range causes {
		t.Run(cause.Error(), func(t *testing.T) {
			r := newRouter()
			r.GET("/user", middleware.AuthMiddleware(stubAuthenticator{err: cause}), func(c *gin.Context) {
				t.Fatal("handler must not run")
			})
			assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer x").Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	_, err := middleware.NewIPRateLimiter("ten per minute")
	require.Error(t, err)

	limiter, err := middleware.NewIPRateLimiter("2-M")
	require.NoError(t, err)

	r := newRouter()
	r.GET("/user", middleware.RateLimit(limiter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, "").Code)
	w := serve(r, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}
