package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/food_rescue_app/internal/adapters/database/memory"
	"github.com/SscSPs/food_rescue_app/internal/core/services"
	"github.com/SscSPs/food_rescue_app/internal/dto"
	"github.com/SscSPs/food_rescue_app/internal/handlers"
	"github.com/SscSPs/food_rescue_app/internal/middleware"
	"github.com/SscSPs/food_rescue_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"google.golang.org/api/idtoken"
)

const resetURLBase = "http://localhost:8081/auth-tabs/reset/"

// captureMailer records every reset link it is asked to send.
type captureMailer struct {
	mu   sync.Mutex
	urls map[string]string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, email string, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls[email] = resetURL
	return nil
}

func (m *captureMailer) lastToken(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.TrimPrefix(m.urls[email], resetURLBase)
}

type AuthHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	cfg    *config.Config
	mailer *captureMailer
}

func (suite *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	unavailableApple := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	suite.T().Cleanup(unavailableApple.Close)

	suite.cfg = &config.Config{
		Token: config.TokenConfig{
			AccessSecret:  "test-access-secret",
			RefreshSecret: "test-refresh-secret",
			AccessTTL:     2 * time.Hour,
			RefreshTTL:    168 * time.Hour,
			Issuer:        "food-rescue-test",
		},
		Cookie:               config.CookieConfig{Name: "refresh_token", Path: "/", InBody: true},
		GoogleClientID:       "client-123",
		AppleAudience:        "host.exp.Exponent",
		AppleKeysURL:         unavailableApple.URL,
		PasswordResetURLBase: resetURLBase,
		AuthRateLimit:        "1000-M",
	}
	suite.mailer = &captureMailer{urls: map[string]string{}}

	googleValidator := func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		if token != "google-good" || audience != "client-123" {
			return nil, errors.New("idtoken: invalid token")
		}
		return &idtoken.Payload{Subject: "g-1", Claims: map[string]interface{}{"email": "Google.User@Example.com"}}, nil
	}

	store := memory.NewStore()
	container, err := services.NewServiceContainer(suite.cfg, memory.NewRepositoryProvider(store), suite.mailer, nil,
		services.WithIDTokenValidator(googleValidator))
	suite.Require().NoError(err)

	suite.router = gin.New()
	suite.router.Use(middleware.StructuredLoggingMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil))))
	suite.Require().NoError(handlers.RegisterRoutes(suite.router, suite.cfg, container, nil))
}

func (suite *AuthHandlerTestSuite) do(method, path string, body any, modify ...func(*http.Request)) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	for _, m := range modify {
		m(req)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AuthHandlerTestSuite) decodeLogin(w *httptest.ResponseRecorder) dto.LoginResponse {
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotEmpty(resp.Token)
	return resp
}

func (suite *AuthHandlerTestSuite) register(email, password string) dto.LoginResponse {
	return suite.decodeLogin(suite.do(http.MethodPost, "/register", dto.RegisterRequest{
		Email: email, Password: password, PasswordConfirm: password,
	}))
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func refreshCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "refresh_token" {
			return c
		}
	}
	return nil
}

func (suite *AuthHandlerTestSuite) TestRegisterThenFetchCurrentUser() {
	w := suite.do(http.MethodPost, "/register", dto.RegisterRequest{
		Email: "New.User@Example.com", Password: "hunter22", PasswordConfirm: "hunter22",
	})
	resp := suite.decodeLogin(w)
	suite.NotEmpty(resp.RefreshToken)
	suite.NotEmpty(w.Header().Get("X-Request-ID"))

	cookie := refreshCookie(w)
	suite.Require().NotNil(cookie)
	suite.Equal(resp.RefreshToken, cookie.Value)
	suite.True(cookie.HttpOnly)
	suite.Equal(http.SameSiteLaxMode, cookie.SameSite)

	w = suite.do(http.MethodGet, "/user", nil, bearer(resp.Token))
	suite.Require().Equal(http.StatusOK, w.Code)
	var user dto.UserResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &user))
	suite.Equal("new.user@example.com", user.Email)
	suite.NotEmpty(user.ID)
}

func (suite *AuthHandlerTestSuite) TestRegisterValidation() {
	w := suite.do(http.MethodPost, "/register", dto.RegisterRequest{
		Email: "a@example.com", Password: "one", PasswordConfirm: "two",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "password_confirm")

	w = suite.do(http.MethodPost, "/register", map[string]string{"email": "not-an-email"})
	suite.Equal(http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.NotEmpty(resp.Fields)

	suite.register("taken@example.com", "pw")
	w = suite.do(http.MethodPost, "/register", dto.RegisterRequest{
		Email: "TAKEN@example.com", Password: "pw", PasswordConfirm: "pw",
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), `"email"`)
}

func (suite *AuthHandlerTestSuite) TestConcurrentRegistrationSameEmail() {
	const attempts = 5
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = suite.do(http.MethodPost, "/register", dto.RegisterRequest{
				Email: "race@example.com", Password: "pw", PasswordConfirm: "pw",
			}).Code
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, code := range codes {
		if code == http.StatusOK {
			ok++
			continue
		}
		suite.Equal(http.StatusBadRequest, code)
	}
	suite.Equal(1, ok)
}

func (suite *AuthHandlerTestSuite) TestLogin() {
	suite.register("login@example.com", "secret")

	resp := suite.decodeLogin(suite.do(http.MethodPost, "/login", dto.LoginRequest{Email: "Login@Example.com", Password: "secret"}))
	suite.NotEmpty(resp.RefreshToken)

	w := suite.do(http.MethodPost, "/login", dto.LoginRequest{Email: "login@example.com", Password: "wrong"})
	suite.Equal(http.StatusUnauthorized, w.Code)
	w = suite.do(http.MethodPost, "/login", dto.LoginRequest{Email: "nobody@example.com", Password: "secret"})
	suite.Equal(http.StatusUnauthorized, w.Code)
	w = suite.do(http.MethodPost, "/login", map[string]string{})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AuthHandlerTestSuite) TestRefreshAndLogout() {
	first := suite.register("session@example.com", "pw")
	second := suite.decodeLogin(suite.do(http.MethodPost, "/login", dto.LoginRequest{Email: "session@example.com", Password: "pw"}))
	suite.NotEqual(first.RefreshToken, second.RefreshToken)

	// cookie transport
	viaCookie := suite.decodeLogin(suite.do(http.MethodPost, "/refresh", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "refresh_token", Value: first.RefreshToken})
	}))
	suite.Equal(first.RefreshToken, viaCookie.RefreshToken)

	// body transport
	viaBody := suite.decodeLogin(suite.do(http.MethodPost, "/refresh", dto.RefreshTokenRequest{RefreshToken: second.RefreshToken}))
	suite.Equal(second.RefreshToken, viaBody.RefreshToken)

	w := suite.do(http.MethodGet, "/user", nil, bearer(viaBody.Token))
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPost, "/logout", dto.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"message":"success"}`, w.Body.String())
	cleared := refreshCookie(w)
	suite.Require().NotNil(cleared)
	suite.Empty(cleared.Value)

	w = suite.do(http.MethodPost, "/refresh", dto.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	suite.Equal(http.StatusUnauthorized, w.Code)

	// the other session survives
	w = suite.do(http.MethodPost, "/refresh", dto.RefreshTokenRequest{RefreshToken: second.RefreshToken})
	suite.Equal(http.StatusOK, w.Code)

	// an access token is not a refresh token
	w = suite.do(http.MethodPost, "/refresh", dto.RefreshTokenRequest{RefreshToken: second.Token})
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodPost, "/refresh", nil)
	suite.Equal(http.StatusUnauthorized, w.Code)

	w = suite.do(http.MethodPost, "/logout", nil)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *AuthHandlerTestSuite) TestForgotAndReset() {
	suite.register("forgot@example.com", "old-password")

	w := suite.do(http.MethodPost, "/forgot", dto.ForgotPasswordRequest{Email: "unknown@example.com"})
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"message":"success"}`, w.Body.String())

	w = suite.do(http.MethodPost, "/forgot", dto.ForgotPasswordRequest{Email: "forgot@example.com"})
	suite.Equal(http.StatusOK, w.Code)
	token := suite.mailer.lastToken("forgot@example.com")
	suite.Len(token, 10)

	w = suite.do(http.MethodPost, "/reset", dto.ResetPasswordRequest{Token: "nope", Password: "x", PasswordConfirm: "x"})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/reset", dto.ResetPasswordRequest{Token: token, Password: "a", PasswordConfirm: "b"})
	suite.Equal(http.StatusBadRequest, w.Code)

	// the request for an unregistered email has a token but no user behind it
	w = suite.do(http.MethodPost, "/reset", dto.ResetPasswordRequest{
		Token: suite.mailer.lastToken("unknown@example.com"), Password: "x", PasswordConfirm: "x",
	})
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.do(http.MethodPost, "/reset", dto.ResetPasswordRequest{Token: token, Password: "new-password", PasswordConfirm: "new-password"})
	suite.Equal(http.StatusOK, w.Code)

	w = suite.do(http.MethodPost, "/login", dto.LoginRequest{Email: "forgot@example.com", Password: "old-password"})
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.decodeLogin(suite.do(http.MethodPost, "/login", dto.LoginRequest{Email: "forgot@example.com", Password: "new-password"}))
}

func (suite *AuthHandlerTestSuite) TestPasswordLongerThanBcryptLimit() {
	long := strings.Repeat("p", 80)

	w := suite.do(http.MethodPost, "/register", dto.RegisterRequest{
		Email: "long@example.com", Password: long, PasswordConfirm: long,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Fields, 1)
	suite.Equal("password", resp.Fields[0].Field)

	suite.register("long@example.com", "short-password")
	suite.Equal(http.StatusOK, suite.do(http.MethodPost, "/forgot", dto.ForgotPasswordRequest{Email: "long@example.com"}).Code)
	w = suite.do(http.MethodPost, "/reset", dto.ResetPasswordRequest{
		Token: suite.mailer.lastToken("long@example.com"), Password: long, PasswordConfirm: long,
	})
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), `"password"`)

	suite.decodeLogin(suite.do(http.MethodPost, "/login", dto.LoginRequest{Email: "long@example.com", Password: "short-password"}))
}

func (suite *AuthHandlerTestSuite) TestAuthMiddlewareRejections() {
	resp := suite.register("mw@example.com", "pw")

	headers := []string{"", "Bearer", "Token " + resp.Token, resp.Token, "Bearer garbage", "Bearer " + resp.RefreshToken}
	for _, h := range headers {
		w := suite.do(http.MethodGet, "/user", nil, func(r *http.Request) {
			if h != "" {
				r.Header.Set("Authorization", h)
			}
		})
		suite.Equal(http.StatusUnauthorized, w.Code, "header %q", h)
	}
}

func (suite *AuthHandlerTestSuite) TestGoogleAuth() {
	resp := suite.decodeLogin(suite.do(http.MethodPost, "/google-auth", dto.FederatedAuthRequest{Token: "google-good"}))

	w := suite.do(http.MethodGet, "/user", nil, bearer(resp.Token))
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.Contains(w.Body.String(), "google.user@example.com")

	// a second sign-in reuses the same account
	again := suite.decodeLogin(suite.do(http.MethodPost, "/google-auth", dto.FederatedAuthRequest{Token: "google-good"}))
	w = suite.do(http.MethodGet, "/user", nil, bearer(again.Token))
	var first, second dto.UserResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &second))
	w = suite.do(http.MethodGet, "/user", nil, bearer(resp.Token))
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &first))
	suite.Equal(first.ID, second.ID)

	w = suite.do(http.MethodPost, "/google-auth", dto.FederatedAuthRequest{Token: "forged"})
	suite.Equal(http.StatusUnauthorized, w.Code)
	w = suite.do(http.MethodPost, "/google-auth", map[string]string{})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AuthHandlerTestSuite) TestAppleProviderFailureIsSanitized() {
	w := suite.do(http.MethodPost, "/apple-auth", dto.FederatedAuthRequest{Token: "any.token.value"})
	suite.Equal(http.StatusInternalServerError, w.Code)
	suite.JSONEq(`{"error":"Unable to verify identity token"}`, w.Body.String())
}

func (suite *AuthHandlerTestSuite) TestHealth() {
	w := suite.do(http.MethodGet, "/health", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func TestAuthHandler(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}
