package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
	"github.com/SscSPs/food_rescue_app/internal/dto"
	"github.com/SscSPs/food_rescue_app/internal/middleware"
	"github.com/SscSPs/food_rescue_app/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles the credential and session endpoints.
type AuthHandler struct {
	sessionService portssvc.SessionSvcFacade
	cookie         config.CookieConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(ss portssvc.SessionSvcFacade, cookie config.CookieConfig) *AuthHandler {
	return &AuthHandler{
		sessionService: ss,
		cookie:         cookie,
	}
}

// registerAuthRoutes sets up the public authentication routes.
// limit guards the endpoints that accept credentials.
func registerAuthRoutes(r gin.IRouter, h *AuthHandler, limit gin.HandlerFunc) {
	r.POST("/register", limit, h.Register)
	r.POST("/login", limit, h.Login)
	r.POST("/refresh", h.Refresh)
	r.POST("/logout", h.Logout)
	r.POST("/forgot", limit, h.Forgot)
	r.POST("/reset", limit, h.Reset)
}

// Register godoc
// @Summary Register new user
// @Description Creates a local account and signs the user in.
// @Tags auth
// @Accept json
// @Produce json
// @Param register body dto.RegisterRequest true "User Registration Info"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, err := h.sessionService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithPair(c, pair)
}

// Login godoc
// @Summary User login
// @Description Authenticates a user by email and password.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login Credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	pair, err := h.sessionService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithPair(c, pair)
}

// Refresh godoc
// @Summary Refresh access token
// @Description Issues a new access token from the refresh token cookie, or from the body when no cookie is sent.
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body dto.RefreshTokenRequest false "Refresh token for clients without cookies"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	pair, err := h.sessionService.Refresh(c.Request.Context(), h.refreshTokenFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithPair(c, pair)
}

// Logout godoc
// @Summary Logout
// @Description Revokes the presented refresh token and clears the cookie. Always succeeds.
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body dto.RefreshTokenRequest false "Refresh token for clients without cookies"
// @Success 200 {object} dto.MessageResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessionService.Logout(c.Request.Context(), h.refreshTokenFrom(c)); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to revoke refresh token", slog.String("error", err.Error()))
	}
	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, dto.SuccessResponse)
}

// Forgot godoc
// @Summary Request a password reset
// @Description Emails a reset link. The response does not reveal whether the email is registered.
// @Tags auth
// @Accept json
// @Produce json
// @Param forgot body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /forgot [post]
func (h *AuthHandler) Forgot(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.sessionService.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse)
}

// Reset godoc
// @Summary Reset password
// @Description Sets a new password using the token from a reset link.
// @Tags auth
// @Accept json
// @Produce json
// @Param reset body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /reset [post]
func (h *AuthHandler) Reset(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.sessionService.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse)
}

// respondWithPair writes the refresh cookie when a new refresh token was issued, then the JSON body.
func (h *AuthHandler) respondWithPair(c *gin.Context, pair *domain.TokenPair) {
	if !pair.RefreshExpiresAt.IsZero() {
		h.setRefreshCookie(c, pair.RefreshToken, pair.RefreshExpiresAt)
	}
	c.JSON(http.StatusOK, dto.ToLoginResponse(pair, h.cookie.InBody))
}

// refreshTokenFrom reads the cookie first and falls back to the JSON body.
func (h *AuthHandler) refreshTokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(h.cookie.Name); err == nil && token != "" {
		return token
	}
	var req dto.RefreshTokenRequest
	// An absent or malformed body leaves the token empty, which the service rejects.
	_ = c.ShouldBindJSON(&req)
	return req.RefreshToken
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, token, maxAge, h.cookie.Path, "", h.cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, h.cookie.Path, "", h.cookie.Secure, true)
}
