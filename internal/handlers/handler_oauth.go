package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
	"github.com/SscSPs/food_rescue_app/internal/dto"
	"github.com/SscSPs/food_rescue_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// OAuthHandler signs users in with a Google or Apple identity.
// Token responses and cookies are written the same way as AuthHandler.
type OAuthHandler struct {
	auth   *AuthHandler
	google portssvc.GoogleOAuthHandlerSvcFacade
	apple  portssvc.FederatedVerifier
}

// NewOAuthHandler creates a new instance of OAuthHandler.
func NewOAuthHandler(auth *AuthHandler, google portssvc.GoogleOAuthHandlerSvcFacade, apple portssvc.FederatedVerifier) *OAuthHandler {
	return &OAuthHandler{auth: auth, google: google, apple: apple}
}

func registerOAuthRoutes(r gin.IRouter, h *OAuthHandler, limit gin.HandlerFunc) {
	r.POST("/google-auth", limit, h.GoogleAuth)
	r.POST("/google/exchange-code", limit, h.ExchangeCodeGoogle)
	r.POST("/apple-auth", limit, h.AppleAuth)
}

// GoogleAuth godoc
// @Summary Sign in with a Google ID token
// @Tags oauth
// @Accept json
// @Produce json
// @Param token body dto.FederatedAuthRequest true "Google ID token"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /google-auth [post]
func (h *OAuthHandler) GoogleAuth(c *gin.Context) {
	var req dto.FederatedAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.federatedLogin(c, h.google, req.Token, http.StatusUnauthorized)
}

// ExchangeCodeGoogle handles the authorization code returned to the frontend by Google.
// It exchanges the code, verifies the returned ID token and signs the user in.
// @Summary Exchange a Google authorization code
// @Tags oauth
// @Accept json
// @Produce json
// @Param code body dto.ExchangeCodeRequest true "Authorization code"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid or expired authorization code"
// @Failure 401 {object} dto.ErrorResponse "Invalid Google ID token"
// @Failure 502 {object} dto.ErrorResponse "Google could not be reached"
// @Router /google/exchange-code [post]
func (h *OAuthHandler) ExchangeCodeGoogle(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	var req dto.ExchangeCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	oauth2Token, err := h.google.ExchangeCodeForToken(ctx, req.Code)
	if err != nil {
		logger.Warn("Failed to exchange authorization code with Google", slog.String("error", err.Error()))
		if errors.Is(err, apperrors.ErrInvalidProviderToken) {
			respondError(c, apperrors.NewBadRequestError("Invalid or expired authorization code"))
			return
		}
		respondError(c, apperrors.NewBadGatewayError("Failed to communicate with Google"))
		return
	}

	idToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok || idToken == "" {
		logger.Error("ID token not found in Google's token response")
		respondError(c, apperrors.NewBadGatewayError("Google did not return an ID token"))
		return
	}

	h.federatedLogin(c, h.google, idToken, http.StatusUnauthorized)
}

// AppleAuth godoc
// @Summary Sign in with an Apple identity token
// @Tags oauth
// @Accept json
// @Produce json
// @Param token body dto.FederatedAuthRequest true "Apple identity token"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /apple-auth [post]
func (h *OAuthHandler) AppleAuth(c *gin.Context) {
	var req dto.FederatedAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.federatedLogin(c, h.apple, req.Token, http.StatusBadRequest)
}

// federatedLogin verifies token and signs the user in.
// rejectStatus is the status used when the provider rejects the token.
func (h *OAuthHandler) federatedLogin(c *gin.Context, verifier portssvc.FederatedVerifier, token string, rejectStatus int) {
	ctx := c.Request.Context()

	identity, err := verifier.Verify(ctx, token)
	if err != nil {
		h.respondFederatedError(c, err, rejectStatus)
		return
	}

	pair, err := h.auth.sessionService.FederatedLogin(ctx, *identity, token)
	if err != nil {
		h.respondFederatedError(c, err, rejectStatus)
		return
	}
	h.auth.respondWithPair(c, pair)
}

func (h *OAuthHandler) respondFederatedError(c *gin.Context, err error, rejectStatus int) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	switch {
	case errors.Is(err, apperrors.ErrInvalidProviderToken):
		logger.Warn("Identity token rejected", slog.String("error", err.Error()))
		c.JSON(rejectStatus, dto.ErrorResponse{Error: "Invalid identity token"})
	case errors.Is(err, apperrors.ErrProviderUnavailable):
		logger.Error("Identity provider unavailable", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Unable to verify identity token"})
	default:
		respondError(c, err)
	}
}
