package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware creates a Gin middleware handler that resolves the bearer access token.
// Every failure is a 401; the cause is only logged.
func AuthMiddleware(authn portssvc.AuthenticatorSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := GetLoggerFromCtx(ctx)

		user, err := authn.Authenticate(ctx, c.GetHeader("Authorization"))
		if err != nil {
			msg := "Authentication failed"
			switch {
			case errors.Is(err, apperrors.ErrAuthMalformed):
				msg = "Authorization header format must be Bearer {token}"
				logger.Warn("Authorization header missing or malformed")
			case errors.Is(err, apperrors.ErrTokenExpired),
				errors.Is(err, apperrors.ErrTokenInvalid),
				errors.Is(err, apperrors.ErrUserNotFound):
				logger.Warn("Access token rejected", slog.String("error", err.Error()))
			default:
				logger.Error("Failed to authenticate request", slog.String("error", err.Error()))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		enrichedLogger := logger.With(slog.String("user_id", user.UserID))
		ctxWithUser := context.WithValue(context.WithValue(ctx, userIDKey, user.UserID), userKey, user)
		c.Request = c.Request.WithContext(WithLogger(ctxWithUser, enrichedLogger))
		c.Set(string(userIDKey), user.UserID)
		c.Set(string(userKey), user)

		c.Next()
	}
}
