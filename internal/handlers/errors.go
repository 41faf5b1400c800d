package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/food_rescue_app/internal/apperrors"
	"github.com/SscSPs/food_rescue_app/internal/dto"
	"github.com/SscSPs/food_rescue_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondBindError answers a request whose body failed to bind or validate.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Invalid request body", slog.String("error", err.Error()))
	respondError(c, dto.NewValidationError(err))
}

// respondError maps a service error to a status code and a client-safe body.
// Unrecognised errors become a generic 500 and are logged with their cause.
func respondError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: apperrors.ErrValidation.Error(), Fields: verr.Fields})
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, dto.ErrorResponse{Error: appErr.Message})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidLink):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid link"})
	case errors.Is(err, apperrors.ErrUserNotFound):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "User not found"})
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid email or password"})
	case errors.Is(err, apperrors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthenticated"})
	default:
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Request failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
	}
}
