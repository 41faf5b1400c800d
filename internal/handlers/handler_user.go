package handlers

import (
	"net/http"

	"github.com/SscSPs/food_rescue_app/internal/dto"
	"github.com/SscSPs/food_rescue_app/internal/middleware"

	"github.com/gin-gonic/gin"
)

// registerUserRoutes registers the authenticated user routes.
func registerUserRoutes(rg gin.IRouter) {
	rg.GET("/user", getMe)
}

// getMe godoc
// @Summary Get the current user
// @Description Returns the user identified by the bearer access token
// @Tags users
// @Produce  json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Security BearerAuth
// @Router /user [get]
func getMe(c *gin.Context) {
	user, ok := middleware.GetUserFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Authenticated user not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}
