package middleware

import (
	"github.com/SscSPs/food_rescue_app/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// contextKey is the type of keys this package stores in contexts.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerCtxKey = contextKey("logger")
	// userIDKey is the key used to store the authenticated user's ID.
	userIDKey = contextKey("userID")
	// userKey holds the *domain.User resolved by AuthMiddleware.
	userKey = contextKey("user")
)

// GetUserIDFromContext retrieves the authenticated user ID set by AuthMiddleware.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userIDVal, exists := c.Get(string(userIDKey)); exists {
		userID, ok := userIDVal.(string)
		return userID, ok
	}
	// check in the request context as well
	userID, ok := c.Request.Context().Value(userIDKey).(string)
	return userID, ok
}

// GetUserFromContext returns the user AuthMiddleware resolved for this request.
func GetUserFromContext(c *gin.Context) (*domain.User, bool) {
	if val, exists := c.Get(string(userKey)); exists {
		user, ok := val.(*domain.User)
		return user, ok && user != nil
	}
	user, ok := c.Request.Context().Value(userKey).(*domain.User)
	return user, ok && user != nil
}
