package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/SscSPs/food_rescue_app/cmd/docs"
	portssvc "github.com/SscSPs/food_rescue_app/internal/core/ports/services"
	"github.com/SscSPs/food_rescue_app/internal/middleware"
	"github.com/SscSPs/food_rescue_app/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// tracker may be nil.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	tracker portssvc.EventTracker,
) error {
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	ipLimiter, err := middleware.NewIPRateLimiter(cfg.AuthRateLimit)
	if err != nil {
		return fmt.Errorf("failed to build auth rate limiter: %w", err)
	}
	limit := middleware.RateLimit(ipLimiter)

	authHandler := NewAuthHandler(services.Session, cfg.Cookie)
	registerAuthRoutes(r, authHandler, limit)
	registerOAuthRoutes(r, NewOAuthHandler(authHandler, services.Google, services.Apple), limit)

	authed := r.Group("", middleware.AuthMiddleware(services.Authenticator), middleware.PosthogMiddleware(tracker))
	registerUserRoutes(authed)

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
