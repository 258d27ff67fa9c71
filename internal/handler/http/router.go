package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
	"github.com/Petrenko-Anton/HW-13-REST/internal/handler/http/middleware"
	"github.com/Petrenko-Anton/HW-13-REST/internal/service"
	"github.com/Petrenko-Anton/HW-13-REST/internal/utils/rate"
)

// SetupRouter wires handlers and middleware. Every route sits behind a
// rate-limit rule for its class; protected routes additionally pass the auth
// middleware, and verified-only routes the verified check.
func SetupRouter(
	authService *service.AuthService,
	limiter rate.Limiter,
	cfg *config.Config,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	authHandler := NewAuthHandler(authService, logger)
	userHandler := NewUserHandler(authService, logger)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	rl := cfg.Security.RateLimiting

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup",
				middleware.RateLimitMiddleware(limiter, rl.Register, "register", logger),
				authHandler.Signup)
			auth.POST("/login",
				middleware.RateLimitMiddleware(limiter, rl.General, "login", logger),
				authHandler.Login)
			auth.GET("/refresh_token",
				middleware.RateLimitMiddleware(limiter, rl.Refresh, "refresh", logger),
				authHandler.RefreshToken)
			auth.GET("/confirmed_email/:token",
				middleware.RateLimitMiddleware(limiter, rl.Verify, "verify", logger),
				authHandler.ConfirmEmail)
			auth.POST("/request_email",
				middleware.RateLimitMiddleware(limiter, rl.Verify, "verify", logger),
				authHandler.RequestEmail)

			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(authService, logger))
			protected.Use(middleware.RateLimitMiddleware(limiter, rl.General, "auth", logger))
			{
				protected.POST("/logout", authHandler.Logout)
				protected.PATCH("/password", authHandler.ChangePassword)
			}
		}

		users := api.Group("/users")
		users.Use(middleware.AuthMiddleware(authService, logger))
		users.Use(middleware.RateLimitMiddleware(limiter, rl.General, "users", logger))
		users.Use(middleware.RequireVerified(authService, logger))
		{
			users.GET("/me", userHandler.Me)
		}
	}

	return router
}
