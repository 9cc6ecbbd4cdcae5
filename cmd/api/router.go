package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"badgeforge-backend/internal/shared/middleware"
	"badgeforge-backend/internal/shared/response"
	"badgeforge-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(v1, c)
		setupIssuerRoutes(v1, c)

		v1.GET("/badgeclasses",
			middleware.AuthMiddleware(c.JWTManager),
			middleware.RequireVerifiedEmail(),
			c.BadgeClassHandler.ListVisible)
	}

	return router
}

func setupAuthRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.UserHandler.Register)
		auth.POST("/login", c.UserHandler.Login)
		auth.POST("/refresh", c.UserHandler.Refresh)
		auth.GET("/verify-email", c.UserHandler.VerifyEmail)
		auth.GET("/me", middleware.AuthMiddleware(c.JWTManager), c.UserHandler.Me)
	}
}

// All issuer-scoped routes require an authenticated caller with a
// verified email address. Per-issuer role checks happen in the
// services.
func setupIssuerRoutes(v1 *gin.RouterGroup, c *container.Container) {
	issuers := v1.Group("/issuers")
	issuers.Use(middleware.AuthMiddleware(c.JWTManager), middleware.RequireVerifiedEmail())
	{
		issuers.POST("", c.IssuerHandler.Create)
		issuers.GET("", c.IssuerHandler.List)
		issuers.GET("/:issuerSlug", c.IssuerHandler.Get)

		issuers.GET("/:issuerSlug/staff", c.IssuerHandler.ListStaff)
		issuers.POST("/:issuerSlug/staff", c.IssuerHandler.AddStaff)
		issuers.DELETE("/:issuerSlug/staff/:userID", c.IssuerHandler.RemoveStaff)

		issuers.GET("/:issuerSlug/assertions", c.AssertionHandler.ListForIssuer)

		issuers.POST("/:issuerSlug/badgeclasses", c.BadgeClassHandler.Create)
		issuers.GET("/:issuerSlug/badgeclasses", c.BadgeClassHandler.List)
		issuers.GET("/:issuerSlug/badgeclasses/:badgeSlug", c.BadgeClassHandler.Get)
		issuers.PUT("/:issuerSlug/badgeclasses/:badgeSlug", c.BadgeClassHandler.Update)
		issuers.DELETE("/:issuerSlug/badgeclasses/:badgeSlug", c.BadgeClassHandler.Delete)

		issuers.POST("/:issuerSlug/badgeclasses/:badgeSlug/assertions", c.AssertionHandler.Issue)
		issuers.GET("/:issuerSlug/badgeclasses/:badgeSlug/assertions", c.AssertionHandler.ListForBadgeClass)
		issuers.POST("/:issuerSlug/badgeclasses/:badgeSlug/assertions/batch", c.AssertionHandler.IssueBatch)
		issuers.POST("/:issuerSlug/badgeclasses/:badgeSlug/assertions/import", c.AssertionHandler.Import)
		issuers.GET("/:issuerSlug/badgeclasses/:badgeSlug/assertions/:assertionSlug", c.AssertionHandler.Get)
		issuers.DELETE("/:issuerSlug/badgeclasses/:badgeSlug/assertions/:assertionSlug", c.AssertionHandler.Revoke)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		status := "healthy"
		checks := map[string]string{"database": "up", "cache": "up"}

		if err := c.DB.HealthCheck(checkCtx); err != nil {
			status = "degraded"
			checks["database"] = "down"
		}
		if err := c.Cache.Ping(checkCtx); err != nil {
			status = "degraded"
			checks["cache"] = "down"
		}

		code := http.StatusOK
		if status != "healthy" {
			code = http.StatusServiceUnavailable
		}

		response.Success(ctx, code, status, gin.H{
			"version": c.Config.App.Version,
			"checks":  checks,
		})
	}
}
