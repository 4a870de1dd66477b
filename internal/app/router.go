package app

import (
	"interview_prep_backend/internal/config"
	"interview_prep_backend/internal/middleware"
	"interview_prep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	api.GET("/health", c.health.HealthCheck)

	// 1. 面试会话：可选认证，登录用户的会话归属到本人
	interviews := api.Group("/interviews")
	interviews.Use(middleware.TryAuthMiddleware(cfg.JWT))
	{
		interviews.POST("", c.interview.CreateSession)
		interviews.POST("/:id/answers", c.interview.SubmitAnswer)
		interviews.POST("/:id/complete", c.interview.CompleteSession)
		interviews.GET("/:id/analytics", c.analytics.GetSessionAnalytics)
	}

	// 2. 用户维度的分析：需要登录
	userAnalytics := api.Group("/analytics")
	userAnalytics.Use(middleware.AuthMiddleware(cfg.JWT))
	{
		userAnalytics.GET("/progress", c.analytics.GetProgress)
		userAnalytics.GET("/comparative", c.analytics.GetComparative)
	}
}
