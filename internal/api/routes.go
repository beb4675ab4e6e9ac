package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler, registry *prometheus.Registry) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadyCheck)

	if registry != nil {
		router.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		analyze := v1.Group("/analyze")
		{
			analyze.POST("", handler.Analyze)
			analyze.POST("/batch", handler.AnalyzeBatch)
		}

		v1.GET("/posts/:id/analysis", handler.GetAnalysis)
		v1.GET("/feed", handler.Feed)

		recs := v1.Group("/recommendations")
		{
			recs.GET("/users", handler.RecommendUsers)
			recs.GET("/topics", handler.RecommendTopics)
		}
	}
}
