package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with CORS and all API routes
func NewRouter(handler *Handler, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(corsOrigins)))

	SetupRoutes(router, handler)
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/evaluations", handler.CreateEvaluation)
		api.POST("/evaluations/batch", handler.CreateBatch)
		api.GET("/evaluations", handler.ListEvaluations)
		api.GET("/evaluations/:id", handler.GetEvaluation)
		api.GET("/evaluations/:id/geojson", handler.GetEvaluationGeoJSON)
		api.DELETE("/evaluations/:id", handler.DeleteEvaluation)
		api.GET("/assumptions/defaults", handler.GetDefaultAssumptions)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
