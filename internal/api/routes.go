package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/houses", handler.GetAllHouses)
		api.GET("/houses/:id", handler.GetHouse)
		api.GET("/survey", handler.GetSurvey)
		api.POST("/recommendations", handler.CreateRecommendations)
		api.GET("/recommendations/:user_id", handler.GetUserRecommendations)
		api.GET("/stats", handler.GetStats)
		api.POST("/catalog/refresh", handler.RefreshCatalog)
	}
}
