package api

import (
	"net/http"

	trackerDelivery "jobify-backend/internal/tracker/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, trackerHandler *trackerDelivery.TrackerHandler) {
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.GET("/applications", trackerHandler.GetApplications)
		api.GET("/interviews", trackerHandler.GetInterviews)
		api.GET("/rejections", trackerHandler.GetRejections)
		api.GET("/offers", trackerHandler.GetOffers)

		api.POST("/sync/:email", trackerHandler.TriggerSync)
	}
}
