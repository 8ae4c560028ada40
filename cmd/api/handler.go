package api

import (
	trackerDelivery "jobify-backend/internal/tracker/delivery"
	trackerUsecase "jobify-backend/internal/tracker/usecase"
	"jobify-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	trackerHandler *trackerDelivery.TrackerHandler
	config         *config.Config
}

func NewHandler(trackerUc trackerUsecase.TrackerUsecase, cfg *config.Config) *Handler {
	return &Handler{
		trackerHandler: trackerDelivery.NewTrackerHandler(trackerUc),
		config:         cfg,
	}
}

func (h *Handler) Start(addr string) error {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.trackerHandler)

	return r.Run(addr)
}
