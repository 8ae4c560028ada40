package delivery

import (
	"context"
	"net/http"
	"time"

	"jobify-backend/internal/tracker/dto"
	"jobify-backend/internal/tracker/usecase"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type TrackerHandler struct {
	trackerUsecase usecase.TrackerUsecase
}

func NewTrackerHandler(trackerUsecase usecase.TrackerUsecase) *TrackerHandler {
	return &TrackerHandler{
		trackerUsecase: trackerUsecase,
	}
}

func (h *TrackerHandler) GetApplications(c *gin.Context) {
	userEmail := c.Query("user_email")
	if userEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_email is required"})
		return
	}

	apps, err := h.trackerUsecase.GetApplications(userEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromApplications(apps))
}

func (h *TrackerHandler) GetInterviews(c *gin.Context) {
	userEmail := c.Query("user_email")
	if userEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_email is required"})
		return
	}

	rounds, err := h.trackerUsecase.GetInterviews(userEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromInterviews(rounds))
}

func (h *TrackerHandler) GetRejections(c *gin.Context) {
	userEmail := c.Query("user_email")
	if userEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_email is required"})
		return
	}

	rejections, err := h.trackerUsecase.GetRejections(userEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromRejections(rejections))
}

func (h *TrackerHandler) GetOffers(c *gin.Context) {
	userEmail := c.Query("user_email")
	if userEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_email is required"})
		return
	}

	offers, err := h.trackerUsecase.GetOffers(userEmail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromOffers(offers))
}

// TriggerSync kicks off a sync run in the background and returns immediately;
// a run can take minutes against a large inbox window.
func (h *TrackerHandler) TriggerSync(c *gin.Context) {
	userEmail := c.Param("email")
	if userEmail == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()
		if _, err := h.trackerUsecase.SyncUser(ctx, userEmail); err != nil {
			log.Error().Err(err).Str("user", userEmail).Msg("manual sync failed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "sync started", "user_email": userEmail})
}
