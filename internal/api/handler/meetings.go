package handler

import (
	"net/http"

	"confusense/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Root reports the service identity and how many meetings are live.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":         h.Config.Name,
		"version":      h.Config.Version,
		"websocket":    true,
		"active_rooms": h.registry().RoomCount(),
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"active_participants": h.registry().ParticipantCount(),
	})
}

// ListParticipants returns the live snapshot of one meeting.
func (h *Handler) ListParticipants(c *gin.Context) {
	meetingID := c.Param("meeting_id")
	members := h.registry().ListParticipants(meetingID)

	views := make([]models.ParticipantView, 0, len(members))
	for _, m := range members {
		views = append(views, m.View())
	}
	c.JSON(http.StatusOK, models.ParticipantsListData{MeetingID: meetingID, Participants: views})
}

// ListConfusionEvents returns the durable confusion history of one meeting.
func (h *Handler) ListConfusionEvents(c *gin.Context) {
	meetingID := c.Param("meeting_id")
	events, err := h.Storage.ListConfusionEvents(c.Request.Context(), meetingID)
	if err != nil {
		log.Error().Err(err).Str("module", "api").Str("meeting_id", meetingID).Msg("list confusion events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}
	if events == nil {
		events = []models.ConfusionEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"meeting_id": meetingID, "events": events})
}
