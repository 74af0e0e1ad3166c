package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type createSessionRequest struct {
	SessionID string `json:"session_id"`
	MeetingID string `json:"meeting_id"`
	HostName  string `json:"host_name"`
}

// CreateSession returns the meeting's active session, creating one if needed.
func (h *Handler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	req.MeetingID = strings.TrimSpace(req.MeetingID)
	if req.MeetingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "meeting_id required"})
		return
	}

	ctx := c.Request.Context()
	existing, err := h.Storage.FindActiveSession(ctx, req.MeetingID)
	if err != nil {
		log.Error().Err(err).Str("module", "api").Str("meeting_id", req.MeetingID).Msg("find active session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"session_id": existing.SessionID,
			"meeting_id": existing.MeetingID,
			"existing":   true,
		})
		return
	}

	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}
	session, err := h.Storage.CreateSession(ctx, req.SessionID, req.MeetingID, req.HostName)
	if err != nil {
		log.Error().Err(err).Str("module", "api").Str("meeting_id", req.MeetingID).Msg("create session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	log.Info().Str("module", "api").
		Str("session_id", session.SessionID).
		Str("meeting_id", session.MeetingID).
		Str("host", session.HostName).
		Msg("session created")
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": session.SessionID,
		"meeting_id": session.MeetingID,
		"existing":   false,
	})
}

func (h *Handler) GetSessionByMeeting(c *gin.Context) {
	meetingID := c.Param("meeting_id")
	session, err := h.Storage.FindActiveSession(c.Request.Context(), meetingID)
	if err != nil {
		log.Error().Err(err).Str("module", "api").Str("meeting_id", meetingID).Msg("find active session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No session found"})
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) EndSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	ended, err := h.Storage.EndSession(c.Request.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("module", "api").Str("session_id", sessionID).Msg("end session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end session"})
		return
	}
	if !ended {
		c.JSON(http.StatusNotFound, gin.H{"error": "No active session found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "session_id": sessionID})
}
