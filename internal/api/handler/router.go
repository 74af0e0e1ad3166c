package handler

import (
	"slices"
	"time"

	"confusense/backend/internal/logging"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter wires every HTTP route onto a new gin engine.
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinLogger())
	r.Use(cors.New(corsConfig(h.Config.CORSOrigins)))

	r.GET("/", h.Root)
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)

		api.POST("/sessions", h.CreateSession)
		api.GET("/sessions/by-meeting/:meeting_id", h.GetSessionByMeeting)
		api.POST("/sessions/:session_id/end", h.EndSession)

		api.GET("/meetings/:meeting_id/participants", h.ListParticipants)
		api.GET("/meetings/:meeting_id/events", h.ListConfusionEvents)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
