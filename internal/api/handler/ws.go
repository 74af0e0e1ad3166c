package handler

import (
	"net/http"

	"confusense/backend/internal/meetinghub"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are policed by the CORS config, not here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and hands the connection to the relay.
// The connection id ("sid") is generated here and acknowledged in the
// connected frame.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("module", "api").Msg("websocket upgrade failed")
		return
	}

	client := meetinghub.NewWebSocketClient(uuid.New().String(), conn, h.Lifecycle, h.Config.Relay)
	h.Lifecycle.Connect(client)
	client.Run()
}
