package meetinghub

import (
	"encoding/json"
	"sync"
	"time"

	"confusense/backend/internal/config"
	"confusense/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketClient implements Client over a gorilla websocket connection.
type WebSocketClient struct {
	connID    string
	conn      *websocket.Conn
	lifecycle *Lifecycle
	cfg       config.Relay

	send chan models.OutboundMessage

	mu     sync.RWMutex
	closed bool
}

func NewWebSocketClient(connID string, conn *websocket.Conn, lifecycle *Lifecycle, cfg config.Relay) *WebSocketClient {
	return &WebSocketClient{
		connID:    connID,
		conn:      conn,
		lifecycle: lifecycle,
		cfg:       cfg,
		send:      make(chan models.OutboundMessage, cfg.SendBuffer),
	}
}

func (c *WebSocketClient) GetConnID() string { return c.connID }

func (c *WebSocketClient) Send(msg models.OutboundMessage) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClientClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return ErrBackpressure
	}
}

// Run starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the send channel, which stops writePump and closes the socket.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump dispatches every inbound frame. A read error is the transport's
// disconnect notification.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.lifecycle.Disconnect(c.connID)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	router := c.lifecycle.Router()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "meetinghub.ws").Str("sid", c.connID).Msg("read error")
			}
			return
		}
		// Errors are already reported to the client or logged by the router.
		_ = router.Dispatch(c.connID, message)
	}
}

// writePump writes one JSON frame per queued message and keeps the connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				log.Error().Err(err).Str("module", "meetinghub.ws").Str("sid", c.connID).Str("event", message.Event).Msg("encode frame")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("module", "meetinghub.ws").Str("sid", c.connID).Msg("write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
