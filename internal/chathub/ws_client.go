package chathub

import (
	"cinesocial/backend/internal/config"
	"cinesocial/backend/internal/logging"
	"cinesocial/backend/internal/models"
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WebSocketClient implements Client over a gorilla websocket connection.
type WebSocketClient struct {
	connID string
	userID uint
	conn   *websocket.Conn
	hub    *ManagerService
	send   chan models.Frame
	done   chan struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	log       zerolog.Logger
}

func NewWebSocketClient(hub *ManagerService, conn *websocket.Conn, userID uint) *WebSocketClient {
	ctx, cancel := context.WithCancel(context.Background())
	connID := uuid.NewString()
	return &WebSocketClient{
		connID: connID,
		userID: userID,
		conn:   conn,
		hub:    hub,
		send:   make(chan models.Frame, config.SendBufferSize),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
		log:    logging.With("ws").With().Uint("user_id", userID).Str("conn_id", connID).Logger(),
	}
}

func (c *WebSocketClient) GetConnID() string { return c.connID }
func (c *WebSocketClient) GetUserID() uint   { return c.userID }

func (c *WebSocketClient) Send(frame models.Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// Run registers the client with the hub and starts both pumps.
func (c *WebSocketClient) Run() {
	c.hub.Connect(c)
	go c.writePump()
	go c.readPump()
}

// Close stops the write pump, which closes the socket and ends the read pump.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cancel()
	})
}

// readPump handles invocations in arrival order. Any read error, including a
// missed pong deadline, ends the connection.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("read failed")
			}
			return
		}
		c.hub.HandleInvocation(c.ctx, c, message)
	}
}

// writePump serializes queued frames, one websocket message per frame, and
// keeps the connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			data, err := json.Marshal(frame)
			if err != nil {
				c.log.Error().Err(err).Str("event", frame.Event).Msg("failed to encode frame")
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
