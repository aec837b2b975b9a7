package adapters

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"huddle/internal/config"
	"huddle/internal/core"
	"huddle/internal/domain"
	"huddle/internal/event"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrClosed       = errors.New("connection closed")
)

var upgrader = websocket.Upgrader{
	// TODO: restrict origins once the UI is served from a fixed host.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn is the transport endpoint behind core.SignalConnection.
// Close stops accepting frames; the write pump drains what is already
// queued and only then closes the socket, so terminal notices reach
// the client before the connection drops.
type wsConn struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	send   chan core.Frame
	closed bool
}

func newWSConn(conn *websocket.Conn, buffer int) *wsConn {
	return &wsConn{conn: conn, send: make(chan core.Frame, buffer)}
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	select {
	case c.send <- f:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *wsConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// WSController upgrades HTTP requests and runs the connection pumps.
type WSController struct {
	cfg   *config.Config
	coord *core.Coordinator
}

func NewWSController(cfg *config.Config, coord *core.Coordinator) *WSController {
	return &WSController{cfg: cfg, coord: coord}
}

func (ctl *WSController) Handle(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Str("module", "adapters.ws").Msg("upgrade failed")
		return
	}

	// One connection, one session. A reconnect gets a new id.
	sid := domain.SessionID(uuid.NewString())
	conn := newWSConn(ws, ctl.cfg.SendBuffer)
	ctl.coord.Connect(sid, conn)
	log.Info().Str("module", "adapters.ws").Str("sid", string(sid)).Msg("session connected")

	go ctl.writePump(ctx, conn)
	go ctl.readPump(sid, conn)
}

func (ctl *WSController) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()
	defer c.conn.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(ctl.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *WSController) readPump(sid domain.SessionID, c *wsConn) {
	defer func() {
		ctl.coord.Disconnect(sid)
		c.Close()
		log.Info().Str("module", "adapters.ws").Str("sid", string(sid)).Msg("session disconnected")
	}()

	pongWait := ctl.cfg.PingPeriod * 10 / 9
	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		ev, err := event.Unmarshal(data)
		if err != nil {
			// Unknown or malformed events are ignored, the session stays up.
			log.Debug().Err(err).Str("module", "adapters.ws").Str("sid", string(sid)).Msg("dropping frame")
			continue
		}
		ctl.coord.Dispatch(sid, ev)
	}
}
