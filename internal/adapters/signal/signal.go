package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/askarin/proxima/internal/app/orch"
	"github.com/askarin/proxima/internal/config"
	"github.com/askarin/proxima/internal/core"
	"github.com/askarin/proxima/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type SignalWSController struct {
	Orch *orch.Orchestrator
	Cfg  *config.Config
	chat *ChatRateLimiter
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Orch: o,
		Cfg:  cfg,
		chat: NewChatRateLimiter(cfg.ChatLimit, cfg.ChatInterval),
	}
}

// WsSignalConn is the outbound half of one websocket: a bounded send channel
// the write pump drains. TrySend never blocks; a full buffer is the caller's
// signal that this client is falling behind.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the pumps. The client token
// cookie carries the durable identity; the socket itself gets a fresh ConnID
// so the registry can tell a reconnect from a second tab.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	if token == "" {
		token = uuid.NewString()
	}
	pid := domain.ParticipantID(token)
	connID := domain.ConnID(uuid.NewString())

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("pid", string(pid)).Str("conn", string(connID)).Msg("new WS connection")

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}
	ctl.Orch.Connect(connID, pid, conn)

	go ctl.writePump(ctx, connID, conn)
	go ctl.readPump(ctx, connID, conn)
}
