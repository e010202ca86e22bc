package signal

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/Drop/internal/app/orch"
	"github.com/dkeye/Drop/internal/config"
	"github.com/dkeye/Drop/internal/core"
	"github.com/dkeye/Drop/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

const (
	sendBuffer   = 32
	writeTimeout = 5 * time.Second
)

type SignalWSController struct {
	Orch       *orch.Orchestrator
	Joins      *RateLimiter
	ReadLimit  int64
	PingPeriod time.Duration

	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config, joins *RateLimiter) *SignalWSController {
	return &SignalWSController{
		Orch:       o,
		Joins:      joins,
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(cfg.AllowedOrigins),
		},
	}
}

// originChecker allows any origin when the list is empty.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn) *WsSignalConn {
	return &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, sendBuffer),
	}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
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

var _ core.SignalConnection = (*WsSignalConn)(nil)

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(uuid.NewString())
	logger := log.With().Str("module", "signal").Str("sid", string(sid)).Logger()
	logger.Info().Str("client", c.GetString("client_token")).Str("ip", c.ClientIP()).Msg("new WS connection")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error().Err(err).Msg("ws upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	conn := newWsSignalConn(ws)
	device := domain.ParseDevice(c.Request.UserAgent(), string(sid))
	sess := core.NewMemberSession(sid, device, conn)
	ctx, cancel := context.WithCancel(ctx)

	code, key, err := ctl.Orch.OnConnect(sid, sess, cancel)
	if err != nil {
		// Pumps are not running yet, so the error goes out synchronously.
		if b, merr := marshalFrame(newErrorFrame(CodeRoomCreation, "Failed to create room")); merr == nil {
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = ws.WriteMessage(websocket.TextMessage, b)
		}
		cancel()
		conn.Close()
		return
	}

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)

	ctl.sendJSON(conn, registeredFrame{Type: "registered", Room: code})
	ctl.broadcastDevices(key)
}
