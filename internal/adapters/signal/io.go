package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dkeye/Drop/internal/core"
	"github.com/dkeye/Drop/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	var ping <-chan time.Time
	if ctl.PingPeriod > 0 {
		t := time.NewTicker(ctl.PingPeriod)
		defer t.Stop()
		ping = t.C
	}
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ping:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Info().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, sid core.SessionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		c.Close()
		ctl.Orch.Registry.Cancel(sid)
		ctl.disconnect(sid)
	}()

	if ctl.PingPeriod > 0 {
		wait := ctl.PingPeriod * 2
		_ = c.conn.SetReadDeadline(time.Now().Add(wait))
		c.conn.SetPongHandler(func(string) error {
			return c.conn.SetReadDeadline(time.Now().Add(wait))
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleFrame(sid, c, data)
		}
	}
}

// handleFrame contains a panicking handler to the one frame that caused it.
func (ctl *SignalWSController) handleFrame(sid core.SessionID, c core.SignalConnection, data []byte) {
	var pc panics.Catcher
	pc.Try(func() { ctl.handleSignal(sid, c, data) })
	if r := pc.Recovered(); r != nil {
		log.Error().Err(r.AsError()).Str("module", "signal").Str("sid", string(sid)).Msg("frame handler panicked")
		ctl.sendError(c, CodeBadPayload, "internal error")
	}
}

func (ctl *SignalWSController) handleSignal(sid core.SessionID, c core.SignalConnection, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		ctl.sendError(c, CodeBadPayload, "malformed frame")
		return
	}

	switch env.Type {
	case "join":
		ctl.handleJoin(sid, c, env)
	case "publish":
		ctl.handlePublish(sid, c, env)
	case "ping":
		ctl.handlePing(c)
	case "whoami":
		ctl.handleWhoAmI(sid, c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
		ctl.sendError(c, CodeUnknownSignal, "unknown frame type")
		ctl.sendAck(c, env.Ack, false, CodeUnknownSignal, nil)
	}
}

// disconnect releases membership once and tells the remaining members.
func (ctl *SignalWSController) disconnect(sid core.SessionID) {
	key, remaining, ok := ctl.Orch.OnDisconnect(sid)
	if !ok || remaining == 0 {
		return
	}
	ctl.broadcastJSON(key, userLeftFrame{Type: "user-left", Count: remaining})
	ctl.broadcastDevices(key)
}

func (ctl *SignalWSController) sendJSON(c core.SignalConnection, v any) {
	b, err := marshalFrame(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *SignalWSController) sendError(c core.SignalConnection, code, msg string) {
	ctl.sendJSON(c, newErrorFrame(code, msg))
}

func (ctl *SignalWSController) sendAck(c core.SignalConnection, id string, ok bool, code string, data any) {
	if id == "" {
		return
	}
	ctl.sendJSON(c, ackFrame{Type: "ack", Ack: id, OK: ok, Error: code, Data: data})
}

func (ctl *SignalWSController) broadcastJSON(key domain.RoomKey, v any) core.PublishResult {
	b, err := marshalFrame(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("broadcast marshal")
		return core.PublishResult{}
	}
	return ctl.Orch.Broadcast(key, b)
}

func (ctl *SignalWSController) broadcastDevices(key domain.RoomKey) {
	devices := ctl.Orch.DevicesOf(key)
	if devices == nil {
		devices = []domain.Device{}
	}
	ctl.broadcastJSON(key, devicesFrame{Type: "devices-updated", Devices: devices})
}
