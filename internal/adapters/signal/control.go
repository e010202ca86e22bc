package signal

import "github.com/dkeye/Drop/internal/core"

func (ctl *SignalWSController) handlePing(
	conn core.SignalConnection,
) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *SignalWSController) handleWhoAmI(
	sid core.SessionID,
	conn core.SignalConnection,
) {
	resp := whoamiFrame{Type: "whoami"}
	if sess, ok := ctl.Orch.Registry.GetSession(sid); ok {
		resp.Device = sess.Device()
	}
	if _, code, ok := ctl.Orch.Registry.RoomOf(sid); ok {
		resp.Room = code
	}
	ctl.sendJSON(conn, resp)
}
