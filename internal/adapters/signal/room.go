package signal

import (
	"errors"

	"github.com/dkeye/Drop/internal/app"
	"github.com/dkeye/Drop/internal/core"
	"github.com/dkeye/Drop/internal/domain"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(
	sid core.SessionID,
	conn core.SignalConnection,
	env envelope,
) {
	if ctl.Joins != nil && !ctl.Joins.Allow(string(sid)) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("join rate limited")
		ctl.sendError(conn, CodeRateLimited, "Too many join attempts")
		ctl.sendAck(conn, env.Ack, false, CodeRateLimited, nil)
		return
	}

	res, err := ctl.Orch.OnJoinRequest(sid, string(env.Room))
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidRoomCode):
		ctl.sendError(conn, CodeInvalidRoom, "Invalid room number")
		ctl.sendAck(conn, env.Ack, false, CodeInvalidRoom, nil)
		return
	case errors.Is(err, app.ErrRoomNotFound):
		ctl.sendJSON(conn, roomNotFoundFrame{Type: "room-not-found", Room: res.Code})
		ctl.sendAck(conn, env.Ack, false, CodeRoomNotFound, nil)
		return
	case errors.Is(err, app.ErrNotInRoom):
		ctl.sendError(conn, CodeNotInRoom, "Not in a room")
		ctl.sendAck(conn, env.Ack, false, CodeNotInRoom, nil)
		return
	default:
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join failed")
		ctl.sendError(conn, CodeJoinError, "Failed to join room")
		ctl.sendAck(conn, env.Ack, false, CodeJoinError, nil)
		return
	}

	ack := joinAck{Room: res.Code, Count: res.Members, AlreadyInRoom: res.AlreadyInRoom}
	if res.AlreadyInRoom {
		ctl.sendAck(conn, env.Ack, true, "", ack)
		return
	}

	ctl.broadcastJSON(res.Key, subscribedFrame{Type: "subscribed", Room: res.Code, Count: res.Members})
	ctl.broadcastDevices(res.Key)
	if res.Left != "" && res.LeftRemaining > 0 {
		ctl.broadcastJSON(res.Left, userLeftFrame{Type: "user-left", Count: res.LeftRemaining})
		ctl.broadcastDevices(res.Left)
	}
	ctl.sendAck(conn, env.Ack, true, "", ack)
}
