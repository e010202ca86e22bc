package signal

import (
	"bytes"
	"errors"

	"github.com/dkeye/Drop/internal/app"
	"github.com/dkeye/Drop/internal/core"
	"github.com/rs/zerolog/log"
)

var nullPayload = []byte("null")

func (ctl *SignalWSController) handlePublish(
	sid core.SessionID,
	conn core.SignalConnection,
	env envelope,
) {
	if len(env.Payload) == 0 || bytes.Equal(bytes.TrimSpace(env.Payload), nullPayload) {
		ctl.sendError(conn, CodeInvalidMsg, "Message payload is required")
		ctl.sendAck(conn, env.Ack, false, CodeInvalidMsg, nil)
		return
	}

	frame, err := marshalFrame(messageFrame{Type: "message", Payload: env.Payload})
	if err != nil {
		ctl.sendError(conn, CodeInvalidMsg, "Message payload is not valid JSON")
		ctl.sendAck(conn, env.Ack, false, CodeInvalidMsg, nil)
		return
	}

	res, err := ctl.Orch.OnPublish(sid, frame)
	if err != nil {
		code := CodePublishError
		if errors.Is(err, app.ErrNotInRoom) {
			code = CodeNotInRoom
		}
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("publish rejected")
		ctl.sendError(conn, code, "Failed to publish message")
		ctl.sendAck(conn, env.Ack, false, code, nil)
		return
	}
	ctl.sendAck(conn, env.Ack, true, "", publishAck{SentTo: res.SendTo})
}
