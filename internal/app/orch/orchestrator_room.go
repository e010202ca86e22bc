package orch

import (
	"context"

	"github.com/dkeye/Drop/internal/app"
	"github.com/dkeye/Drop/internal/core"
	"github.com/dkeye/Drop/internal/domain"
	"github.com/rs/zerolog/log"
)

// JoinResult is the outcome of a successful join request.
type JoinResult struct {
	Code          domain.RoomCode
	Key           domain.RoomKey
	Members       int
	AlreadyInRoom bool

	// Left is the room the session moved out of, with its remaining count.
	Left          domain.RoomKey
	LeftRemaining int
}

// OnConnect gives a new session its own fresh room.
func (o *Orchestrator) OnConnect(
	sid core.SessionID,
	sess core.MemberSession,
	cancel context.CancelFunc,
) (domain.RoomCode, domain.RoomKey, error) {
	code, key, err := o.Rooms.CreateAndJoin()
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("connect: no room")
		return 0, "", err
	}
	o.Registry.BindSession(sid, code, sess, cancel)
	o.Rooms.AttachDevice(key, sid, sess.Device())
	log.Info().Str("module", "orch").Str("sid", string(sid)).Int("room", int(code)).Msg("registered")
	return code, key, nil
}

// OnJoinRequest moves a session into the room behind a client-supplied code.
func (o *Orchestrator) OnJoinRequest(sid core.SessionID, rawCode string) (JoinResult, error) {
	fromKey, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return JoinResult{}, app.ErrNotInRoom
	}
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return JoinResult{}, app.ErrNotInRoom
	}

	code, err := o.Codes.Parse(rawCode)
	if err != nil {
		return JoinResult{}, err
	}
	key := code.Key()

	if key == fromKey {
		return JoinResult{
			Code:          code,
			Key:           key,
			Members:       o.Rooms.MemberCount(key),
			AlreadyInRoom: true,
		}, nil
	}

	// With lazy creation an unknown code is materialised by Join itself.
	if !o.Rooms.LazyCreate() && !o.Rooms.RoomExists(code) {
		return JoinResult{Code: code, Key: key}, app.ErrRoomNotFound
	}

	// Join the target before leaving so a failed join keeps the current binding.
	members, err := o.Rooms.Join(key)
	if err != nil {
		return JoinResult{Code: code, Key: key}, err
	}
	o.Rooms.AttachDevice(key, sid, sess.Device())
	o.Registry.UpdateRoom(sid, code)

	o.Rooms.DetachDevice(fromKey, sid)
	remaining := o.Rooms.Leave(fromKey)

	log.Info().
		Str("module", "orch").
		Str("sid", string(sid)).
		Str("from", string(fromKey)).
		Int("room", int(code)).
		Int("members", members).
		Msg("moved to room")

	return JoinResult{
		Code:          code,
		Key:           key,
		Members:       members,
		Left:          fromKey,
		LeftRemaining: remaining,
	}, nil
}

// OnDisconnect releases the session's membership. ok is false when the
// session was already released.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) (key domain.RoomKey, remaining int, ok bool) {
	key, ok = o.Registry.Unbind(sid)
	if !ok {
		return "", 0, false
	}
	o.Rooms.DetachDevice(key, sid)
	remaining = o.Rooms.Leave(key)
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(key)).Int("remaining", remaining).Msg("left")
	return key, remaining, true
}
