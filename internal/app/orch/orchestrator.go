package orch

import (
	"github.com/dkeye/Drop/internal/app"
	"github.com/dkeye/Drop/internal/core"
	"github.com/dkeye/Drop/internal/domain"
	"github.com/rs/zerolog/log"
)

// Orchestrator binds transport sessions to rooms and drives the room
// registry from connect, join, publish and disconnect events.
type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomManager
	Policy   app.Policy
	Codes    domain.CodeRange
}

// Broadcast fans a frame out to every session bound to the room, sender included.
func (o *Orchestrator) Broadcast(key domain.RoomKey, frame core.Frame) core.PublishResult {
	res := core.PublishResult{}
	for _, snap := range o.Registry.MembersOfRoom(key) {
		if err := snap.Session.Signal().TrySend(frame); err != nil {
			res.Dropped = append(res.Dropped, snap.Session)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "orch").Str("room", string(key)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")

	if o.Policy == nil {
		return res
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(key, slow) {
		case app.KickMember:
			o.Kick(slow.ID())
		case app.DropFrame, app.NoAction:
		}
	}
	return res
}

// OnPublish relays an opaque frame to the caller's room.
func (o *Orchestrator) OnPublish(sid core.SessionID, frame core.Frame) (core.PublishResult, error) {
	key, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return core.PublishResult{}, app.ErrNotInRoom
	}
	return o.Broadcast(key, frame), nil
}

// Kick closes a session's transport. Membership is released by the
// transport's own disconnect path, so a kicked session is counted out once.
func (o *Orchestrator) Kick(sid core.SessionID) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Msg("kicking session")
	o.Registry.Cancel(sid)
	sess.Signal().Close()
}

func (o *Orchestrator) DevicesOf(key domain.RoomKey) []domain.Device {
	return o.Rooms.Devices(key)
}
