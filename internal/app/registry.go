package app

import (
	"context"
	"sync"

	"github.com/dkeye/Drop/internal/core"
	"github.com/dkeye/Drop/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	RoomKey domain.RoomKey
	Code    domain.RoomCode
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry maps live connections to the room they are currently bound to.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

func (r *Registry) BindSession(
	sid core.SessionID,
	code domain.RoomCode,
	sess core.MemberSession,
	cancel context.CancelFunc,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{
		RoomKey: code.Key(),
		Code:    code,
		Session: sess,
		Cancel:  cancel,
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Int("room", int(code)).Msg("bound session")
}

func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

// Unbind drops the session and reports the room it was bound to.
// Only the first call for a sid reports ok.
func (r *Registry) Unbind(sid core.SessionID) (domain.RoomKey, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return "", false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
	return e.RoomKey, e.RoomKey != ""
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomKey, domain.RoomCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.RoomKey == "" {
		return "", 0, false
	}
	return entry.RoomKey, entry.Code, true
}

func (r *Registry) UpdateRoom(sid core.SessionID, code domain.RoomCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return false
	}
	entry.RoomKey = code.Key()
	entry.Code = code
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Int("room", int(code)).Msg("updated room")
	return true
}

type regSnap struct {
	SID     core.SessionID
	Session core.MemberSession
}

func (r *Registry) MembersOfRoom(key domain.RoomKey) []regSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]regSnap, 0, len(r.sessions))
	for sid, e := range r.sessions {
		if e.RoomKey == key {
			out = append(out, regSnap{SID: sid, Session: e.Session})
		}
	}
	return out
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
