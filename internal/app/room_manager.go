package app

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/Drop/internal/core"
	"github.com/dkeye/Drop/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

type RoomManagerOptions struct {
	// GracePeriod delays deletion of an empty room; 0 deletes immediately.
	GracePeriod time.Duration
	// LazyCreate lets Join materialise a room for an unknown key.
	LazyCreate bool
	// DeleteTimeout bounds one storage cleanup call; 0 means no bound.
	DeleteTimeout time.Duration
}

type roomEntry struct {
	room    *domain.Room
	members int
	devices map[core.SessionID]domain.Device

	// pending is set iff the room is empty and inside its grace period.
	pending *deletionTimer
	// deleting is set once the storage cleanup has been committed to.
	deleting bool
}

func newRoomEntry(code domain.RoomCode) *roomEntry {
	return &roomEntry{
		room:    domain.NewRoom(code),
		devices: make(map[core.SessionID]domain.Device),
	}
}

// RoomManager is the source of truth for room existence and membership.
// A single mutex guards the map and every entry; storage I/O runs outside it.
type RoomManager struct {
	mu    sync.Mutex
	rooms map[domain.RoomKey]*roomEntry

	alloc   *Allocator
	storage core.StorageDeleter
	opts    RoomManagerOptions

	succeeded atomic.Int64
	failed    atomic.Int64
	objects   atomic.Int64
}

func NewRoomManager(alloc *Allocator, storage core.StorageDeleter, opts RoomManagerOptions) *RoomManager {
	if alloc == nil {
		alloc = NewAllocator(domain.DefaultCodeRange, DefaultMaxAttempts)
	}
	return &RoomManager{
		rooms:   make(map[domain.RoomKey]*roomEntry),
		alloc:   alloc,
		storage: storage,
		opts:    opts,
	}
}

func (m *RoomManager) GracePeriod() time.Duration { return m.opts.GracePeriod }

func (m *RoomManager) LazyCreate() bool { return m.opts.LazyCreate }

// CreateAndJoin allocates a fresh code and registers a room with one member.
func (m *RoomManager) CreateAndJoin() (domain.RoomCode, domain.RoomKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	code, err := m.alloc.Allocate(func(c domain.RoomCode) bool {
		_, ok := m.rooms[c.Key()]
		return ok
	})
	if err != nil {
		log.Error().Err(err).Str("module", "app.rooms").Msg("room code allocation failed")
		return 0, "", err
	}

	e := newRoomEntry(code)
	e.members = 1
	m.rooms[e.room.Key] = e
	log.Info().Str("module", "app.rooms").Int("room", int(code)).Msg("room created")
	return code, e.room.Key, nil
}

// Join adds one member, cancelling a pending deletion first.
func (m *RoomManager) Join(key domain.RoomKey) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.rooms[key]
	if ok && e.deleting {
		return 0, ErrRoomNotFound
	}
	if !ok {
		code, valid := key.Code()
		if !m.opts.LazyCreate || !valid {
			return 0, ErrRoomNotFound
		}
		e = newRoomEntry(code)
		m.rooms[key] = e
		log.Info().Str("module", "app.rooms").Int("room", int(code)).Msg("room created on join")
	}

	if e.pending != nil {
		e.pending.Cancel()
		e.pending = nil
		log.Info().Str("module", "app.rooms").Int("room", int(e.room.Code)).Msg("pending deletion cancelled by join")
	}
	e.members++
	return e.members, nil
}

// RoomExists answers "can a client join this code right now".
// Without a grace period an empty room is invisible; with one, a draining
// room still exists so a returning client can rejoin it.
func (m *RoomManager) RoomExists(code domain.RoomCode) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.rooms[code.Key()]
	if !ok || e.deleting {
		return false
	}
	if m.opts.GracePeriod > 0 {
		return true
	}
	return e.members > 0
}

// Leave removes one member and returns how many remain. Reaching zero starts
// the deletion path: synchronous without a grace period, scheduled otherwise.
func (m *RoomManager) Leave(key domain.RoomKey) int {
	m.mu.Lock()
	e, ok := m.rooms[key]
	if !ok || e.members == 0 {
		m.mu.Unlock()
		return 0
	}

	e.members--
	if e.members > 0 {
		n := e.members
		m.mu.Unlock()
		return n
	}

	if m.opts.GracePeriod > 0 {
		e.pending = newDeletionTimer(m.opts.GracePeriod, func(t *deletionTimer) {
			m.onDeletionTimer(e, t)
		})
		m.mu.Unlock()
		log.Info().
			Str("module", "app.rooms").
			Int("room", int(e.room.Code)).
			Dur("grace", m.opts.GracePeriod).
			Msg("room empty, deletion scheduled")
		return 0
	}

	e.deleting = true
	m.mu.Unlock()
	m.purge(e)
	return 0
}

func (m *RoomManager) onDeletionTimer(e *roomEntry, t *deletionTimer) {
	m.mu.Lock()
	if e.pending != t || t.Canceled() {
		m.mu.Unlock()
		return
	}
	e.pending = nil
	// Join clears pending under this lock, so this only holds if that ever changes.
	if m.rooms[e.room.Key] != e || e.members > 0 {
		m.mu.Unlock()
		log.Warn().Str("module", "app.rooms").Int("room", int(e.room.Code)).Msg("deletion skipped, room is active")
		return
	}
	e.deleting = true
	m.mu.Unlock()
	m.purge(e)
}

// purge runs the storage cleanup and then drops the entry whatever the outcome.
func (m *RoomManager) purge(e *roomEntry) {
	code := e.room.Code
	logger := log.With().Str("module", "app.rooms").Int("room", int(code)).Logger()

	var (
		deleted int
		err     error
	)
	if m.storage != nil {
		ctx := context.Background()
		if m.opts.DeleteTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.opts.DeleteTimeout)
			defer cancel()
		}
		var pc panics.Catcher
		pc.Try(func() { deleted, err = m.storage.DeleteAll(ctx, code.String()) })
		if r := pc.Recovered(); r != nil {
			err = r.AsError()
		}
	}

	if err != nil {
		m.failed.Add(1)
		logger.Error().Err(fmt.Errorf("%w: %w", ErrStorageDeletionFailed, err)).Msg("storage cleanup failed, removing room anyway")
	} else {
		m.succeeded.Add(1)
		m.objects.Add(int64(deleted))
		logger.Info().Int("deleted", deleted).Msg("storage cleanup done")
	}

	m.mu.Lock()
	if m.rooms[e.room.Key] == e {
		delete(m.rooms, e.room.Key)
	}
	m.mu.Unlock()
	logger.Info().Msg("room deleted")
}

// ShutdownCancelAll stops every pending deletion without running it.
func (m *RoomManager) ShutdownCancelAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, e := range m.rooms {
		if e.pending == nil {
			continue
		}
		if e.pending.Cancel() {
			n++
		}
		e.pending = nil
	}
	log.Info().Str("module", "app.rooms").Int("cancelled", n).Msg("pending deletions cancelled")
	return n
}

func (m *RoomManager) MemberCount(key domain.RoomKey) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.rooms[key]; ok {
		return e.members
	}
	return 0
}

func (m *RoomManager) TotalRooms() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms)
}

func (m *RoomManager) TotalMembers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, e := range m.rooms {
		total += e.members
	}
	return total
}

func (m *RoomManager) Stats() core.RoomStats {
	m.mu.Lock()
	st := core.RoomStats{TotalRooms: len(m.rooms)}
	for _, e := range m.rooms {
		st.TotalUsers += e.members
		if e.pending != nil {
			st.DrainingRooms++
		}
	}
	m.mu.Unlock()

	st.DeletionsSucceeded = m.succeeded.Load()
	st.DeletionsFailed = m.failed.Load()
	st.ObjectsDeleted = m.objects.Load()
	return st
}

func (m *RoomManager) AttachDevice(key domain.RoomKey, sid core.SessionID, d domain.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.rooms[key]; ok && !e.deleting {
		e.devices[sid] = d
	}
}

func (m *RoomManager) DetachDevice(key domain.RoomKey, sid core.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.rooms[key]; ok {
		delete(e.devices, sid)
	}
}

// Devices lists the room's connected devices, oldest first.
func (m *RoomManager) Devices(key domain.RoomKey) []domain.Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rooms[key]
	if !ok {
		return nil
	}
	out := make([]domain.Device, 0, len(e.devices))
	for _, d := range e.devices {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b domain.Device) int { return a.JoinedAt.Compare(b.JoinedAt) })
	return out
}

var _ core.RoomDirectory = (*RoomManager)(nil)
