package orch

import (
	"errors"
	"testing"
	"time"

	"github.com/dkeye/Drop/internal/app"
	"github.com/dkeye/Drop/internal/core"
	"github.com/dkeye/Drop/internal/core/mocks"
	"github.com/dkeye/Drop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingConn struct {
	frames []core.Frame
	closed bool
}

func (c *recordingConn) TrySend(f core.Frame) error {
	if c.closed {
		return errors.New("closed")
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *recordingConn) Close() { c.closed = true }

func newOrch(codes domain.CodeRange, opts app.RoomManagerOptions) *Orchestrator {
	return &Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(app.NewAllocator(codes, app.DefaultMaxAttempts), nil, opts),
		Policy:   app.SimplePolicy{},
		Codes:    codes,
	}
}

func connect(t *testing.T, o *Orchestrator, sid core.SessionID, conn core.SignalConnection) domain.RoomCode {
	t.Helper()
	sess := core.NewMemberSession(sid, domain.Device{SessionID: string(sid), JoinedAt: time.Now()}, conn)
	code, _, err := o.OnConnect(sid, sess, nil)
	require.NoError(t, err)
	return code
}

func TestJoinNeverAllocatedCode(t *testing.T) {
	codes := domain.CodeRange{Min: 20, Max: 99}
	alloc := app.NewAllocator(codes, app.DefaultMaxAttempts)
	alloc.IntN = func(int) int { return 0 }
	o := newOrch(codes, app.RoomManagerOptions{})
	o.Rooms = app.NewRoomManager(alloc, nil, app.RoomManagerOptions{})
	assert.Equal(t, domain.RoomCode(20), connect(t, o, "a", &recordingConn{}))

	_, err := o.OnJoinRequest("a", "42")
	assert.ErrorIs(t, err, app.ErrRoomNotFound)
	assert.NotErrorIs(t, err, domain.ErrInvalidRoomCode)
}

func TestJoinLazyCreatesUnknownRoom(t *testing.T) {
	o := newOrch(domain.DefaultCodeRange, app.RoomManagerOptions{LazyCreate: true})
	own := connect(t, o, "a", &recordingConn{})
	target := domain.RoomCode(555555)
	if own == target {
		target++
	}

	res, err := o.OnJoinRequest("a", target.String())
	require.NoError(t, err)
	assert.Equal(t, target, res.Code)
	assert.Equal(t, 1, res.Members)
	assert.True(t, o.Rooms.RoomExists(target))
	assert.False(t, o.Rooms.RoomExists(own), "old room is gone after its only member moved")
}

func TestJoinUnknownRoomWithoutLazyCreate(t *testing.T) {
	o := newOrch(domain.DefaultCodeRange, app.RoomManagerOptions{})
	own := connect(t, o, "a", &recordingConn{})
	target := domain.RoomCode(555555)
	if own == target {
		target++
	}

	_, err := o.OnJoinRequest("a", target.String())
	assert.ErrorIs(t, err, app.ErrRoomNotFound)
	assert.Equal(t, 1, o.Rooms.MemberCount(own.Key()))
}

func TestJoinOutOfRangeCode(t *testing.T) {
	codes := domain.CodeRange{Min: 20, Max: 99}
	o := newOrch(codes, app.RoomManagerOptions{})
	connect(t, o, "a", &recordingConn{})

	_, err := o.OnJoinRequest("a", "12")
	assert.ErrorIs(t, err, domain.ErrInvalidRoomCode)
	assert.NotErrorIs(t, err, app.ErrRoomNotFound)

	_, err = o.OnJoinRequest("a", "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidRoomCode)
}

func TestJoinMovesSession(t *testing.T) {
	o := newOrch(domain.DefaultCodeRange, app.RoomManagerOptions{})
	codeA := connect(t, o, "a", &recordingConn{})
	codeB := connect(t, o, "b", &recordingConn{})
	connect(t, o, "c", &recordingConn{})
	_, err := o.OnJoinRequest("c", codeB.String())
	require.NoError(t, err)

	res, err := o.OnJoinRequest("b", codeA.String())
	require.NoError(t, err)
	assert.Equal(t, codeA, res.Code)
	assert.Equal(t, 2, res.Members)
	assert.False(t, res.AlreadyInRoom)
	assert.Equal(t, codeB.Key(), res.Left)
	assert.Equal(t, 1, res.LeftRemaining)

	key, _, ok := o.Registry.RoomOf("b")
	require.True(t, ok)
	assert.Equal(t, codeA.Key(), key)
	assert.Len(t, o.DevicesOf(codeA.Key()), 2)
	assert.Len(t, o.DevicesOf(codeB.Key()), 1)
}

func TestJoinOwnRoomIsAlreadyInRoom(t *testing.T) {
	o := newOrch(domain.DefaultCodeRange, app.RoomManagerOptions{})
	code := connect(t, o, "a", &recordingConn{})

	res, err := o.OnJoinRequest("a", code.String())
	require.NoError(t, err)
	assert.True(t, res.AlreadyInRoom)
	assert.Equal(t, 1, res.Members)
	assert.Equal(t, 1, o.Rooms.MemberCount(code.Key()))
}

func TestJoinLastMemberLeavingDeletesOldRoom(t *testing.T) {
	o := newOrch(domain.DefaultCodeRange, app.RoomManagerOptions{})
	codeA := connect(t, o, "a", &recordingConn{})
	codeB := connect(t, o, "b", &recordingConn{})

	res, err := o.OnJoinRequest("a", codeB.String())
	require.NoError(t, err)
	assert.Equal(t, 0, res.LeftRemaining)
	assert.False(t, o.Rooms.RoomExists(codeA))
	assert.Equal(t, 1, o.Rooms.TotalRooms())
}

func TestUnboundSession(t *testing.T) {
	o := newOrch(domain.DefaultCodeRange, app.RoomManagerOptions{})

	_, err := o.OnJoinRequest("ghost", "123456")
	assert.ErrorIs(t, err, app.ErrNotInRoom)

	_, err = o.OnPublish("ghost", core.Frame(`{}`))
	assert.ErrorIs(t, err, app.ErrNotInRoom)

	_, _, ok := o.OnDisconnect("ghost")
	assert.False(t, ok)
}

func TestPublishReachesWholeRoomIncludingSender(t *testing.T) {
	o := newOrch(domain.DefaultCodeRange, app.RoomManagerOptions{})
	a, b, other := &recordingConn{}, &recordingConn{}, &recordingConn{}
	code := connect(t, o, "a", a)
	connect(t, o, "b", b)
	connect(t, o, "x", other)
	_, err := o.OnJoinRequest("b", code.String())
	require.NoError(t, err)

	res, err := o.OnPublish("a", core.Frame(`{"type":"message","payload":1}`))
	require.NoError(t, err)
	assert.Equal(t, 2, res.SendTo)
	assert.Len(t, a.frames, 1)
	assert.Len(t, b.frames, 1)
	assert.Empty(t, other.frames)
}

func TestBroadcastKicksSlowMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	slow := mocks.NewMockSignalConnection(ctrl)

	o := newOrch(domain.DefaultCodeRange, app.RoomManagerOptions{})
	fast := &recordingConn{}
	code := connect(t, o, "fast", fast)
	connect(t, o, "slow", slow)

	slow.EXPECT().TrySend(gomock.Any()).Return(errors.New("backpressure"))
	slow.EXPECT().Close().Times(1)

	_, err := o.OnJoinRequest("slow", code.String())
	require.NoError(t, err)

	res := o.Broadcast(code.Key(), core.Frame(`{}`))
	assert.Equal(t, 1, res.SendTo)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, core.SessionID("slow"), res.Dropped[0].ID())
}

func TestBroadcastTolerantPolicyKeepsMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	slow := mocks.NewMockSignalConnection(ctrl)

	o := newOrch(domain.DefaultCodeRange, app.RoomManagerOptions{})
	o.Policy = app.TolerantPolicy{}
	code := connect(t, o, "slow", slow)

	slow.EXPECT().TrySend(gomock.Any()).Return(errors.New("backpressure"))
	slow.EXPECT().Close().Times(0)

	res := o.Broadcast(code.Key(), core.Frame(`{}`))
	assert.Equal(t, 0, res.SendTo)
	assert.Len(t, res.Dropped, 1)
}

func TestDisconnectReleasesOnce(t *testing.T) {
	o := newOrch(domain.DefaultCodeRange, app.RoomManagerOptions{GracePeriod: time.Hour})
	defer o.Rooms.ShutdownCancelAll()

	code := connect(t, o, "a", &recordingConn{})
	connect(t, o, "b", &recordingConn{})
	_, err := o.OnJoinRequest("b", code.String())
	require.NoError(t, err)

	key, remaining, ok := o.OnDisconnect("a")
	require.True(t, ok)
	assert.Equal(t, code.Key(), key)
	assert.Equal(t, 1, remaining)

	_, _, ok = o.OnDisconnect("a")
	assert.False(t, ok)
	assert.Equal(t, 1, o.Rooms.MemberCount(code.Key()))
	assert.Len(t, o.DevicesOf(code.Key()), 1)
}

func TestConnectAllocationFailure(t *testing.T) {
	codes := domain.CodeRange{Min: 100000, Max: 100000}
	o := newOrch(codes, app.RoomManagerOptions{})
	connect(t, o, "a", &recordingConn{})

	sess := core.NewMemberSession("b", domain.Device{}, &recordingConn{})
	_, _, err := o.OnConnect("b", sess, nil)
	assert.ErrorIs(t, err, app.ErrAllocationExhausted)
	_, ok := o.Registry.GetSession("b")
	assert.False(t, ok)
}
