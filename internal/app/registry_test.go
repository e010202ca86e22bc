package app

import (
	"testing"

	"github.com/dkeye/Drop/internal/core"
	"github.com/dkeye/Drop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBindAndMove(t *testing.T) {
	r := NewRegistry()
	sess := core.NewMemberSession("s1", domain.Device{SessionID: "s1"}, nil)
	r.BindSession("s1", 123456, sess, nil)

	key, code, ok := r.RoomOf("s1")
	require.True(t, ok)
	assert.Equal(t, domain.RoomKey("room-123456"), key)
	assert.Equal(t, domain.RoomCode(123456), code)

	got, ok := r.GetSession("s1")
	require.True(t, ok)
	assert.Equal(t, core.SessionID("s1"), got.ID())

	assert.True(t, r.UpdateRoom("s1", 654321))
	key, _, _ = r.RoomOf("s1")
	assert.Equal(t, domain.RoomKey("room-654321"), key)
	assert.False(t, r.UpdateRoom("missing", 654321))

	assert.Len(t, r.MembersOfRoom("room-654321"), 1)
	assert.Empty(t, r.MembersOfRoom("room-123456"))
	assert.Equal(t, 1, r.Count())
}

func TestRegistryUnbindOnce(t *testing.T) {
	r := NewRegistry()
	r.BindSession("s1", 123456, core.NewMemberSession("s1", domain.Device{}, nil), nil)

	key, ok := r.Unbind("s1")
	assert.True(t, ok)
	assert.Equal(t, domain.RoomKey("room-123456"), key)

	_, ok = r.Unbind("s1")
	assert.False(t, ok)
	_, _, ok = r.RoomOf("s1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

func TestRegistryCancel(t *testing.T) {
	r := NewRegistry()
	canceled := false
	r.BindSession("s1", 123456, core.NewMemberSession("s1", domain.Device{}, nil), func() { canceled = true })

	assert.True(t, r.Cancel("s1"))
	assert.True(t, canceled)
	assert.False(t, r.Cancel("nobody"))
}
