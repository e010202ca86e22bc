package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomCodeKeyRoundTrip(t *testing.T) {
	code := RoomCode(123456)
	assert.Equal(t, RoomKey("room-123456"), code.Key())

	back, ok := code.Key().Code()
	require.True(t, ok)
	assert.Equal(t, code, back)

	_, ok = RoomKey("lobby").Code()
	assert.False(t, ok)
	_, ok = RoomKey("room-abc").Code()
	assert.False(t, ok)
}

func TestCodeRangeParse(t *testing.T) {
	r := DefaultCodeRange

	tests := []struct {
		name    string
		raw     string
		want    RoomCode
		wantErr bool
	}{
		{"number", "123456", 123456, false},
		{"quoted", `"654321"`, 654321, false},
		{"padded", "  100000 ", 100000, false},
		{"upper bound", "999999", 999999, false},
		{"below range", "99999", 0, true},
		{"above range", "1000000", 0, true},
		{"negative", "-123456", 0, true},
		{"letters", "12ab56", 0, true},
		{"float", "123456.5", 0, true},
		{"empty", "", 0, true},
		{"null", "null", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Parse(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRoomCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCodeRangeSize(t *testing.T) {
	assert.Equal(t, 900000, DefaultCodeRange.Size())
	assert.Equal(t, 1, CodeRange{Min: 5, Max: 5}.Size())
	assert.True(t, DefaultCodeRange.Contains(100000))
	assert.False(t, DefaultCodeRange.Contains(1000000))
}

func TestNewRoom(t *testing.T) {
	r := NewRoom(424242)
	assert.Equal(t, RoomKey("room-424242"), r.Key)
	assert.False(t, r.CreatedAt.IsZero())
}
