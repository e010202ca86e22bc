package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const roomKeyPrefix = "room-"

var ErrInvalidRoomCode = errors.New("invalid room code")

type (
	// RoomCode is the public number users exchange to find each other.
	RoomCode int
	// RoomKey is the internal key a room is registered under.
	RoomKey string
)

// Key derives the internal key from a public code (123456 -> "room-123456").
func (c RoomCode) Key() RoomKey {
	return RoomKey(roomKeyPrefix + strconv.Itoa(int(c)))
}

func (c RoomCode) String() string { return strconv.Itoa(int(c)) }

// Code extracts the public code back out of a key.
func (k RoomKey) Code() (RoomCode, bool) {
	raw, ok := strings.CutPrefix(string(k), roomKeyPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return RoomCode(n), true
}

// CodeRange is the inclusive range room codes are drawn from.
type CodeRange struct {
	Min RoomCode
	Max RoomCode
}

var DefaultCodeRange = CodeRange{Min: 100000, Max: 999999}

func (r CodeRange) Contains(c RoomCode) bool {
	return c >= r.Min && c <= r.Max
}

func (r CodeRange) Size() int {
	return int(r.Max-r.Min) + 1
}

// Parse validates a code sent by a client. It accepts a bare JSON number or a
// quoted string of digits; anything else, or a value outside the range, is
// ErrInvalidRoomCode.
func (r CodeRange) Parse(raw string) (RoomCode, error) {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"`)
	if s == "" {
		return 0, ErrInvalidRoomCode
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidRoomCode, raw)
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRoomCode, raw)
	}
	code := RoomCode(n)
	if !r.Contains(code) {
		return 0, fmt.Errorf("%w: %d out of range [%d, %d]", ErrInvalidRoomCode, n, r.Min, r.Max)
	}
	return code, nil
}

// Room is one active sharing session.
type Room struct {
	Code      RoomCode
	Key       RoomKey
	CreatedAt time.Time
}

func NewRoom(code RoomCode) *Room {
	return &Room{Code: code, Key: code.Key(), CreatedAt: time.Now()}
}
