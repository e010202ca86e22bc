package signal

import (
	"encoding/json"
	"time"

	"github.com/dkeye/Drop/internal/domain"
)

// Error codes carried in error frames and failed acks.
const (
	CodeRoomCreation  = "ROOM_CREATION_ERROR"
	CodeInvalidRoom   = "INVALID_ROOM_NUMBER"
	CodeRoomNotFound  = "ROOM_NOT_FOUND"
	CodeNotInRoom     = "NOT_IN_ROOM"
	CodeInvalidMsg    = "INVALID_MESSAGE"
	CodeRateLimited   = "RATE_LIMITED"
	CodeBadPayload    = "BAD_PAYLOAD"
	CodeJoinError     = "JOIN_ERROR"
	CodePublishError  = "PUBLISH_ERROR"
	CodeUnknownSignal = "UNKNOWN_TYPE"
)

// envelope is every client frame. Room is kept raw so both 123456 and
// "123456" are accepted.
type envelope struct {
	Type    string          `json:"type"`
	Ack     string          `json:"ack,omitempty"`
	Room    json.RawMessage `json:"room,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type registeredFrame struct {
	Type string          `json:"type"`
	Room domain.RoomCode `json:"room"`
}

type subscribedFrame struct {
	Type  string          `json:"type"`
	Room  domain.RoomCode `json:"room"`
	Count int             `json:"count"`
}

type roomNotFoundFrame struct {
	Type string          `json:"type"`
	Room domain.RoomCode `json:"room"`
}

type messageFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type userLeftFrame struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type devicesFrame struct {
	Type    string          `json:"type"`
	Devices []domain.Device `json:"devices"`
}

type errorBody struct {
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

type errorFrame struct {
	Type  string    `json:"type"`
	Error errorBody `json:"error"`
}

func newErrorFrame(code, msg string) errorFrame {
	return errorFrame{
		Type:  "error",
		Error: errorBody{Message: msg, Code: code, Timestamp: time.Now().UTC()},
	}
}

type ackFrame struct {
	Type  string `json:"type"`
	Ack   string `json:"ack"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

type joinAck struct {
	Room          domain.RoomCode `json:"room"`
	Count         int             `json:"count"`
	AlreadyInRoom bool            `json:"alreadyInRoom"`
}

type publishAck struct {
	SentTo int `json:"sentTo"`
}

type whoamiFrame struct {
	Type   string          `json:"type"`
	Room   domain.RoomCode `json:"room,omitempty"`
	Device domain.Device   `json:"device"`
}

func marshalFrame(v any) ([]byte, error) {
	return json.Marshal(v)
}
