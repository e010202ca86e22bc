package app

import "errors"

var (
	ErrAllocationExhausted   = errors.New("room code allocation exhausted")
	ErrRoomNotFound          = errors.New("room not found")
	ErrNotInRoom             = errors.New("not in a room")
	ErrStorageDeletionFailed = errors.New("storage deletion failed")
)
