package core

import "github.com/dkeye/Drop/internal/domain"

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []MemberSession
}

// RoomStats is the monitoring snapshot of the room registry.
type RoomStats struct {
	TotalRooms         int   `json:"totalRooms"`
	TotalUsers         int   `json:"totalUsers"`
	DrainingRooms      int   `json:"drainingRooms"`
	DeletionsSucceeded int64 `json:"deletionsSucceeded"`
	DeletionsFailed    int64 `json:"deletionsFailed"`
	ObjectsDeleted     int64 `json:"objectsDeleted"`
}

// RoomDirectory is the read side of the room registry used by HTTP handlers.
type RoomDirectory interface {
	RoomExists(code domain.RoomCode) bool
	MemberCount(key domain.RoomKey) int
	TotalRooms() int
	TotalMembers() int
	Stats() RoomStats
}
