package core

import "github.com/dkeye/Drop/internal/domain"

type SessionID string

// MemberSession binds a connection's device descriptor and its transport endpoint.
// This is what the orchestrator fans out to.
type MemberSession interface {
	ID() SessionID
	Device() domain.Device
	Signal() SignalConnection
}
