package core

import "github.com/dkeye/Drop/internal/domain"

// memberSession implements MemberSession by pairing meta + transport.
type memberSession struct {
	sid    SessionID
	device domain.Device
	conn   SignalConnection
}

func NewMemberSession(sid SessionID, device domain.Device, conn SignalConnection) MemberSession {
	return &memberSession{sid: sid, device: device, conn: conn}
}

func (m *memberSession) ID() SessionID            { return m.sid }
func (m *memberSession) Device() domain.Device    { return m.device }
func (m *memberSession) Signal() SignalConnection { return m.conn }
