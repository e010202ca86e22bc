package app

import (
	"github.com/dkeye/Drop/internal/core"
	"github.com/dkeye/Drop/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a member whose send buffer is full.
type Policy interface {
	OnBackPressure(room domain.RoomKey, member core.MemberSession) BackpressureAction
}

// SimplePolicy kicks slow members.
type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.RoomKey, core.MemberSession) BackpressureAction {
	return KickMember
}

// TolerantPolicy drops the frame for the slow member and keeps it connected.
type TolerantPolicy struct{}

func (TolerantPolicy) OnBackPressure(domain.RoomKey, core.MemberSession) BackpressureAction {
	return DropFrame
}

// PolicyByName maps the "backpressure" config value to a Policy.
func PolicyByName(name string) Policy {
	if name == "drop" {
		return TolerantPolicy{}
	}
	return SimplePolicy{}
}
