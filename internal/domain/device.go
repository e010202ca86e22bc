// Package domain contains entities without transport or lifecycle logic.
package domain

import (
	"strings"
	"time"

	"github.com/mssola/useragent"
)

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceBot     = "bot"

	unknownName = "Unknown"
)

// Device describes one connection's client, as shown to other room members.
type Device struct {
	SessionID  string    `json:"socketId"`
	DeviceType string    `json:"deviceType"`
	OS         string    `json:"os"`
	Browser    string    `json:"browser"`
	JoinedAt   time.Time `json:"joinedAt"`
}

// ParseDevice builds a Device from a User-Agent header.
func ParseDevice(userAgent, sid string) Device {
	d := Device{
		SessionID:  sid,
		DeviceType: DeviceDesktop,
		OS:         unknownName,
		Browser:    unknownName,
		JoinedAt:   time.Now(),
	}
	if strings.TrimSpace(userAgent) == "" {
		return d
	}

	ua := useragent.New(userAgent)
	switch {
	case ua.Bot():
		d.DeviceType = DeviceBot
	case ua.Mobile():
		d.DeviceType = DeviceMobile
	}

	if os := ua.OSInfo(); os.Name != "" {
		d.OS = strings.TrimSpace(os.Name + " " + os.Version)
	}
	if name, version := ua.Browser(); name != "" {
		d.Browser = strings.TrimSpace(name + " " + version)
	}
	return d
}
