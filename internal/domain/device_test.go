package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDevice(t *testing.T) {
	t.Run("empty user agent", func(t *testing.T) {
		d := ParseDevice("", "sid-1")
		assert.Equal(t, "sid-1", d.SessionID)
		assert.Equal(t, DeviceDesktop, d.DeviceType)
		assert.Equal(t, "Unknown", d.OS)
		assert.Equal(t, "Unknown", d.Browser)
		assert.False(t, d.JoinedAt.IsZero())
	})

	t.Run("desktop chrome", func(t *testing.T) {
		ua := "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
		d := ParseDevice(ua, "sid-2")
		assert.Equal(t, DeviceDesktop, d.DeviceType)
		assert.Contains(t, d.Browser, "Chrome")
		assert.Contains(t, d.OS, "Windows")
	})

	t.Run("mobile", func(t *testing.T) {
		ua := "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
		d := ParseDevice(ua, "sid-3")
		assert.Equal(t, DeviceMobile, d.DeviceType)
	})

	t.Run("bot", func(t *testing.T) {
		ua := "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
		d := ParseDevice(ua, "sid-4")
		assert.Equal(t, DeviceBot, d.DeviceType)
	})
}
