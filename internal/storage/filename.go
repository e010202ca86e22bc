package storage

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

const (
	defaultBaseName = "unnamed_file"
	maxBaseRunes    = 200
)

// SanitizeFileName makes a client-supplied file name safe for object keys and
// URLs. Whitespace runs become "_", anything but letters, digits, "-", "_"
// and "." is dropped, and an empty base becomes "unnamed_file".
func SanitizeFileName(name string) string {
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		base, ext = name[:i], name[i:]
	}
	base = cleanPart(base)
	ext = cleanPart(ext)
	if ext == "." {
		ext = ""
	}
	if base == "" {
		base = defaultBaseName
	}
	if r := []rune(base); len(r) > maxBaseRunes {
		base = string(r[:maxBaseRunes])
	}
	return base + ext
}

func cleanPart(s string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteRune('_')
				inSpace = true
			}
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
			inSpace = false
		}
	}
	return b.String()
}

// ObjectName builds a unique stored name: "<unixMillis>_<random6>_<sanitized>".
func ObjectName(original string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return fmt.Sprintf("%d_%s_%s", time.Now().UnixMilli(), random, SanitizeFileName(original))
}

// ValidObjectName rejects names that could escape a room's namespace.
func ValidObjectName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

func objectKey(roomCode, name string) string {
	return roomCode + "/" + name
}

func roomPrefix(roomCode string) string {
	return roomCode + "/"
}
