package storage

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.jpg", "photo.jpg"},
		{"README", "README"},
		{"my.file.name.jpg", "my.file.name.jpg"},
		{"my photo.jpg", "my_photo.jpg"},
		{"my   photo   file.jpg", "my_photo_file.jpg"},
		{"my\tphoto\nfile.jpg", "my_photo_file.jpg"},
		{"사진.jpg", "사진.jpg"},
		{"my사진file.jpg", "my사진file.jpg"},
		{"file@#$%^&*().jpg", "file.jpg"},
		{"my-file_name.jpg", "my-file_name.jpg"},
		{"file(1)[2].jpg", "file12.jpg"},
		{"what!is?this.jpg", "whatisthis.jpg"},
		{"", "unnamed_file"},
		{"@#$%.jpg", "unnamed_file.jpg"},
		{".jpg", "unnamed_file.jpg"},
		{"../../etc/passwd", "....etcpasswd"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFileName(tt.in))
		})
	}
}

func TestSanitizeFileNameLong(t *testing.T) {
	got := SanitizeFileName(strings.Repeat("a", 300) + ".jpg")
	assert.Equal(t, strings.Repeat("a", 200)+".jpg", got)
}

func TestObjectName(t *testing.T) {
	re := regexp.MustCompile(`^\d{13}_[0-9a-f]{6}_my_photo\.jpg$`)
	a := ObjectName("my photo.jpg")
	b := ObjectName("my photo.jpg")
	assert.Regexp(t, re, a)
	assert.NotEqual(t, a, b)
}

func TestValidObjectName(t *testing.T) {
	assert.True(t, ValidObjectName("1700000000000_abcdef_photo.jpg"))
	assert.False(t, ValidObjectName(""))
	assert.False(t, ValidObjectName(".."))
	assert.False(t, ValidObjectName("a/b"))
	assert.False(t, ValidObjectName(`a\b`))
}
