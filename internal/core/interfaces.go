package core

import (
	"context"
	"io"
	"time"
)

//go:generate go tool mockgen -destination=./mocks/storage_mock.go -package=mocks . StorageDeleter
//go:generate go tool mockgen -destination=./mocks/signal_mock.go -package=mocks . SignalConnection

// StorageDeleter purges every persisted object under a room's namespace.
// Deleting an empty namespace returns (0, nil).
type StorageDeleter interface {
	DeleteAll(ctx context.Context, roomCode string) (int, error)
}

// FileInfo describes one stored object of a room.
type FileInfo struct {
	Name         string    `json:"name"`
	URL          string    `json:"url"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// FilePage is one page of a room listing.
type FilePage struct {
	Files     []FileInfo `json:"files"`
	NextToken string     `json:"nextToken,omitempty"`
}

// PresignedUpload is what a client needs to PUT a file straight into storage.
type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
	FileName  string `json:"fileName"`
}

// FileStore is the object-storage surface the file endpoints use.
// Objects are namespaced by room code: "<roomCode>/<fileName>".
type FileStore interface {
	StorageDeleter

	List(ctx context.Context, roomCode string, limit int, token string) (FilePage, error)
	PresignUpload(ctx context.Context, roomCode, fileName, contentType string) (PresignedUpload, error)
	Upload(ctx context.Context, roomCode, fileName string, r io.Reader, size int64, contentType string) (FileInfo, error)
	Delete(ctx context.Context, roomCode, fileName string) error
	TotalSize(ctx context.Context, roomCode string) (int64, error)
}
