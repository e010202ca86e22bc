package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dkeye/Drop/internal/core"
)

type memObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryRoute is where the HTTP layer serves MemoryStore objects.
const MemoryRoute = "/files"

// MemoryStore is an in-process FileStore for local runs and tests. Its file
// and upload URLs point at MemoryRoute, served by the HTTP layer.
type MemoryStore struct {
	mu        sync.Mutex
	rooms     map[string]map[string]memObject
	publicURL string
}

func NewMemoryStore(publicURL string) *MemoryStore {
	if publicURL == "" {
		publicURL = MemoryRoute
	}
	return &MemoryStore{
		rooms:     make(map[string]map[string]memObject),
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (s *MemoryStore) fileURL(roomCode, name string) string {
	return s.publicURL + "/" + roomCode + "/" + url.PathEscape(name)
}

func (s *MemoryStore) List(_ context.Context, roomCode string, limit int, token string) (core.FilePage, error) {
	if limit <= 0 {
		limit = 100
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.rooms[roomCode]))
	for name := range s.rooms[roomCode] {
		if token == "" || objectKey(roomCode, name) > token {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	page := core.FilePage{Files: make([]core.FileInfo, 0, min(limit, len(names)))}
	for i, name := range names {
		if i == limit {
			page.NextToken = objectKey(roomCode, names[i-1])
			break
		}
		obj := s.rooms[roomCode][name]
		page.Files = append(page.Files, core.FileInfo{
			Name:         name,
			URL:          s.fileURL(roomCode, name),
			Size:         int64(len(obj.data)),
			LastModified: obj.modified,
		})
	}
	return page, nil
}

func (s *MemoryStore) PresignUpload(_ context.Context, roomCode, fileName, contentType string) (core.PresignedUpload, error) {
	name := ObjectName(fileName)
	return core.PresignedUpload{
		UploadURL: s.fileURL(roomCode, name) + "?upload=1&contentType=" + url.QueryEscape(contentType),
		FileURL:   s.fileURL(roomCode, name),
		FileName:  name,
	}, nil
}

func (s *MemoryStore) Upload(_ context.Context, roomCode, fileName string, r io.Reader, _ int64, contentType string) (core.FileInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.FileInfo{}, fmt.Errorf("storage: upload %s: %w", roomCode, err)
	}
	name := ObjectName(fileName)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms[roomCode] == nil {
		s.rooms[roomCode] = make(map[string]memObject)
	}
	s.rooms[roomCode][name] = memObject{data: data, contentType: contentType, modified: now}
	return core.FileInfo{
		Name:         name,
		URL:          s.fileURL(roomCode, name),
		Size:         int64(len(data)),
		LastModified: now,
	}, nil
}

// Put stores an object under an exact name.
func (s *MemoryStore) Put(roomCode, name string, data []byte, contentType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms[roomCode] == nil {
		s.rooms[roomCode] = make(map[string]memObject)
	}
	s.rooms[roomCode][name] = memObject{data: data, contentType: contentType, modified: time.Now()}
}

func (s *MemoryStore) Get(roomCode, name string) ([]byte, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.rooms[roomCode][name]
	if !ok {
		return nil, "", false
	}
	return obj.data, obj.contentType, true
}

func (s *MemoryStore) Delete(_ context.Context, roomCode, fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms[roomCode], fileName)
	if len(s.rooms[roomCode]) == 0 {
		delete(s.rooms, roomCode)
	}
	return nil
}

func (s *MemoryStore) DeleteAll(_ context.Context, roomCode string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.rooms[roomCode])
	delete(s.rooms, roomCode)
	return n, nil
}

func (s *MemoryStore) TotalSize(_ context.Context, roomCode string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, obj := range s.rooms[roomCode] {
		total += int64(len(obj.data))
	}
	return total, nil
}

var _ core.FileStore = (*MemoryStore)(nil)

// Nop is the deleter used when no storage backend is configured.
type Nop struct{}

func (Nop) DeleteAll(context.Context, string) (int, error) { return 0, nil }
