package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dkeye/Drop/internal/core"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// S3Config points at any S3-compatible bucket (AWS, R2, MinIO).
type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
	UseSSL          bool
	PresignTTL      time.Duration
}

// S3Store keeps room files under "<roomCode>/<name>" in one bucket.
type S3Store struct {
	client     *minio.Client
	bucket     string
	publicURL  string
	presignTTL time.Duration
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("storage: endpoint and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: new client: %w", err)
	}
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &S3Store{
		client:     client,
		bucket:     cfg.Bucket,
		publicURL:  strings.TrimRight(cfg.PublicURL, "/"),
		presignTTL: ttl,
	}, nil
}

func (s *S3Store) fileURL(roomCode, name string) string {
	return s.publicURL + "/" + roomCode + "/" + url.PathEscape(name)
}

// List returns up to limit files. The page token is the last key of the
// previous page.
func (s *S3Store) List(ctx context.Context, roomCode string, limit int, token string) (core.FilePage, error) {
	if limit <= 0 {
		limit = 100
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	page := core.FilePage{Files: make([]core.FileInfo, 0)}
	opts := minio.ListObjectsOptions{Prefix: roomPrefix(roomCode), Recursive: true, StartAfter: token}
	lastKey := ""
	for obj := range s.client.ListObjects(ctx, s.bucket, opts) {
		if obj.Err != nil {
			return core.FilePage{}, fmt.Errorf("storage: list %s: %w", roomCode, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if len(page.Files) == limit {
			page.NextToken = lastKey
			break
		}
		name := strings.TrimPrefix(obj.Key, roomPrefix(roomCode))
		page.Files = append(page.Files, core.FileInfo{
			Name:         name,
			URL:          s.fileURL(roomCode, name),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
		lastKey = obj.Key
	}
	return page, nil
}

func (s *S3Store) PresignUpload(ctx context.Context, roomCode, fileName, contentType string) (core.PresignedUpload, error) {
	name := ObjectName(fileName)
	headers := http.Header{}
	if contentType != "" {
		headers.Set("Content-Type", contentType)
	}
	u, err := s.client.PresignHeader(ctx, http.MethodPut, s.bucket, objectKey(roomCode, name), s.presignTTL, url.Values{}, headers)
	if err != nil {
		return core.PresignedUpload{}, fmt.Errorf("storage: presign %s: %w", roomCode, err)
	}
	log.Info().Str("module", "storage").Str("key", objectKey(roomCode, name)).Msg("presigned upload url issued")
	return core.PresignedUpload{
		UploadURL: u.String(),
		FileURL:   s.fileURL(roomCode, name),
		FileName:  name,
	}, nil
}

func (s *S3Store) Upload(ctx context.Context, roomCode, fileName string, r io.Reader, size int64, contentType string) (core.FileInfo, error) {
	name := ObjectName(fileName)
	info, err := s.client.PutObject(ctx, s.bucket, objectKey(roomCode, name), r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return core.FileInfo{}, fmt.Errorf("storage: upload %s: %w", roomCode, err)
	}
	log.Info().Str("module", "storage").Str("key", info.Key).Int64("size", info.Size).Msg("uploaded")
	return core.FileInfo{
		Name:         name,
		URL:          s.fileURL(roomCode, name),
		Size:         info.Size,
		LastModified: time.Now(),
	}, nil
}

func (s *S3Store) Delete(ctx context.Context, roomCode, fileName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey(roomCode, fileName), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: delete %s/%s: %w", roomCode, fileName, err)
	}
	return nil
}

// DeleteAll removes every object of the room and reports how many went away.
func (s *S3Store) DeleteAll(ctx context.Context, roomCode string) (int, error) {
	objects, err := s.listAll(ctx, roomCode)
	if err != nil {
		return 0, err
	}
	if len(objects) == 0 {
		return 0, nil
	}

	objectsCh := make(chan minio.ObjectInfo, len(objects))
	for _, obj := range objects {
		objectsCh <- obj
	}
	close(objectsCh)

	var errs []error
	for rerr := range s.client.RemoveObjects(ctx, s.bucket, objectsCh, minio.RemoveObjectsOptions{}) {
		errs = append(errs, fmt.Errorf("%s: %w", rerr.ObjectName, rerr.Err))
	}
	deleted := len(objects) - len(errs)
	if len(errs) > 0 {
		return deleted, fmt.Errorf("storage: delete room %s: %w", roomCode, errors.Join(errs...))
	}
	log.Info().Str("module", "storage").Str("room", roomCode).Int("deleted", deleted).Msg("room files deleted")
	return deleted, nil
}

func (s *S3Store) TotalSize(ctx context.Context, roomCode string) (int64, error) {
	objects, err := s.listAll(ctx, roomCode)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, obj := range objects {
		total += obj.Size
	}
	return total, nil
}

func (s *S3Store) listAll(ctx context.Context, roomCode string) ([]minio.ObjectInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var objects []minio.ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: roomPrefix(roomCode), Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("storage: list %s: %w", roomCode, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

var _ core.FileStore = (*S3Store)(nil)
