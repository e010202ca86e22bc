package storage

import (
	"fmt"

	"github.com/dkeye/Drop/internal/config"
	"github.com/dkeye/Drop/internal/core"
	"github.com/rs/zerolog/log"
)

// Open builds the file store named by cfg.Driver. The "none" driver returns
// a nil store; callers fall back to Nop for room cleanup.
func Open(cfg config.StorageConfig) (core.FileStore, error) {
	switch cfg.Driver {
	case config.StorageNone, "":
		log.Warn().Str("module", "storage").Msg("no storage configured, file endpoints disabled")
		return nil, nil
	case config.StorageMemory:
		log.Info().Str("module", "storage").Msg("using in-memory storage")
		return NewMemoryStore(cfg.PublicURL), nil
	case config.StorageS3:
		s, err := NewS3Store(S3Config{
			Endpoint:        cfg.Endpoint,
			Region:          cfg.Region,
			AccessKeyID:     cfg.AccessKeyID,
			SecretAccessKey: cfg.SecretAccessKey,
			Bucket:          cfg.Bucket,
			PublicURL:       cfg.PublicURL,
			UseSSL:          cfg.UseSSL,
			PresignTTL:      cfg.PresignTTL,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("module", "storage").Str("endpoint", cfg.Endpoint).Str("bucket", cfg.Bucket).Msg("using s3 storage")
		return s, nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}

// Deleter picks the cleanup hook for the room registry.
func Deleter(fs core.FileStore) core.StorageDeleter {
	if fs == nil {
		return Nop{}
	}
	return fs
}
