package blobstore

import (
	"context"
	"fmt"

	"github.com/kozaktomas/marathon-booth/internal/config"
)

// New creates the photo store selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "", BackendLocal:
		s, err := NewLocalStore(cfg.Dir, cfg.PublicURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendS3:
		s, err := NewS3Store(ctx, S3StoreConfig{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			Prefix:    cfg.Prefix,
			PublicURL: cfg.PublicURL,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendGCS:
		return newGCSStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
