//go:build gcp

package blobstore

import (
	"context"

	"github.com/kozaktomas/marathon-booth/internal/config"
)

func newGCSStore(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	s, err := NewGCSStore(ctx, GCSStoreConfig{
		Bucket:    cfg.Bucket,
		Prefix:    cfg.Prefix,
		PublicURL: cfg.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}
