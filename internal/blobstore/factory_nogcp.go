//go:build !gcp

package blobstore

import (
	"context"
	"errors"

	"github.com/kozaktomas/marathon-booth/internal/config"
)

func newGCSStore(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	return nil, errors.New("GCS storage is not enabled in this build (use -tags gcp)")
}
