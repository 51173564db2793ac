// Package blobstore stores published booth photos and returns their public URL.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrInvalidName is returned for object names that are empty or escape the prefix.
	ErrInvalidName = errors.New("invalid object name")

	// ErrExists is returned when an object with the same name is already stored.
	ErrExists = errors.New("object already exists")
)

// Backend names accepted by New.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendGCS   = "gcs"
)

// Store uploads objects. Uploads never overwrite an existing object.
type Store interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Close() error
}

// objectKey joins prefix and name, rejecting names with directories or dot segments.
func objectKey(prefix, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name, nil
	}
	return path.Join(prefix, name), nil
}

// joinURL appends an object key to a base URL.
func joinURL(base, key string) string {
	return strings.TrimSuffix(base, "/") + "/" + key
}
