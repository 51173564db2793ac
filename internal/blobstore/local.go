package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

// LocalPathPrefix is the URL path the local store is served under.
const LocalPathPrefix = "/photos/"

// LocalStore writes objects to a directory served by the web server.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the directory if needed. Public URLs are baseURL +
// /photos/ + name; an empty baseURL yields root-relative URLs.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: baseURL}, nil
}

func (s *LocalStore) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key, err := objectKey("", name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup after link

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close object: %w", err)
	}

	// Link fails if the target exists, so a complete file appears atomically
	// and an existing photo is never replaced.
	if err := os.Link(tmp.Name(), filepath.Join(s.dir, key)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, key)
		}
		return "", fmt.Errorf("failed to store object: %w", err)
	}

	return s.baseURL + LocalPathPrefix + key, nil
}

// Handler serves stored objects; mount it under LocalPathPrefix.
func (s *LocalStore) Handler() http.Handler {
	return http.StripPrefix(LocalPathPrefix, http.FileServer(noListing{http.Dir(s.dir)}))
}

func (s *LocalStore) Close() error {
	return nil
}

// noListing hides directory indexes and dotfiles from the file server.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	if base := filepath.Base(name); len(base) > 0 && base[0] == '.' {
		return nil, fs.ErrNotExist
	}
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if stat.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
