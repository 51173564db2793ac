package camera

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/kozaktomas/marathon-booth/internal/constants"
)

const dirDevicePrefix = "dir:"

var stillExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".webp"}

// DirProvider replays still images from a folder, one device per subdirectory
// plus the root itself. Used for rehearsals without real cameras.
type DirProvider struct {
	root string
}

func NewDirProvider(root string) *DirProvider {
	return &DirProvider{root: root}
}

func classifyFSError(err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return fmt.Errorf("%w: %w", ErrDeviceInit, err)
	}
}

func (p *DirProvider) Devices(ctx context.Context) ([]Device, error) {
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, classifyFSError(err)
	}

	devices := []Device{{ID: dirDevicePrefix + ".", Label: filepath.Base(p.root)}}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			devices = append(devices, Device{ID: dirDevicePrefix + e.Name(), Label: e.Name()})
		}
	}
	return devices, nil
}

func (p *DirProvider) Acquire(ctx context.Context, deviceID string) (Stream, error) {
	name, ok := strings.CutPrefix(deviceID, dirDevicePrefix)
	if !ok || name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
	}

	dir := filepath.Join(p.root, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, classifyFSError(err)
	}

	var frames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(stillExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			frames = append(frames, filepath.Join(dir, e.Name()))
		}
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames in %s", ErrDeviceInit, dir)
	}

	return &dirStream{id: deviceID, frames: frames}, nil
}

type dirStream struct {
	id     string
	frames []string

	mu      sync.Mutex
	next    int
	stopped bool
}

func (s *dirStream) DeviceID() string { return s.id }

// Snapshot returns the next frame in name order, wrapping around.
func (s *dirStream) Snapshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, ErrStreamStopped
	}
	path := s.frames[s.next%len(s.frames)]
	s.next++
	s.mu.Unlock()

	data, err := os.ReadFile(path) //nolint:gosec // path comes from the configured camera directory
	if err != nil {
		return nil, classifyFSError(err)
	}
	return NormalizeStill(data, constants.MaxStillSize)
}

func (s *dirStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}
