// Package mock provides a scriptable camera provider for testing.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/kozaktomas/marathon-booth/internal/camera"
)

// MockProvider is an in-memory camera.Provider that counts open streams.
type MockProvider struct {
	mu      sync.Mutex
	devices []camera.Device
	frame   []byte
	open    int

	// Error injection
	DevicesError  error
	AcquireError  error
	SnapshotError error

	// AcquireHook, when set, runs inside Acquire before the stream is returned.
	AcquireHook func(ctx context.Context) error
}

// NewMockProvider creates a provider listing the given device IDs and returning
// frame from every snapshot.
func NewMockProvider(frame []byte, deviceIDs ...string) *MockProvider {
	m := &MockProvider{frame: frame}
	for _, id := range deviceIDs {
		m.devices = append(m.devices, camera.Device{ID: id, Label: id})
	}
	return m
}

// OpenStreams returns the number of acquired, not yet stopped streams.
func (m *MockProvider) OpenStreams() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// SetFrame replaces the frame returned by snapshots.
func (m *MockProvider) SetFrame(frame []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame = frame
}

func (m *MockProvider) Devices(ctx context.Context) ([]camera.Device, error) {
	if m.DevicesError != nil {
		return nil, m.DevicesError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]camera.Device, len(m.devices))
	copy(out, m.devices)
	return out, nil
}

func (m *MockProvider) Acquire(ctx context.Context, deviceID string) (camera.Stream, error) {
	if m.AcquireHook != nil {
		if err := m.AcquireHook(ctx); err != nil {
			return nil, err
		}
	}
	if m.AcquireError != nil {
		return nil, m.AcquireError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	known := false
	for _, d := range m.devices {
		if d.ID == deviceID {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("%w: %s", camera.ErrUnknownDevice, deviceID)
	}
	m.open++
	return &mockStream{provider: m, id: deviceID}, nil
}

type mockStream struct {
	provider *MockProvider
	id       string
	stopped  bool
}

func (s *mockStream) DeviceID() string { return s.id }

func (s *mockStream) Snapshot(ctx context.Context) ([]byte, error) {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	if s.stopped {
		return nil, camera.ErrStreamStopped
	}
	if s.provider.SnapshotError != nil {
		return nil, s.provider.SnapshotError
	}
	out := make([]byte, len(s.provider.frame))
	copy(out, s.provider.frame)
	return out, nil
}

func (s *mockStream) Stop() error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		s.provider.open--
	}
	return nil
}
