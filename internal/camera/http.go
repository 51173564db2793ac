package camera

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/config"
	"github.com/kozaktomas/marathon-booth/internal/constants"
)

const httpDevicePrefix = "http:"

// HTTPProvider serves IP cameras and phone camera apps that expose a still-image
// snapshot URL.
type HTTPProvider struct {
	sources []config.CameraSource
	client  *http.Client
}

// NewHTTPProvider creates a provider for the configured snapshot cameras.
func NewHTTPProvider(sources []config.CameraSource) *HTTPProvider {
	return &HTTPProvider{
		sources: sources,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) Devices(ctx context.Context) ([]Device, error) {
	devices := make([]Device, 0, len(p.sources))
	for _, s := range p.sources {
		devices = append(devices, Device{ID: httpDevicePrefix + s.Name, Label: s.Name})
	}
	return devices, nil
}

func (p *HTTPProvider) Acquire(ctx context.Context, deviceID string) (Stream, error) {
	name, ok := strings.CutPrefix(deviceID, httpDevicePrefix)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
	}
	for _, s := range p.sources {
		if s.Name != name {
			continue
		}
		stream := &httpStream{id: deviceID, url: s.URL, client: p.client}
		// Probe once so permission and reachability problems surface at acquire time.
		if _, err := stream.fetch(ctx); err != nil {
			return nil, err
		}
		return stream, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
}

type httpStream struct {
	id     string
	url    string
	client *http.Client

	mu      sync.Mutex
	stopped bool
}

func (s *httpStream) DeviceID() string { return s.id }

func (s *httpStream) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceInit, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceInit, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s returned %d", ErrPermissionDenied, s.id, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %s returned %d", ErrDeviceInit, s.id, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading frame: %w", ErrDeviceInit, err)
	}
	return body, nil
}

func (s *httpStream) Snapshot(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return nil, ErrStreamStopped
	}

	frame, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return NormalizeStill(frame, constants.MaxStillSize)
}

func (s *httpStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}
