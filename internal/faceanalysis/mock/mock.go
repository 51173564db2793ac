// Package mock provides a scriptable face analyzer for testing.
package mock

import (
	"context"
	"sync"

	"github.com/kozaktomas/marathon-booth/internal/faceanalysis"
)

// MockAnalyzer returns a fixed detection. A nil Detection simulates "no face".
type MockAnalyzer struct {
	mu        sync.Mutex
	Detection *faceanalysis.Detection
	Error     error
	Calls     int

	// Block, when set, is waited on before Analyze returns.
	Block chan struct{}
}

func (m *MockAnalyzer) Name() string {
	return "mock"
}

func (m *MockAnalyzer) Analyze(ctx context.Context, jpeg []byte) (*faceanalysis.Detection, error) {
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Error != nil {
		return nil, m.Error
	}
	if m.Detection == nil {
		return nil, nil
	}
	d := *m.Detection
	return &d, nil
}

// CallCount returns how many times Analyze completed.
func (m *MockAnalyzer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
