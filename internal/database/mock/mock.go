// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/marathon-booth/internal/database"
	"github.com/kozaktomas/marathon-booth/internal/runner"
)

// MockRunnerStore is an in-memory implementation of database.Store
type MockRunnerStore struct {
	mu      sync.RWMutex
	runners map[string]*runner.Record
	newID   database.IDGenerator
	now     func() time.Time

	// Error injection
	CreateError error
	GetError    error
	ListError   error
	CountError  error
	UpdateError error

	// Call tracking
	Updates []CaptureCall
}

// CaptureCall records one UpdateCapture invocation.
type CaptureCall struct {
	RunnerID string
	Update   database.CaptureUpdate
}

// NewMockRunnerStore creates a new mock runner store
func NewMockRunnerStore() *MockRunnerStore {
	return &MockRunnerStore{
		runners: make(map[string]*runner.Record),
		newID:   runner.GenerateID,
		now:     time.Now,
	}
}

// AddRunner adds a record to the mock store
func (m *MockRunnerStore) AddRunner(r runner.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runners[r.RunnerID] = &r
}

// SetIDGenerator overrides the ID source
func (m *MockRunnerStore) SetIDGenerator(gen database.IDGenerator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.newID = gen
}

// Create stores a runner under a fresh ID, retrying on collisions like the real backends
func (m *MockRunnerStore) Create(ctx context.Context, n database.NewRunner) (*runner.Record, error) {
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	createdAt := m.now()
	id, err := database.InsertWithFreshID(ctx, m.newID, func(ctx context.Context, id string) error {
		if _, taken := m.runners[id]; taken {
			return database.ErrDuplicateID
		}
		rec := n.Record(id, createdAt)
		m.runners[id] = &rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	rec := *m.runners[id]
	return &rec, nil
}

// Get retrieves a runner by ID
func (m *MockRunnerStore) Get(ctx context.Context, runnerID string) (*runner.Record, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.runners[runnerID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

// List returns the newest runners first
func (m *MockRunnerStore) List(ctx context.Context, limit int) ([]runner.Record, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	if limit <= 0 {
		limit = database.DefaultListLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]runner.Record, 0, len(m.runners))
	for _, r := range m.runners {
		records = append(records, *r)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].RunnerID < records[j].RunnerID
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Count returns the number of runners
func (m *MockRunnerStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runners), nil
}

// UpdateCapture attaches capture fields to a runner
func (m *MockRunnerStore) UpdateCapture(ctx context.Context, runnerID string, u database.CaptureUpdate) error {
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runners[runnerID]
	if !ok {
		return database.ErrNotFound
	}
	if u.PhotoURL != "" {
		r.PhotoURL = u.PhotoURL
	}
	if u.AgeGroup != "" {
		r.AgeGroup = u.AgeGroup
	}
	if u.Gender != "" {
		r.Gender = u.Gender
	}
	m.Updates = append(m.Updates, CaptureCall{RunnerID: runnerID, Update: u})
	return nil
}

// Close is a no-op
func (m *MockRunnerStore) Close() error {
	return nil
}
