package database

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kozaktomas/marathon-booth/internal/config"
)

// Opener connects to a backend, applies its migrations and returns the store.
type Opener func(ctx context.Context, cfg *config.DatabaseConfig) (Store, error)

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Opener)
)

// RegisterBackend registers a storage backend under a driver name.
// This is called by the backend packages to avoid import cycles.
func RegisterBackend(driver string, open Opener) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if open == nil {
		panic("database: RegisterBackend opener is nil")
	}
	if _, dup := backends[driver]; dup {
		panic("database: RegisterBackend called twice for driver " + driver)
	}
	backends[driver] = open
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open opens the backend named by cfg.Driver.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (Store, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	backendsMu.RLock()
	open, ok := backends[cfg.Driver]
	backendsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown database driver %q (available: %v)", cfg.Driver, Drivers())
	}
	store, err := open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s backend: %w", cfg.Driver, err)
	}
	return store, nil
}
