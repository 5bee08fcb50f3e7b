package store

import (
	"context"
	"sort"
	"sync"

	"github.com/sakya146/termscan/internal/model"
)

// MemoryBackend is an in-memory Backend. It backs the store in degraded
// mode when the SQLite database cannot be opened, and doubles as the test
// backend with injectable failures.
type MemoryBackend struct {
	mu     sync.Mutex
	states map[string]*model.HostState

	// GetErr and SetErr, when non-nil, are returned by Get and Set
	// respectively. Tests use them to simulate an unavailable store.
	GetErr error
	SetErr error
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{states: make(map[string]*model.HostState)}
}

// Get returns the stored state for host, or (nil, nil) when absent.
func (b *MemoryBackend) Get(_ context.Context, host string) (*model.HostState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.GetErr != nil {
		return nil, b.GetErr
	}
	state, ok := b.states[host]
	if !ok {
		return nil, nil
	}
	return state.Clone(), nil
}

// Set stores the state for host.
func (b *MemoryBackend) Set(_ context.Context, host string, state *model.HostState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.SetErr != nil {
		return b.SetErr
	}
	b.states[host] = state.Clone()
	return nil
}

// Hosts returns all stored hosts, sorted.
func (b *MemoryBackend) Hosts(_ context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	hosts := make([]string, 0, len(b.states))
	for host := range b.states {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts, nil
}

// Close is a no-op.
func (b *MemoryBackend) Close() error { return nil }
