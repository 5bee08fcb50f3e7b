package store

import (
	"context"

	"github.com/sakya146/termscan/internal/model"
)

// Backend is the persistence layer beneath a Store.
//
// Design decision: We define the interface in this package (the consumer)
// rather than next to each implementation because:
//  1. The Store is the only component that should touch raw host records
//  2. Swapping SQLite for memory (degraded mode, tests) needs no adapter
//  3. The merge discipline stays in one place, above the Backend
type Backend interface {
	// Get returns the stored state for host, or (nil, nil) when the host
	// has no record.
	Get(ctx context.Context, host string) (*model.HostState, error)

	// Set stores the full state record for host, replacing any previous
	// record.
	Set(ctx context.Context, host string, state *model.HostState) error

	// Hosts returns all hosts with a stored record, sorted.
	Hosts(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}
