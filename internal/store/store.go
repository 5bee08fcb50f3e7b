package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sakya146/termscan/internal/model"
)

// Store is the site state store: a typed, host-keyed wrapper over a
// Backend. All operations are read-merge-write cycles that touch only
// their own field group, serialized by a mutex so concurrent triggers
// cannot clobber unrelated fields.
//
// Writes are best-effort. Every successful operation is reflected in an
// in-memory mirror first; a backend failure is logged and the operation
// still succeeds from the mirror, so detection and notification keep
// working when persistence is unavailable.
type Store struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time

	mu sync.Mutex
	// mirror is authoritative within this Store's lifetime: it holds
	// every state this process has written, including writes the backend
	// rejected. The backend is consulted only for hosts not yet mirrored.
	mirror map[string]*model.HostState
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Store over the given backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  slog.Default(),
		now:     time.Now,
		mirror:  make(map[string]*model.HostState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CompletedScan carries everything RecordScanResult persists for one scan.
type CompletedScan struct {
	// URL is the page URL the scan was initiated from.
	URL string

	// Results holds the per-target service payloads in scan order.
	Results []model.LabeledResult

	// Snapshots maps target labels to captured document snapshots. May be
	// nil when snapshotting was skipped.
	Snapshots map[string]model.DocumentSnapshot

	// Overall is the aggregate risk across all targets.
	Overall model.RiskLevel
}

// RecordDetection merges result into the host's detected field group,
// creating the entry if absent. Seen, Suppressed, and scan data are left
// untouched. An empty field in result never clears a previously detected
// link. Returns the merged detection, which the caller can use even when
// the backend write failed.
func (s *Store) RecordDetection(ctx context.Context, host string, result model.DetectionResult) model.DetectionResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, host)
	if result.TermsURL != "" {
		state.Detected.TermsURL = result.TermsURL
	}
	if result.PrivacyURL != "" {
		state.Detected.PrivacyURL = result.PrivacyURL
	}
	s.save(ctx, host, state)

	return state.Detected
}

// ShouldNotify reports whether a detection banner may be shown for host.
// It is false for suppressed hosts, for hosts that have already been shown
// a banner, and always false on search results pages.
func (s *Store) ShouldNotify(ctx context.Context, host string, isSearchResultsPage bool) bool {
	if isSearchResultsPage {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, host)
	return !state.Suppressed && !state.Seen
}

// MarkSeen records that a banner has been shown for host. Idempotent.
func (s *Store) MarkSeen(ctx context.Context, host string) {
	s.setFlag(ctx, host, func(state *model.HostState) { state.Seen = true })
}

// Suppress turns off banners for host.
func (s *Store) Suppress(ctx context.Context, host string) {
	s.setFlag(ctx, host, func(state *model.HostState) { state.Suppressed = true })
}

// Unsuppress re-enables banners for host. The seen flag is not reset, so
// a host that already showed its one banner stays quiet.
func (s *Store) Unsuppress(ctx context.Context, host string) {
	s.setFlag(ctx, host, func(state *model.HostState) { state.Suppressed = false })
}

// setFlag applies a mutation to the seen/suppressed field group.
func (s *Store) setFlag(ctx context.Context, host string, mutate func(*model.HostState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, host)
	mutate(state)
	s.save(ctx, host, state)
}

// RecordLastScan updates only the lastScan field group, called after each
// analyzed target so the badge reflects progress even if a later target
// fails.
func (s *Store) RecordLastScan(ctx context.Context, host, scanURL string, risk model.RiskLevel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(ctx, host)
	state.LastScan = &model.LastScan{
		URL:         scanURL,
		OverallRisk: risk,
		UpdatedAt:   s.now(),
	}
	s.save(ctx, host, state)
}

// RecordScanResult replaces the host's report with the scan's ordered
// results and updates lastScan with the scan's overall risk. Detection and
// flag field groups are left untouched.
func (s *Store) RecordScanResult(ctx context.Context, host string, scan CompletedScan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	state := s.load(ctx, host)
	state.Report = &model.HostReport{
		Results:   scan.Results,
		Snapshots: scan.Snapshots,
		UpdatedAt: now,
	}
	state.LastScan = &model.LastScan{
		URL:         scan.URL,
		OverallRisk: scan.Overall,
		UpdatedAt:   now,
	}
	s.save(ctx, host, state)
}

// Host returns the state for host and whether any state exists.
func (s *Store) Host(ctx context.Context, host string) (*model.HostState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.mirror[host]; ok {
		return state.Clone(), true
	}
	state, err := s.backend.Get(ctx, host)
	if err != nil {
		s.logger.Warn("failed to read site state",
			slog.String("host", host),
			slog.String("error", err.Error()))
		return &model.HostState{}, false
	}
	if state == nil {
		return &model.HostState{}, false
	}
	return state, true
}

// Hosts returns all hosts with state, merging backend records with hosts
// written this session, sorted.
func (s *Store) Hosts(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := make(map[string]struct{}, len(s.mirror))
	for host := range s.mirror {
		set[host] = struct{}{}
	}

	hosts, err := s.backend.Hosts(ctx)
	if err != nil {
		s.logger.Warn("failed to list stored hosts", slog.String("error", err.Error()))
	}
	for _, host := range hosts {
		set[host] = struct{}{}
	}

	all := make([]string, 0, len(set))
	for host := range set {
		all = append(all, host)
	}
	sort.Strings(all)
	return all
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// load returns a mutable copy of the host's current state. Callers must
// hold s.mu.
func (s *Store) load(ctx context.Context, host string) *model.HostState {
	if state, ok := s.mirror[host]; ok {
		return state.Clone()
	}

	state, err := s.backend.Get(ctx, host)
	if err != nil {
		s.logger.Warn("failed to read site state, starting from empty state",
			slog.String("host", host),
			slog.String("error", err.Error()))
		return &model.HostState{}
	}
	if state == nil {
		return &model.HostState{}
	}
	return state
}

// save records the state in the mirror and writes it through to the
// backend best-effort. Callers must hold s.mu.
func (s *Store) save(ctx context.Context, host string, state *model.HostState) {
	s.mirror[host] = state.Clone()

	if err := s.backend.Set(ctx, host, state); err != nil {
		s.logger.Warn("failed to persist site state, continuing in memory",
			slog.String("host", host),
			slog.String("error", err.Error()))
	}
}
