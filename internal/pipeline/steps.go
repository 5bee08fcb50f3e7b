package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/sakya146/termscan/internal/analysis"
	"github.com/sakya146/termscan/internal/classifier"
	"github.com/sakya146/termscan/internal/fetcher"
	"github.com/sakya146/termscan/internal/model"
	"github.com/sakya146/termscan/internal/snapshot"
	"github.com/sakya146/termscan/internal/store"
)

// DetectStep fetches the target page and classifies its legal-document
// links. The result is merged into the site state store, so links found on
// an earlier visit survive a page that stopped rendering its footer.
//
// Design decision: Detection is a separate step because:
// 1. It's the foundation every later step builds on
// 2. An empty detection is a valid terminal state, not a failure
// 3. The watch command reuses it standalone, without the scan steps
type DetectStep struct {
	// fetcher retrieves the page to classify.
	fetcher *fetcher.Fetcher

	// store receives the detection merge.
	store *store.Store

	// logger for structured logging.
	logger *slog.Logger
}

// DetectStepOption configures a DetectStep.
type DetectStepOption func(*DetectStep)

// WithDetectLogger sets a custom logger for the detect step.
func WithDetectLogger(logger *slog.Logger) DetectStepOption {
	return func(s *DetectStep) {
		s.logger = logger
	}
}

// NewDetectStep creates a new link detection step.
func NewDetectStep(f *fetcher.Fetcher, st *store.Store, opts ...DetectStepOption) *DetectStep {
	s := &DetectStep{
		fetcher: f,
		store:   st,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *DetectStep) Name() string {
	return "detect"
}

// Do executes the detection step.
// A page with no qualifying links succeeds with an empty detection; later
// steps skip themselves when there is nothing to analyze.
func (s *DetectStep) Do(ctx context.Context, report *model.ScanReport) error {
	page, err := s.fetcher.Fetch(ctx, report.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch page: %w", err)
	}

	base, err := url.Parse(page.URL)
	if err != nil {
		return fmt.Errorf("failed to parse page URL: %w", err)
	}

	result, err := classifier.ClassifyPage(bytes.NewReader(page.Body), base)
	if err != nil {
		return fmt.Errorf("failed to classify page: %w", err)
	}

	// Merge with stored detection so past finds survive this page load.
	report.Detection = s.store.RecordDetection(ctx, report.Host, result)

	if report.Detection.Empty() {
		s.logger.Info("no legal document links found", "url", report.URL)
	} else {
		s.logger.Info("legal document links detected",
			"terms", report.Detection.TermsURL,
			"privacy", report.Detection.PrivacyURL,
		)
	}

	return nil
}

// SnapshotStep captures markdown snapshots of the detected documents.
//
// Design decision: Snapshots are taken before analysis because the remote
// service fetches the documents independently; capturing first means the
// stored snapshot reflects the content closest to what was analyzed.
type SnapshotStep struct {
	// fetcher retrieves the detected documents.
	fetcher *fetcher.Fetcher

	// snapshotter converts documents to markdown.
	snapshotter *snapshot.Snapshotter

	// logger for structured logging.
	logger *slog.Logger
}

// SnapshotStepOption configures a SnapshotStep.
type SnapshotStepOption func(*SnapshotStep)

// WithSnapshotLogger sets a custom logger for the snapshot step.
func WithSnapshotLogger(logger *slog.Logger) SnapshotStepOption {
	return func(s *SnapshotStep) {
		s.logger = logger
	}
}

// NewSnapshotStep creates a new document snapshot step.
func NewSnapshotStep(f *fetcher.Fetcher, snap *snapshot.Snapshotter, opts ...SnapshotStepOption) *SnapshotStep {
	s := &SnapshotStep{
		fetcher:     f,
		snapshotter: snap,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SnapshotStep) Name() string {
	return "snapshot"
}

// Do executes the snapshot step.
// Snapshot failures are non-fatal: the scan proceeds without a snapshot
// for that document.
func (s *SnapshotStep) Do(ctx context.Context, report *model.ScanReport) error {
	targets := report.Detection.Targets()
	if len(targets) == 0 {
		s.logger.Debug("skipping snapshots, no links detected")
		return nil
	}

	for _, target := range targets {
		page, err := s.fetcher.Fetch(ctx, target.URL)
		if err != nil {
			s.logger.Warn("failed to fetch document for snapshot",
				"label", target.Label,
				"url", target.URL,
				"error", err,
			)
			continue
		}

		snap, err := s.snapshotter.Capture(page)
		if err != nil {
			s.logger.Warn("failed to capture snapshot",
				"label", target.Label,
				"url", target.URL,
				"error", err,
			)
			continue
		}

		if report.Snapshots == nil {
			report.Snapshots = make(map[string]model.DocumentSnapshot, len(targets))
		}
		report.Snapshots[target.Label] = snap

		s.logger.Debug("snapshot captured",
			"label", target.Label,
			"bytes", len(snap.Markdown),
		)
	}

	return nil
}

// AnalyzeStep sends each detected document to the analysis service and
// aggregates the per-document risks into the overall level.
//
// Design decision: A failed service request aborts the whole scan rather
// than degrading, because it is the one error class the user can act on
// (fix credentials, retry) and a partial report would silently overwrite a
// complete stored one in the persist step.
type AnalyzeStep struct {
	// client executes analyzer runs.
	client *analysis.Client

	// store receives per-target lastScan updates.
	store *store.Store

	// logger for structured logging.
	logger *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithAnalyzeLogger sets a custom logger for the analyze step.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates a new analysis step.
func NewAnalyzeStep(client *analysis.Client, st *store.Store, opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		client: client,
		store:  st,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do executes the analysis step.
// Each detected document gets its own service request, Terms before
// Privacy. The same URL serving both labels is still analyzed once per
// label, so both report entries carry their own payload.
func (s *AnalyzeStep) Do(ctx context.Context, report *model.ScanReport) error {
	targets := report.Detection.Targets()
	if len(targets) == 0 {
		s.logger.Debug("skipping analysis, no links detected")
		return nil
	}
	if !s.client.Configured() {
		s.logger.Info("skipping analysis, no credentials configured")
		return nil
	}

	for _, target := range targets {
		payload, err := s.client.Execute(ctx, target.URL)
		if err != nil {
			return fmt.Errorf("analysis of %s failed: %w", target.Label, err)
		}

		doc := analysis.Normalize(target.Label, payload)
		if doc.URL == "" {
			doc.URL = target.URL
		}

		report.Results = append(report.Results, model.LabeledResult{
			Label: target.Label,
			Data:  payload,
		})
		report.Documents = append(report.Documents, doc)

		// Badge state advances per analyzed target, so an abort on a later
		// target still leaves the finished ones visible.
		s.store.RecordLastScan(ctx, report.Host, doc.URL, doc.Risk)

		s.logger.Info("document analyzed",
			"label", target.Label,
			"risk", doc.Risk.String(),
		)
	}

	report.Overall = model.AggregateRisk(report.DocumentRisks())
	return nil
}

// PersistStep writes the completed scan into the site state store.
type PersistStep struct {
	// store receives the completed scan.
	store *store.Store

	// logger for structured logging.
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a new persist step.
func NewPersistStep(st *store.Store, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		store:  st,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persist step.
// The write is best-effort inside the store; a persistence failure never
// fails the scan that produced the results.
func (s *PersistStep) Do(ctx context.Context, report *model.ScanReport) error {
	if !report.Analyzed() {
		s.logger.Debug("skipping persist, nothing analyzed")
		return nil
	}

	s.store.RecordScanResult(ctx, report.Host, store.CompletedScan{
		URL:       report.URL,
		Results:   report.Results,
		Snapshots: report.Snapshots,
		Overall:   report.Overall,
	})

	return nil
}

// DefaultPipeline creates a pipeline with the standard scan steps in
// order: detect, snapshot, analyze, persist.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the full scan
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
//
// Pass a nil snapshotter to scan without capturing document snapshots.
func DefaultPipeline(
	f *fetcher.Fetcher,
	st *store.Store,
	client *analysis.Client,
	snapshotter *snapshot.Snapshotter,
	pipelineOpts ...Option,
) *Pipeline {
	p := New(pipelineOpts...)

	p.AddStep(NewDetectStep(f, st, WithDetectLogger(p.logger)))
	if snapshotter != nil {
		p.AddStep(NewSnapshotStep(f, snapshotter, WithSnapshotLogger(p.logger)))
	}
	p.AddSteps(
		NewAnalyzeStep(client, st, WithAnalyzeLogger(p.logger)),
		NewPersistStep(st, WithPersistLogger(p.logger)),
	)

	return p
}
