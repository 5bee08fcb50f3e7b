package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sakya146/termscan/internal/analysis"
	"github.com/sakya146/termscan/internal/model"
	"github.com/sakya146/termscan/internal/store"
)

// Scanner runs a full scan of one page URL. The serve command wires the
// default pipeline in here; tests substitute a stub.
type Scanner interface {
	Scan(ctx context.Context, pageURL string) (*model.ScanReport, error)
}

// ScannerFunc adapts a function to the Scanner interface.
type ScannerFunc func(ctx context.Context, pageURL string) (*model.ScanReport, error)

// Scan implements Scanner.
func (f ScannerFunc) Scan(ctx context.Context, pageURL string) (*model.ScanReport, error) {
	return f(ctx, pageURL)
}

// Server exposes the site state store and on-demand scans over HTTP.
// It is a local management API, not a public surface: the serve command
// binds it to localhost by default.
type Server struct {
	store   *store.Store
	scanner Scanner
	logger  *slog.Logger

	// scanTimeout bounds one on-demand scan triggered over the API.
	scanTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithScanTimeout bounds on-demand scans triggered via POST /api/scan.
func WithScanTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.scanTimeout = d
	}
}

// New creates a Server over the given store and scanner.
// A nil scanner disables POST /api/scan with 503 responses.
func New(st *store.Store, scanner Scanner, opts ...Option) *Server {
	s := &Server{
		store:       st,
		scanner:     scanner,
		logger:      slog.Default(),
		scanTimeout: 5 * time.Minute,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Router builds the chi router with all API routes registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/hosts", s.handleListHosts)
		r.Route("/hosts/{host}", func(r chi.Router) {
			r.Get("/", s.handleGetHost)
			r.Get("/report", s.handleGetReport)
			r.Post("/suppress", s.handleSuppress)
			r.Delete("/suppress", s.handleUnsuppress)
		})
		r.Post("/scan", s.handleScan)
	})

	return r
}

// hostSummary is the list-view projection of a host's stored state.
type hostSummary struct {
	Host        string           `json:"host"`
	Detected    bool             `json:"detected"`
	Seen        bool             `json:"seen"`
	Suppressed  bool             `json:"suppressed"`
	OverallRisk *model.RiskLevel `json:"overallRisk,omitempty"`
	LastScanned *time.Time       `json:"lastScanned,omitempty"`
}

// handleListHosts returns a summary of every known host.
func (s *Server) handleListHosts(w http.ResponseWriter, r *http.Request) {
	hosts := s.store.Hosts(r.Context())

	summaries := make([]hostSummary, 0, len(hosts))
	for _, host := range hosts {
		state, ok := s.store.Host(r.Context(), host)
		if !ok {
			continue
		}
		summary := hostSummary{
			Host:       host,
			Detected:   !state.Detected.Empty(),
			Seen:       state.Seen,
			Suppressed: state.Suppressed,
		}
		if state.LastScan != nil {
			risk := state.LastScan.OverallRisk
			summary.OverallRisk = &risk
			ts := state.LastScan.UpdatedAt
			summary.LastScanned = &ts
		}
		summaries = append(summaries, summary)
	}

	writeJSON(w, http.StatusOK, summaries)
}

// handleGetHost returns the full stored state for one host.
func (s *Server) handleGetHost(w http.ResponseWriter, r *http.Request) {
	host, ok := s.hostParam(w, r)
	if !ok {
		return
	}

	state, found := s.store.Host(r.Context(), host)
	if !found {
		writeError(w, http.StatusNotFound, "unknown host")
		return
	}

	writeJSON(w, http.StatusOK, state)
}

// reportDocument pairs a normalized document with its snapshot, if any.
type reportDocument struct {
	model.Document
	Snapshot *model.DocumentSnapshot `json:"snapshot,omitempty"`
}

// hostReportView is the rendered form of a stored host report.
type hostReportView struct {
	Host      string           `json:"host"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Documents []reportDocument `json:"documents"`
}

// handleGetReport renders the stored report for one host.
// Stored payloads are opaque service responses; they are normalized here,
// at read time, so old reports stay readable after service schema changes.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	host, ok := s.hostParam(w, r)
	if !ok {
		return
	}

	state, found := s.store.Host(r.Context(), host)
	if !found || state.Report == nil {
		writeError(w, http.StatusNotFound, "no stored report for host")
		return
	}

	view := hostReportView{
		Host:      host,
		UpdatedAt: state.Report.UpdatedAt,
		Documents: make([]reportDocument, 0, len(state.Report.Results)),
	}
	for _, result := range state.Report.Results {
		doc := reportDocument{Document: analysis.Normalize(result.Label, result.Data)}
		if snap, ok := state.Report.Snapshots[result.Label]; ok {
			doc.Snapshot = &snap
		}
		view.Documents = append(view.Documents, doc)
	}

	writeJSON(w, http.StatusOK, view)
}

// handleSuppress turns off detection notices for a host.
func (s *Server) handleSuppress(w http.ResponseWriter, r *http.Request) {
	host, ok := s.hostParam(w, r)
	if !ok {
		return
	}

	s.store.Suppress(r.Context(), host)
	writeJSON(w, http.StatusOK, map[string]string{"host": host, "status": "suppressed"})
}

// handleUnsuppress re-enables detection notices for a host.
func (s *Server) handleUnsuppress(w http.ResponseWriter, r *http.Request) {
	host, ok := s.hostParam(w, r)
	if !ok {
		return
	}

	s.store.Unsuppress(r.Context(), host)
	writeJSON(w, http.StatusOK, map[string]string{"host": host, "status": "active"})
}

// handleScan runs a full scan of the requested URL and returns the report.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if s.scanner == nil {
		writeError(w, http.StatusServiceUnavailable, "scanning is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 32*1024)

	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		writeError(w, http.StatusBadRequest, "url must be absolute http or https")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.scanTimeout)
	defer cancel()

	report, err := s.scanner.Scan(ctx, req.URL)
	if err != nil {
		s.logger.Warn("scan request failed", "url", req.URL, "error", err)
		status := http.StatusBadGateway
		if errors.Is(err, analysis.ErrNotConfigured) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// hostParam extracts and validates the {host} URL parameter.
func (s *Server) hostParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	host := strings.TrimSpace(chi.URLParam(r, "host"))
	if host == "" {
		writeError(w, http.StatusBadRequest, "host is required")
		return "", false
	}
	return host, true
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
