package snapshot

import (
	"fmt"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/sakya146/termscan/internal/model"
)

// Snapshotter converts fetched legal-document pages to markdown snapshots.
type Snapshotter struct {
	mdConverter *converter.Converter
	maxSize     int
	now         func() time.Time
}

// Option configures a Snapshotter.
type Option func(*Snapshotter)

// WithMaxSize overrides the snapshot size cap in bytes.
func WithMaxSize(size int) Option {
	return func(s *Snapshotter) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Snapshotter) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Snapshotter.
func New(opts ...Option) *Snapshotter {
	s := &Snapshotter{
		mdConverter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
		maxSize: model.MaxSnapshotSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Capture converts the page body to a markdown snapshot.
// Conversion failures and empty documents are errors; the caller treats a
// failed snapshot as non-fatal and scans without one.
func (s *Snapshotter) Capture(page *model.Page) (model.DocumentSnapshot, error) {
	if page == nil || len(page.Body) == 0 {
		return model.DocumentSnapshot{}, fmt.Errorf("no page content to snapshot")
	}

	markdown, err := s.mdConverter.ConvertString(string(page.Body), converter.WithDomain(page.URL))
	if err != nil {
		return model.DocumentSnapshot{}, fmt.Errorf("failed to convert document to markdown: %w", err)
	}
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return model.DocumentSnapshot{}, fmt.Errorf("document converted to empty markdown")
	}

	if len(markdown) > s.maxSize {
		markdown = truncate(markdown, s.maxSize)
	}

	return model.DocumentSnapshot{
		URL:        page.URL,
		Markdown:   markdown,
		Hash:       page.Hash,
		CapturedAt: s.now(),
	}, nil
}

// truncate cuts markdown to at most size bytes without splitting a UTF-8
// sequence, appending a truncation marker.
func truncate(markdown string, size int) string {
	const marker = "\n\n…(truncated)"
	cut := size - len(marker)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8Start(markdown[cut]) {
		cut--
	}
	return markdown[:cut] + marker
}

// utf8Start reports whether b can start a UTF-8 sequence.
func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
