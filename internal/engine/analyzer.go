// internal/engine/analyzer.go
//
// Package engine orchestrates one analysis call: load a page through the
// browser binding, extract descriptors and the structural summary from the
// captured tree, and resolve free-text targets against the result.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xdruid77/pagescope/api/schemas"
	"github.com/xdruid77/pagescope/internal/browser/dom"
	"github.com/xdruid77/pagescope/internal/browser/session"
	"github.com/xdruid77/pagescope/internal/matcher"
)

// Source loads a URL into a captured document. session.Engine is the real
// implementation; tests substitute a fixture-backed one.
type Source interface {
	Load(ctx context.Context, url string) (*session.Document, error)
}

// Analyzer is the engine's in-process boundary. It holds no snapshot state
// between calls; every call re-extracts from scratch.
type Analyzer struct {
	source          Source
	logger          *zap.Logger
	summaryMaxBytes int
}

const defaultSummaryMaxBytes = 8 * 1024

// NewAnalyzer wires an analyzer to a page source. summaryMaxBytes <= 0
// selects the default budget.
func NewAnalyzer(source Source, logger *zap.Logger, summaryMaxBytes int) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if summaryMaxBytes <= 0 {
		summaryMaxBytes = defaultSummaryMaxBytes
	}
	return &Analyzer{
		source:          source,
		logger:          logger.Named("analyzer"),
		summaryMaxBytes: summaryMaxBytes,
	}
}

// Analyze navigates to the URL and returns a fresh page snapshot. Navigation
// and capture failures are fatal to the call and propagated; the snapshot is
// immutable and owned by the caller.
func (a *Analyzer) Analyze(ctx context.Context, url string) (*schemas.PageSnapshot, error) {
	doc, err := a.source.Load(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", url, err)
	}

	elements, forms := dom.Capture(doc.Root, doc.Facts)
	summary := dom.Summarize(doc.Root, a.summaryMaxBytes)

	a.logger.Debug("Snapshot extracted.",
		zap.String("url", doc.URL),
		zap.Int("elements", len(elements)),
		zap.Int("forms", len(forms)))

	return &schemas.PageSnapshot{
		URL:        doc.URL,
		Title:      doc.Title,
		Elements:   elements,
		Forms:      forms,
		Summary:    summary,
		CapturedAt: time.Now().UTC(),
	}, nil
}

// Resolve analyzes the URL and matches the target description against the
// snapshot. An unmatched description is a normal result, not an error:
// callers fall back to another strategy.
func (a *Analyzer) Resolve(ctx context.Context, url, description string, action schemas.Action) (schemas.MatchResult, error) {
	snapshot, err := a.Analyze(ctx, url)
	if err != nil {
		return schemas.MatchResult{}, err
	}
	return matcher.Match(description, snapshot.Elements, action), nil
}
