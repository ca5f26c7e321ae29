package defaults

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/panbanda/noslop/internal/cache"
	"github.com/panbanda/noslop/internal/fileproc"
	"github.com/panbanda/noslop/pkg/analyzer"
	"github.com/panbanda/noslop/pkg/parser"
)

// Analyzer reports default parameter values that every known call site
// overrides.
type Analyzer struct {
	minCallSites   int
	includePrivate bool
	workers        int
	cache          *cache.Cache
	logger         *slog.Logger
}

// Compile-time check that Analyzer implements FileAnalyzer.
var _ analyzer.FileAnalyzer[*Analysis] = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMinCallSites only reports parameters whose definition has at least n
// matching call sites. Values below 1 are treated as 1.
func WithMinCallSites(n int) Option {
	return func(a *Analyzer) {
		if n < 1 {
			n = 1
		}
		a.minCallSites = n
	}
}

// WithIncludePrivate also reports definitions whose name starts with a
// single underscore.
func WithIncludePrivate(include bool) Option {
	return func(a *Analyzer) {
		a.includePrivate = include
	}
}

// WithWorkers sets the number of files extracted concurrently.
// Zero or less uses fileproc.DefaultWorkers.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithCache reuses extracted facts for files whose content is unchanged.
func WithCache(c *cache.Cache) Option {
	return func(a *Analyzer) {
		a.cache = c
	}
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// New creates a new unused-defaults analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		minCallSites: 1,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Close releases analyzer resources.
func (a *Analyzer) Close() {}

// Analyze extracts every file, then joins all definitions against all call
// sites. Unreadable or unparsable files are skipped and listed in
// Analysis.Skipped. If ctx is cancelled no partial result is returned.
func (a *Analyzer) Analyze(ctx context.Context, files []string) (*Analysis, error) {
	var cached atomic.Int32

	facts, errs := fileproc.MapFilesN(ctx, files, a.workers, func(psr *parser.Parser, path string) (*FileFacts, error) {
		f, hit, err := a.factsFor(psr, path)
		if hit {
			cached.Add(1)
		}
		return f, err
	})

	// Extraction is a barrier: nothing below runs on a partial scan.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	analysis := &Analysis{Issues: make([]Issue, 0)}
	if errs.HasErrors() {
		for _, e := range errs.Errors {
			a.logger.Debug("skipping file", "path", e.Path, "error", e.Err)
			analysis.Skipped = append(analysis.Skipped, SkippedFile{Path: e.Path, Reason: e.Err.Error()})
		}
	}

	var calls []CallSite
	for _, f := range facts {
		calls = append(calls, f.Calls...)
	}

	catalog := NewCatalog(facts, a.includePrivate)
	agg := Aggregate(catalog, calls)

	summary := Summary{
		FilesScanned:      len(facts),
		FilesSkipped:      errs.Len(),
		CachedFiles:       int(cached.Load()),
		Definitions:       agg.Definitions,
		CalledDefinitions: agg.Called,
		CallSites:         agg.CallSites,
		Indeterminate:     agg.Indeterminate,
	}
	analysis.Issues = buildIssues(agg, a.minCallSites, &summary)
	summary.Issues = len(analysis.Issues)
	summary.MeanCallSites, summary.MaxCallSites = callSiteStats(analysis.Issues)
	analysis.Summary = summary

	a.logger.Debug("analysis complete",
		"files", summary.FilesScanned,
		"skipped", summary.FilesSkipped,
		"cached", summary.CachedFiles,
		"definitions", summary.Definitions,
		"call_sites", summary.CallSites,
		"issues", summary.Issues)

	return analysis, nil
}

// factsFor returns the facts for path, from the cache when the content hash
// matches. The bool reports a cache hit.
func (a *Analyzer) factsFor(psr *parser.Parser, path string) (*FileFacts, bool, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}

	var hash string
	if a.cache.Enabled() {
		hash = cache.HashBytes(source)
		if data, ok := a.cache.Get(path, hash); ok {
			var facts FileFacts
			if err := json.Unmarshal(data, &facts); err == nil {
				return &facts, true, nil
			}
		}
	}

	facts, err := extractFile(psr, path, source)
	if err != nil {
		return nil, false, err
	}

	if a.cache.Enabled() {
		data, err := json.Marshal(facts)
		if err != nil {
			return nil, false, fmt.Errorf("encode facts: %w", err)
		}
		if err := a.cache.Set(path, hash, data); err != nil {
			a.logger.Debug("cache write failed", "path", path, "error", err)
		}
	}

	return facts, false, nil
}
