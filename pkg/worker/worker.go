// Package worker runs the collect, analyze, summarize and save pipeline for
// one project, once or on every change notification.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/wouteroostervld/unitygraph/pkg/analyzer"
	"github.com/wouteroostervld/unitygraph/pkg/graph"
	"github.com/wouteroostervld/unitygraph/pkg/hash"
	"github.com/wouteroostervld/unitygraph/pkg/source"
	"github.com/wouteroostervld/unitygraph/pkg/store"
)

// Config holds worker configuration
type Config struct {
	ProjectID  string
	FS         fs.FS  // Project directory
	AssetRoot  string // Walk root inside FS, e.g. "Assets"
	Collector  *source.Collector
	Analyzer   *analyzer.ProjectAnalyzer
	Cache      store.Cache // Optional; nil disables persistence
	MaxRetries int
	RetryDelay time.Duration
	Force      bool // Re-analyze even when the cached fingerprint matches
}

// Outcome describes one pipeline run
type Outcome struct {
	ProjectID   string
	Fingerprint string
	Cached      bool // Payload was loaded from the cache
	Payload     *store.Payload
	Files       int
	Duration    time.Duration
}

// AnalysisWorker analyzes a project on demand
type AnalysisWorker struct {
	projectID  string
	fsys       fs.FS
	assetRoot  string
	collector  *source.Collector
	analyzer   *analyzer.ProjectAnalyzer
	cache      store.Cache
	maxRetries int
	retryDelay time.Duration
	force      bool
	trigger    chan struct{}
}

// NewAnalysisWorker creates a new analysis worker
func NewAnalysisWorker(cfg *Config) *AnalysisWorker {
	if cfg.AssetRoot == "" {
		cfg.AssetRoot = "."
	}
	if cfg.Collector == nil {
		cfg.Collector = source.NewCollector(nil, 0)
	}
	if cfg.Analyzer == nil {
		cfg.Analyzer = analyzer.New(nil)
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}

	return &AnalysisWorker{
		projectID:  cfg.ProjectID,
		fsys:       cfg.FS,
		assetRoot:  cfg.AssetRoot,
		collector:  cfg.Collector,
		analyzer:   cfg.Analyzer,
		cache:      cfg.Cache,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		force:      cfg.Force,
		trigger:    make(chan struct{}, 1),
	}
}

// Notify requests a run. Requests arriving while one is pending are merged.
func (w *AnalysisWorker) Notify() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Start runs the pipeline immediately and then once per notification,
// until ctx is done. Each outcome is passed to onDone when it is non-nil.
func (w *AnalysisWorker) Start(ctx context.Context, onDone func(*Outcome, error)) error {
	slog.Info("Analysis worker started", "project", w.projectID, "max_retries", w.maxRetries)

	// Process immediately on startup
	w.Notify()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Analysis worker stopped", "project", w.projectID)
			return ctx.Err()
		case <-w.trigger:
			out, err := w.RunWithRetry(ctx)
			if errors.Is(err, context.Canceled) {
				continue
			}
			if onDone != nil {
				onDone(out, err)
			}
		}
	}
}

// RunWithRetry runs the pipeline, retrying transient failures up to the
// configured limit. Invalid input is not retried.
func (w *AnalysisWorker) RunWithRetry(ctx context.Context) (*Outcome, error) {
	var lastErr error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		out, err := w.RunOnce(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if errors.Is(err, analyzer.ErrInvalidArgument) || ctx.Err() != nil {
			return nil, err
		}
		if attempt == w.maxRetries {
			break
		}

		slog.Warn("Analysis failed, will retry", "project", w.projectID, "retry", attempt, "max_retries", w.maxRetries, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(w.retryDelay):
		}
	}

	slog.Error("Analysis failed permanently", "project", w.projectID, "retries", w.maxRetries, "error", lastErr)
	return nil, lastErr
}

// RunOnce collects the project, reuses the cached analysis when the
// fingerprint is unchanged, and otherwise analyzes and saves a new one.
func (w *AnalysisWorker) RunOnce(ctx context.Context) (*Outcome, error) {
	startTime := time.Now()

	col, err := w.collector.Collect(ctx, w.fsys, w.assetRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to collect files: %w", err)
	}

	out := &Outcome{
		ProjectID:   w.projectID,
		Fingerprint: hash.Fingerprint(col.Files),
		Files:       len(col.Files),
	}

	if w.cache != nil && !w.force {
		if cached, ok := w.loadCached(ctx, out.Fingerprint); ok {
			out.Cached = true
			out.Payload = cached
			out.Duration = time.Since(startTime)
			slog.Info("Analysis unchanged, using cache", "project", w.projectID, "fingerprint", out.Fingerprint)
			return out, nil
		}
	}

	res, err := w.analyzer.Analyze(ctx, analyzer.Input{ProjectID: w.projectID, Files: col.Files})
	if err != nil {
		return nil, err
	}
	res.Report.Skipped = append(col.Skipped, res.Report.Skipped...)

	out.Payload = &store.Payload{
		Structure: res.Structure,
		Summary:   graph.Summarize(res.Structure),
		Report:    res.Report,
	}

	if w.cache != nil {
		if err := w.cache.SaveAnalysis(ctx, w.projectID, out.Fingerprint, out.Payload); err != nil {
			return nil, fmt.Errorf("failed to save analysis: %w", err)
		}
	}

	out.Duration = time.Since(startTime)
	slog.Info("Analyzed project",
		"project", w.projectID,
		"assets", len(res.Structure.Assets),
		"dependencies", len(res.Structure.Dependencies),
		"skipped", res.Report.SkippedCount(),
		"duration", out.Duration,
	)
	return out, nil
}

func (w *AnalysisWorker) loadCached(ctx context.Context, fingerprint string) (*store.Payload, bool) {
	a, err := w.cache.LoadAnalysis(ctx, w.projectID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("Failed to load cached analysis", "project", w.projectID, "error", err)
		}
		return nil, false
	}
	if a.Fingerprint != fingerprint {
		slog.Debug("Fingerprint changed", "project", w.projectID, "cached", a.Fingerprint, "current", fingerprint)
		return nil, false
	}
	return a.Payload, true
}
