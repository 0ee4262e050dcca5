// Package runner fetches every configured source into a run directory.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/signalnine/tribunal/internal/result"
	"github.com/signalnine/tribunal/internal/source"
)

// ErrAllFailed is returned by Store when no source produced results.
var ErrAllFailed = errors.New("every source failed")

// Outcome is what one source's fetch produced.
type Outcome struct {
	Source  string
	Kind    string
	Results []result.Normalized
	Err     error
	Elapsed time.Duration
}

// Fetch runs every source through the pool, at most parallel at a time.
// Outcomes are in source order.
func Fetch(ctx context.Context, sources []source.Source, parallel int, logger *slog.Logger) []Outcome {
	if logger == nil {
		logger = slog.Default()
	}
	outcomes := make([]Outcome, len(sources))
	jobs := make([]Job, len(sources))
	for i, src := range sources {
		outcomes[i] = Outcome{Source: src.Name(), Kind: src.Kind()}
		jobs[i] = func(ctx context.Context) error {
			logger.Info("fetching", "source", src.Name(), "kind", src.Kind())
			start := time.Now()
			results, err := src.Fetch(ctx)
			outcomes[i].Results = results
			outcomes[i].Elapsed = time.Since(start)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Name(), err)
			}
			logger.Info("fetched", "source", src.Name(), "results", len(results), "elapsed", outcomes[i].Elapsed)
			return nil
		}
	}
	for i, err := range RunPool(ctx, parallel, jobs) {
		if err != nil {
			outcomes[i].Err = err
			outcomes[i].Results = nil
		}
	}
	return outcomes
}

// Store writes each successful outcome's results into runDir and records all
// outcomes in the run manifest. Sources that returned no results still get a
// results file so the run lists them.
func Store(runDir string, outcomes []Outcome, c result.Compression) (*result.Manifest, error) {
	m := result.NewManifest()
	succeeded := 0
	for _, o := range outcomes {
		stat := result.SourceStat{Name: o.Source, Kind: o.Kind, Results: len(o.Results)}
		if o.Err != nil {
			stat.Error = o.Err.Error()
			m.Sources = append(m.Sources, stat)
			continue
		}
		path, err := result.WriteResults(runDir, o.Source, o.Results, c)
		if err != nil {
			return nil, fmt.Errorf("storing %s: %w", o.Source, err)
		}
		stat.File = filepath.Base(path)
		m.Sources = append(m.Sources, stat)
		succeeded++
	}
	if err := result.WriteManifest(runDir, m); err != nil {
		return nil, err
	}
	if succeeded == 0 && len(outcomes) > 0 {
		return m, ErrAllFailed
	}
	return m, nil
}
