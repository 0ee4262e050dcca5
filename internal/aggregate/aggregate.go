// Package aggregate groups normalized results and summarizes their metrics.
package aggregate

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/signalnine/tribunal/internal/result"
	"github.com/signalnine/tribunal/internal/stats"
)

var (
	// ErrEmptyInput is returned when summarizing zero results.
	ErrEmptyInput = errors.New("no results to aggregate")

	// ErrMetricNotFound is returned when no result carries a requested metric.
	ErrMetricNotFound = errors.New("metric not found")
)

// Summary holds per-metric descriptive statistics over a group of results.
// A metric observed in none of the group's results is absent from every map.
type Summary struct {
	Mean   map[string]float64 `json:"mean"`
	Median map[string]float64 `json:"median"`
	StdDev map[string]float64 `json:"std_dev"`
	Min    map[string]float64 `json:"min"`
	Max    map[string]float64 `json:"max"`
	Count  int                `json:"count"`
}

// Metrics is a summary of results grouped by model, by scenario and overall.
type Metrics struct {
	ByModel    map[string]Summary `json:"by_model"`
	ByScenario map[string]Summary `json:"by_scenario"`
	Overall    Summary            `json:"overall"`
}

// Aggregator computes summaries. It holds no mutable state and is safe for
// concurrent use.
type Aggregator struct {
	parallelism int
}

type Option func(*Aggregator)

// WithParallelism bounds how many groups are summarized concurrently.
// Values below 2 summarize sequentially.
func WithParallelism(n int) Option {
	return func(a *Aggregator) { a.parallelism = n }
}

func New(opts ...Option) *Aggregator {
	a := &Aggregator{parallelism: 1}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summarize computes statistics for every metric seen in results. Count is
// the number of results, while each metric's statistics use only the
// results that carry it.
func (a *Aggregator) Summarize(results []result.Normalized) (Summary, error) {
	if len(results) == 0 {
		return Summary{}, ErrEmptyInput
	}
	s := newSummary(len(results))
	for _, name := range MetricNames(results) {
		values := MetricValues(results, name)
		if len(values) == 0 {
			continue
		}
		d, err := stats.Describe(values)
		if err != nil {
			return Summary{}, fmt.Errorf("describing %s: %w", name, err)
		}
		s.Mean[name] = d.Mean
		s.Median[name] = d.Median
		s.StdDev[name] = d.StdDev
		s.Min[name] = d.Min
		s.Max[name] = d.Max
	}
	return s, nil
}

// GroupAndSummarize partitions results by keyFn and summarizes each partition.
func (a *Aggregator) GroupAndSummarize(results []result.Normalized, keyFn func(result.Normalized) string) (map[string]Summary, error) {
	groups := GroupBy(results, keyFn)
	out := make(map[string]Summary, len(groups))

	if a.parallelism < 2 || len(groups) < 2 {
		for _, g := range groups {
			s, err := a.Summarize(g.Results)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", g.Key, err)
			}
			out[g.Key] = s
		}
		return out, nil
	}

	var (
		mu sync.Mutex
		eg errgroup.Group
	)
	eg.SetLimit(a.parallelism)
	for _, g := range groups {
		eg.Go(func() error {
			s, err := a.Summarize(g.Results)
			if err != nil {
				return fmt.Errorf("group %q: %w", g.Key, err)
			}
			mu.Lock()
			out[g.Key] = s
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Aggregate summarizes results by model, by scenario and overall.
func (a *Aggregator) Aggregate(results []result.Normalized) (Metrics, error) {
	if len(results) == 0 {
		return Metrics{}, ErrEmptyInput
	}
	byModel, err := a.GroupAndSummarize(results, ByModel)
	if err != nil {
		return Metrics{}, fmt.Errorf("grouping by model: %w", err)
	}
	byScenario, err := a.GroupAndSummarize(results, ByScenario)
	if err != nil {
		return Metrics{}, fmt.Errorf("grouping by scenario: %w", err)
	}
	overall, err := a.Summarize(results)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{ByModel: byModel, ByScenario: byScenario, Overall: overall}, nil
}

// MetricSummary describes the values of one metric across results. Results
// without the metric are skipped.
func (a *Aggregator) MetricSummary(results []result.Normalized, metric string) (stats.Description, error) {
	values := MetricValues(results, metric)
	if len(values) == 0 {
		return stats.Description{}, fmt.Errorf("%w: %q", ErrMetricNotFound, metric)
	}
	return stats.Describe(values)
}

func newSummary(count int) Summary {
	return Summary{
		Mean:   map[string]float64{},
		Median: map[string]float64{},
		StdDev: map[string]float64{},
		Min:    map[string]float64{},
		Max:    map[string]float64{},
		Count:  count,
	}
}
