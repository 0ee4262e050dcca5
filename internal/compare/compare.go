// Package compare evaluates models against each other on their shared
// metrics and ranks them.
package compare

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/signalnine/tribunal/internal/aggregate"
	"github.com/signalnine/tribunal/internal/result"
	"github.com/signalnine/tribunal/internal/stats"
)

// SignificanceThreshold is the absolute mean difference above which a metric
// difference is flagged significant. It is a fixed heuristic, not a
// hypothesis test.
const SignificanceThreshold = 0.1

// ErrBaselineNotFound is returned when no result belongs to the baseline model.
var ErrBaselineNotFound = errors.New("baseline model not found")

// Result is the comparison of two models. Winner is empty on a tie.
type Result struct {
	ModelA                  string             `json:"modelA"`
	ModelB                  string             `json:"modelB"`
	MetricDifferences       map[string]float64 `json:"metricDifferences"`
	StatisticalSignificance map[string]bool    `json:"statisticalSignificance"`
	Winner                  string             `json:"winner,omitempty"`
}

// Comparator compares models over normalized results. It holds no mutable
// state and is safe for concurrent use.
type Comparator struct {
	parallelism int
}

type Option func(*Comparator)

// WithParallelism bounds how many model pairs are compared concurrently.
func WithParallelism(n int) Option {
	return func(c *Comparator) { c.parallelism = n }
}

func New(opts ...Option) *Comparator {
	c := &Comparator{parallelism: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompareModels compares modelA against modelB. Only metrics with at least
// one value on both sides are reported; the difference is meanA - meanB.
func (c *Comparator) CompareModels(results []result.Normalized, modelA, modelB string) Result {
	var sideA, sideB []result.Normalized
	for _, r := range results {
		if r.ModelID == modelA {
			sideA = append(sideA, r)
		}
		if r.ModelID == modelB {
			sideB = append(sideB, r)
		}
	}

	out := Result{
		ModelA:                  modelA,
		ModelB:                  modelB,
		MetricDifferences:       map[string]float64{},
		StatisticalSignificance: map[string]bool{},
	}
	winsA, winsB := 0, 0
	for _, name := range aggregate.MetricNames(append(append([]result.Normalized{}, sideA...), sideB...)) {
		valuesA := aggregate.MetricValues(sideA, name)
		valuesB := aggregate.MetricValues(sideB, name)
		if len(valuesA) == 0 || len(valuesB) == 0 {
			continue
		}
		meanA, meanB := stats.Mean(valuesA), stats.Mean(valuesB)
		diff := meanA - meanB
		out.MetricDifferences[name] = diff
		out.StatisticalSignificance[name] = math.Abs(diff) > SignificanceThreshold
		switch {
		case meanA > meanB:
			winsA++
		case meanB > meanA:
			winsB++
		}
	}

	switch {
	case winsA > winsB:
		out.Winner = modelA
	case winsB > winsA:
		out.Winner = modelB
	}
	return out
}

// ComparePairwise compares every pair (i, j), i < j, of modelIDs. Results are
// ordered by i, then j.
func (c *Comparator) ComparePairwise(results []result.Normalized, modelIDs []string) []Result {
	type pair struct{ a, b string }
	var pairs []pair
	for i := 0; i < len(modelIDs); i++ {
		for j := i + 1; j < len(modelIDs); j++ {
			pairs = append(pairs, pair{modelIDs[i], modelIDs[j]})
		}
	}

	out := make([]Result, len(pairs))
	if c.parallelism < 2 || len(pairs) < 2 {
		for i, p := range pairs {
			out[i] = c.CompareModels(results, p.a, p.b)
		}
		return out
	}

	var eg errgroup.Group
	eg.SetLimit(c.parallelism)
	for i, p := range pairs {
		eg.Go(func() error {
			out[i] = c.CompareModels(results, p.a, p.b)
			return nil
		})
	}
	eg.Wait()
	return out
}

// CompareToBaseline compares the baseline model against every other model,
// in order of first appearance.
func (c *Comparator) CompareToBaseline(results []result.Normalized, baseline string) ([]Result, error) {
	found := false
	var others []string
	for _, id := range aggregate.ModelIDs(results) {
		if id == baseline {
			found = true
			continue
		}
		others = append(others, id)
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrBaselineNotFound, baseline)
	}

	out := make([]Result, 0, len(others))
	for _, id := range others {
		out = append(out, c.CompareModels(results, baseline, id))
	}
	return out, nil
}

// RankByMetric orders models by their mean value of metric, highest first.
// Models without the metric are left out; ties keep first-appearance order.
func (c *Comparator) RankByMetric(results []result.Normalized, metric string) []string {
	type scored struct {
		id   string
		mean float64
	}
	var ranked []scored
	for _, g := range aggregate.GroupBy(results, aggregate.ByModel) {
		values := aggregate.MetricValues(g.Results, metric)
		if len(values) == 0 {
			continue
		}
		ranked = append(ranked, scored{id: g.Key, mean: stats.Mean(values)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].mean > ranked[j].mean
	})

	ids := make([]string, len(ranked))
	for i, s := range ranked {
		ids[i] = s.id
	}
	return ids
}

// RankByWins orders every model named in comparisons by how many it won.
// Ties keep first-appearance order.
func (c *Comparator) RankByWins(comparisons []Result) []string {
	wins := map[string]int{}
	var ids []string
	add := func(id string) {
		if _, ok := wins[id]; !ok {
			wins[id] = 0
			ids = append(ids, id)
		}
	}
	for _, cmp := range comparisons {
		add(cmp.ModelA)
		add(cmp.ModelB)
	}
	for _, cmp := range comparisons {
		if cmp.Winner != "" {
			add(cmp.Winner)
			wins[cmp.Winner]++
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return wins[ids[i]] > wins[ids[j]]
	})
	return ids
}
