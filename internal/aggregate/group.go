package aggregate

import (
	"sort"

	"github.com/signalnine/tribunal/internal/result"
)

// Group is one partition produced by GroupBy.
type Group[K comparable] struct {
	Key     K
	Results []result.Normalized
}

// GroupBy partitions results by key, returning groups in order of first
// appearance. Every group holds at least one result.
func GroupBy[K comparable](results []result.Normalized, keyFn func(result.Normalized) K) []Group[K] {
	index := map[K]int{}
	var groups []Group[K]
	for _, r := range results {
		k := keyFn(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K]{Key: k})
		}
		groups[i].Results = append(groups[i].Results, r)
	}
	return groups
}

func ByModel(r result.Normalized) string    { return r.ModelID }
func ByScenario(r result.Normalized) string { return r.ScenarioID }

// MetricNames returns the union of metric names in results, sorted.
func MetricNames(results []result.Normalized) []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range results {
		for name := range r.Metrics {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// MetricValues collects the values of metric from the results that have it.
func MetricValues(results []result.Normalized, metric string) []float64 {
	var values []float64
	for _, r := range results {
		if v, ok := r.Metrics[metric]; ok {
			values = append(values, v)
		}
	}
	return values
}

// ModelIDs returns the distinct model ids in order of first appearance.
func ModelIDs(results []result.Normalized) []string {
	groups := GroupBy(results, ByModel)
	ids := make([]string, len(groups))
	for i, g := range groups {
		ids[i] = g.Key
	}
	return ids
}
