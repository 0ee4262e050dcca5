package normalize

import (
	"sort"

	"github.com/signalnine/tribunal/internal/result"
)

// DefaultCompositeName is the metric Composite writes when no name is set.
const DefaultCompositeName = "composite"

// Composite adds a weighted mean of the weighted metrics to every result
// under name. A weighted metric a result lacks counts as zero. Nothing is
// added when the weights sum to zero.
func Composite(results []result.Normalized, name string, weights map[string]float64) {
	if name == "" {
		name = DefaultCompositeName
	}
	// Summation follows sorted metric names so the result is reproducible.
	names := make([]string, 0, len(weights))
	for metric := range weights {
		names = append(names, metric)
	}
	sort.Strings(names)

	var total float64
	for _, metric := range names {
		total += weights[metric]
	}
	if total == 0 {
		return
	}
	for i := range results {
		var sum float64
		for _, metric := range names {
			sum += results[i].Metrics[metric] * weights[metric]
		}
		if results[i].Metrics == nil {
			results[i].Metrics = map[string]float64{}
		}
		results[i].Metrics[name] = sum / total
	}
}
