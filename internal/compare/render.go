package compare

import (
	"fmt"
	"sort"
	"strings"
)

// RenderSummary formats comparisons as the plain-text comparison report.
// Metrics are listed in name order.
func (c *Comparator) RenderSummary(comparisons []Result) string {
	var b strings.Builder
	b.WriteString("Model Comparison Summary\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i, cmp := range comparisons {
		fmt.Fprintf(&b, "Comparison %d: %s vs %s\n", i+1, cmp.ModelA, cmp.ModelB)
		b.WriteString(strings.Repeat("-", 50) + "\n")

		b.WriteString("Metric Differences:\n")
		for _, name := range sortedKeys(cmp.MetricDifferences) {
			fmt.Fprintf(&b, "  %s: %.4f\n", name, cmp.MetricDifferences[name])
		}
		if cmp.Winner != "" {
			fmt.Fprintf(&b, "Winner: %s\n", cmp.Winner)
		}

		b.WriteString("Statistical Significance:\n")
		for _, name := range sortedKeys(cmp.StatisticalSignificance) {
			flag := "No"
			if cmp.StatisticalSignificance[name] {
				flag = "Yes"
			}
			fmt.Fprintf(&b, "  %s: %s\n", name, flag)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
