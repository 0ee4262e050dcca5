package compare_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/signalnine/tribunal/internal/compare"
)

func TestRenderSummary(t *testing.T) {
	comparisons := []compare.Result{
		{
			ModelA:                  "A",
			ModelB:                  "B",
			MetricDifferences:       map[string]float64{"latency": -12.5, "acc": 0.2},
			StatisticalSignificance: map[string]bool{"latency": true, "acc": false},
			Winner:                  "A",
		},
		{
			ModelA:                  "A",
			ModelB:                  "C",
			MetricDifferences:       map[string]float64{"acc": 0},
			StatisticalSignificance: map[string]bool{"acc": false},
		},
	}

	want := `Model Comparison Summary
==================================================

Comparison 1: A vs B
--------------------------------------------------
Metric Differences:
  acc: 0.2000
  latency: -12.5000
Winner: A
Statistical Significance:
  acc: No
  latency: Yes

Comparison 2: A vs C
--------------------------------------------------
Metric Differences:
  acc: 0.0000
Statistical Significance:
  acc: No

`
	assert.Equal(t, want, compare.New().RenderSummary(comparisons))
}

func TestRenderSummaryEmpty(t *testing.T) {
	want := "Model Comparison Summary\n" +
		"==================================================\n\n"
	assert.Equal(t, want, compare.New().RenderSummary(nil))
}

func TestRenderSummaryFromComparison(t *testing.T) {
	c := compare.New()
	out := c.RenderSummary([]compare.Result{c.CompareModels(twoModels(), "A", "B")})
	assert.Contains(t, out, "Comparison 1: A vs B\n")
	assert.Contains(t, out, "  acc: 0.2000\n")
	assert.Contains(t, out, "Winner: A\n")
	assert.Contains(t, out, "  acc: Yes\n")
}
