package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/tribunal/internal/aggregate"
	"github.com/signalnine/tribunal/internal/result"
	"github.com/signalnine/tribunal/internal/stats"
)

func fixture() []result.Normalized {
	return []result.Normalized{
		{ModelID: "A", ScenarioID: "s1", Metrics: map[string]float64{"acc": 0.9, "latency": 100}},
		{ModelID: "A", ScenarioID: "s2", Metrics: map[string]float64{"acc": 0.7}},
		{ModelID: "B", ScenarioID: "s1", Metrics: map[string]float64{"acc": 0.6, "latency": 300}},
		{ModelID: "B", ScenarioID: "s2", Metrics: map[string]float64{"acc": 0.8, "latency": 200}},
		{ModelID: "C", ScenarioID: "s1", Metrics: map[string]float64{}},
	}
}

func TestSummarize(t *testing.T) {
	s, err := aggregate.New().Summarize(fixture())
	require.NoError(t, err)

	assert.Equal(t, 5, s.Count)
	assert.InDelta(t, 0.75, s.Mean["acc"], 1e-9)
	assert.InDelta(t, 0.75, s.Median["acc"], 1e-9)
	assert.InDelta(t, 0.6, s.Min["acc"], 1e-9)
	assert.InDelta(t, 0.9, s.Max["acc"], 1e-9)
	assert.InDelta(t, 0.111803398874989, s.StdDev["acc"], 1e-9)

	// latency is only present in three results; stats use those values.
	assert.InDelta(t, 200, s.Mean["latency"], 1e-9)
	assert.InDelta(t, 200, s.Median["latency"], 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	_, err := aggregate.New().Summarize(nil)
	assert.ErrorIs(t, err, aggregate.ErrEmptyInput)
}

func TestSummarizeNoMetrics(t *testing.T) {
	s, err := aggregate.New().Summarize([]result.Normalized{{ModelID: "C", ScenarioID: "s1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count)
	assert.Empty(t, s.Mean)
	assert.Empty(t, s.Median)
	assert.Empty(t, s.StdDev)
	assert.Empty(t, s.Min)
	assert.Empty(t, s.Max)
}

func TestGroupAndSummarize(t *testing.T) {
	for _, par := range []int{1, 4} {
		agg := aggregate.New(aggregate.WithParallelism(par))
		groups, err := agg.GroupAndSummarize(fixture(), aggregate.ByModel)
		require.NoError(t, err)

		require.Len(t, groups, 3)
		total := 0
		for _, s := range groups {
			total += s.Count
		}
		assert.Equal(t, len(fixture()), total, "group counts must sum to the input size")

		assert.Equal(t, 2, groups["A"].Count)
		assert.InDelta(t, 0.8, groups["A"].Mean["acc"], 1e-9)
		assert.InDelta(t, 100, groups["A"].Mean["latency"], 1e-9)
		assert.InDelta(t, 250, groups["B"].Mean["latency"], 1e-9)

		_, hasAcc := groups["C"].Mean["acc"]
		assert.False(t, hasAcc, "metric absent from a group must not be zero-filled")
		assert.Equal(t, 1, groups["C"].Count)
	}
}

func TestAggregate(t *testing.T) {
	agg := aggregate.New(aggregate.WithParallelism(2))
	m, err := agg.Aggregate(fixture())
	require.NoError(t, err)

	assert.Len(t, m.ByModel, 3)
	assert.Len(t, m.ByScenario, 2)
	assert.Equal(t, 3, m.ByScenario["s1"].Count)
	assert.InDelta(t, 0.75, m.ByScenario["s2"].Mean["acc"], 1e-9)
	assert.Equal(t, 5, m.Overall.Count)

	again, err := agg.Aggregate(fixture())
	require.NoError(t, err)
	assert.Equal(t, m, again)
}

func TestAggregateEmpty(t *testing.T) {
	_, err := aggregate.New().Aggregate([]result.Normalized{})
	assert.ErrorIs(t, err, aggregate.ErrEmptyInput)
}

func TestMetricSummary(t *testing.T) {
	agg := aggregate.New()

	d, err := agg.MetricSummary(fixture(), "latency")
	require.NoError(t, err)
	assert.Equal(t, stats.Description{Mean: 200, Median: 200, StdDev: d.StdDev, Min: 100, Max: 300}, d)
	assert.InDelta(t, 81.64965809277261, d.StdDev, 1e-9)

	_, err = agg.MetricSummary(fixture(), "f1")
	assert.ErrorIs(t, err, aggregate.ErrMetricNotFound)
	assert.ErrorContains(t, err, `"f1"`)
}

func TestGroupBy(t *testing.T) {
	groups := aggregate.GroupBy(fixture(), aggregate.ByScenario)
	require.Len(t, groups, 2)
	assert.Equal(t, "s1", groups[0].Key)
	assert.Len(t, groups[0].Results, 3)
	assert.Equal(t, "s2", groups[1].Key)
	assert.Len(t, groups[1].Results, 2)

	assert.Empty(t, aggregate.GroupBy(nil, aggregate.ByModel))
}

func TestModelIDsAndMetricNames(t *testing.T) {
	assert.Equal(t, []string{"A", "B", "C"}, aggregate.ModelIDs(fixture()))
	assert.Equal(t, []string{"acc", "latency"}, aggregate.MetricNames(fixture()))
}
