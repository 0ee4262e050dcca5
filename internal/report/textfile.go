package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/signalnine/tribunal/internal/aggregate"
)

// WriteTextfile exports the mean of every metric per group, and each group's
// result count, in the Prometheus text format for node_exporter's textfile
// collector.
func WriteTextfile(path string, m aggregate.Metrics) error {
	reg := prometheus.NewRegistry()
	means := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tribunal_metric_mean",
			Help: "Mean value of a metric within a result group.",
		},
		[]string{"group", "key", "metric"},
	)
	counts := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tribunal_group_results",
			Help: "Number of results in a result group.",
		},
		[]string{"group", "key"},
	)
	reg.MustRegister(means, counts)

	record := func(group, key string, s aggregate.Summary) {
		counts.WithLabelValues(group, key).Set(float64(s.Count))
		for metric, v := range s.Mean {
			means.WithLabelValues(group, key, metric).Set(v)
		}
	}
	for key, s := range m.ByModel {
		record(GroupModel, key, s)
	}
	for key, s := range m.ByScenario {
		record(GroupScenario, key, s)
	}
	record(GroupOverall, GroupOverall, m.Overall)

	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("writing textfile: %w", err)
	}
	return nil
}
