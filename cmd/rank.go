package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/tribunal/internal/aggregate"
	"github.com/signalnine/tribunal/internal/compare"
)

var (
	flagMetric     string
	flagByWins     bool
	flagRankFormat string
)

type rankEntry struct {
	Rank  int      `json:"rank"`
	Model string   `json:"model"`
	Mean  *float64 `json:"mean,omitempty"`
	Wins  *int     `json:"wins,omitempty"`
}

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank [run-dir]",
		Short: "Rank models by a metric or by pairwise wins",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRank,
	}
	cmd.Flags().StringVar(&flagMetric, "metric", "", "rank by the mean of this metric, highest first")
	cmd.Flags().BoolVar(&flagByWins, "by-wins", false, "rank by wins across all pairwise comparisons")
	cmd.Flags().StringVar(&flagRankFormat, "format", "text", "output format (text, json)")
	cmd.MarkFlagsMutuallyExclusive("metric", "by-wins")
	cmd.MarkFlagsOneRequired("metric", "by-wins")
	return cmd
}

func runRank(cmd *cobra.Command, args []string) error {
	if err := checkTextOrJSON(flagRankFormat); err != nil {
		return err
	}
	results, cfg, err := loadRun(args)
	if err != nil {
		return err
	}
	cmp := compare.New(compare.WithParallelism(parallelism(cfg)))
	agg := aggregate.New()

	var entries []rankEntry
	if flagByWins {
		comparisons := cmp.ComparePairwise(results, aggregate.ModelIDs(results))
		wins := map[string]int{}
		for _, c := range comparisons {
			if c.Winner != "" {
				wins[c.Winner]++
			}
		}
		for i, id := range cmp.RankByWins(comparisons) {
			n := wins[id]
			entries = append(entries, rankEntry{Rank: i + 1, Model: id, Wins: &n})
		}
	} else {
		ids := cmp.RankByMetric(results, flagMetric)
		if len(ids) == 0 {
			err := fmt.Errorf("%w: %q", aggregate.ErrMetricNotFound, flagMetric)
			return withHint(err, flagMetric, aggregate.MetricNames(results))
		}
		groups := aggregate.GroupBy(results, aggregate.ByModel)
		byModel := make(map[string]int, len(groups))
		for i, g := range groups {
			byModel[g.Key] = i
		}
		for i, id := range ids {
			d, err := agg.MetricSummary(groups[byModel[id]].Results, flagMetric)
			if err != nil {
				return fmt.Errorf("summarizing %s: %w", id, err)
			}
			mean := d.Mean
			entries = append(entries, rankEntry{Rank: i + 1, Model: id, Mean: &mean})
		}
	}

	out := cmd.OutOrStdout()
	if flagRankFormat == "json" {
		return writeJSON(out, entries)
	}
	for _, e := range entries {
		switch {
		case e.Mean != nil:
			fmt.Fprintf(out, "%d. %s (%s: %.4f)\n", e.Rank, e.Model, flagMetric, *e.Mean)
		case e.Wins != nil:
			fmt.Fprintf(out, "%d. %s (%d wins)\n", e.Rank, e.Model, *e.Wins)
		}
	}
	return nil
}
