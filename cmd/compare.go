package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/signalnine/tribunal/internal/aggregate"
	"github.com/signalnine/tribunal/internal/compare"
)

var errUnknownModel = errors.New("unknown model")

var (
	flagModels        []string
	flagBaseline      string
	flagCompareFormat string
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [run-dir]",
		Short: "Compare models pairwise or against a baseline",
		Long: `Compare models on the metrics they share.

With --models, every pair of the listed models is compared in order. With
--baseline, the baseline is compared against every other model. Without
either, the config's baseline is used if set, otherwise every model in the
run is compared pairwise.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompare,
	}
	cmd.Flags().StringSliceVar(&flagModels, "models", nil, "models to compare pairwise")
	cmd.Flags().StringVar(&flagBaseline, "baseline", "", "compare this model against all others")
	cmd.Flags().StringVar(&flagCompareFormat, "format", "text", "output format (text, json)")
	cmd.MarkFlagsMutuallyExclusive("models", "baseline")
	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	if err := checkTextOrJSON(flagCompareFormat); err != nil {
		return err
	}
	results, cfg, err := loadRun(args)
	if err != nil {
		return err
	}
	cmp := compare.New(compare.WithParallelism(parallelism(cfg)))
	known := aggregate.ModelIDs(results)

	baseline := flagBaseline
	if baseline == "" && len(flagModels) == 0 && cfg != nil {
		baseline = cfg.Baseline
	}

	var comparisons []compare.Result
	if baseline != "" {
		comparisons, err = cmp.CompareToBaseline(results, baseline)
		if err != nil {
			return withHint(err, baseline, known)
		}
	} else {
		ids := flagModels
		if len(ids) == 0 {
			ids = known
		}
		if err := checkModels(ids, known); err != nil {
			return err
		}
		if len(ids) < 2 {
			return fmt.Errorf("need at least two models to compare, have %d", len(ids))
		}
		comparisons = cmp.ComparePairwise(results, ids)
	}

	out := cmd.OutOrStdout()
	if flagCompareFormat == "json" {
		return writeJSON(out, comparisons)
	}
	_, err = io.WriteString(out, cmp.RenderSummary(comparisons))
	return err
}

func checkModels(ids, known []string) error {
	set := make(map[string]bool, len(known))
	for _, id := range known {
		set[id] = true
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !set[id] {
			return withHint(fmt.Errorf("%w: %q", errUnknownModel, id), id, known)
		}
		if seen[id] {
			return fmt.Errorf("model %q listed more than once", id)
		}
		seen[id] = true
	}
	return nil
}

func checkTextOrJSON(format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q: must be text or json", format)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
