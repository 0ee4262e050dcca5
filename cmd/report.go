package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/tribunal/internal/aggregate"
	"github.com/signalnine/tribunal/internal/report"
)

var (
	flagFormat       string
	flagGroup        string
	flagPromTextfile string
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [run-dir]",
		Short: "Summarize the metrics of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, cfg, err := loadRun(args)
			if err != nil {
				return err
			}
			agg := aggregate.New(aggregate.WithParallelism(parallelism(cfg)))

			opts := report.Options{Format: flagFormat, Group: flagGroup}
			if err := report.Generate(cmd.Context(), agg, results, opts, cmd.OutOrStdout()); err != nil {
				return err
			}

			if flagPromTextfile != "" {
				m, err := agg.Aggregate(results)
				if err != nil {
					return err
				}
				if err := report.WriteTextfile(flagPromTextfile, m); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", flagPromTextfile)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", report.FormatTable, "output format (table, markdown, json, html)")
	cmd.Flags().StringVar(&flagGroup, "group", report.GroupModel, "group results by (model, scenario, overall)")
	cmd.Flags().StringVar(&flagPromTextfile, "prom-textfile", "", "also write Prometheus textfile metrics to this path")
	return cmd
}
