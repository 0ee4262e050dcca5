package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/signalnine/tribunal/internal/aggregate"
	"github.com/signalnine/tribunal/internal/config"
	"github.com/signalnine/tribunal/internal/result"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [run-dir]",
		Short: "List configured sources and the models and scenarios of a run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			runDir, cfg, err := resolveRunDir(args)
			if err != nil {
				return err
			}
			if cfg != nil {
				listSources(out, cfg)
				fmt.Fprintln(out)
			}

			fmt.Fprintf(out, "Run: %s\n", runDir)
			if m, err := result.ReadManifest(runDir); err == nil {
				fmt.Fprintf(out, "  id: %s (fetched %s)\n", m.ID, m.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			} else {
				slog.Debug("no manifest", "dir", runDir, "err", err)
			}
			results, err := result.Collect(runDir)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "\nModels:")
			for _, g := range aggregate.GroupBy(results, aggregate.ByModel) {
				fmt.Fprintf(out, "  - %s (%d results)\n", g.Key, len(g.Results))
			}
			fmt.Fprintln(out, "\nScenarios:")
			for _, g := range aggregate.GroupBy(results, aggregate.ByScenario) {
				fmt.Fprintf(out, "  - %s (%d results)\n", g.Key, len(g.Results))
			}
			return nil
		},
	}
}

func listSources(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Sources:")
	for _, s := range cfg.Sources {
		switch s.Kind {
		case config.KindDir:
			fmt.Fprintf(out, "  - %s (dir: %s, format: %s)\n", s.Name, s.Path, s.Format)
		case config.KindHTTP:
			fmt.Fprintf(out, "  - %s (http: %s)\n", s.Name, s.URL)
		case config.KindDocker:
			fmt.Fprintf(out, "  - %s (docker: %s)\n", s.Name, s.Image)
		}
	}
}
