package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/signalnine/tribunal/internal/config"
	"github.com/signalnine/tribunal/internal/normalize"
	"github.com/signalnine/tribunal/internal/pricing"
	"github.com/signalnine/tribunal/internal/result"
	"github.com/signalnine/tribunal/internal/runner"
	"github.com/signalnine/tribunal/internal/source"
)

var errUnknownSource = errors.New("unknown source")

var (
	flagSources  []string
	flagParallel int
)

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Retrieve results from every configured source into a new run",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}
	cmd.Flags().StringSliceVar(&flagSources, "source", nil, "fetch only the named sources")
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "max concurrent sources (default from config)")
	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	selected, err := selectSources(cfg, flagSources)
	if err != nil {
		return err
	}

	secrets, err := cfg.LoadSecrets()
	if err != nil {
		return fmt.Errorf("loading secrets: %w", err)
	}
	table, err := pricing.Load(cfg.Pricing)
	if err != nil {
		return err
	}
	deps := source.Deps{Secrets: secrets, Pricing: table, Logger: slog.Default()}

	var sources []source.Source
	for _, sc := range selected {
		src, err := source.New(sc, deps)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}

	runDir, err := result.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run directory: %s\n", runDir)

	parallel := cfg.Parallel
	if flagParallel > 0 {
		parallel = flagParallel
	}
	outcomes := runner.Fetch(cmd.Context(), sources, parallel, slog.Default())
	for i := range outcomes {
		normalize.Composite(outcomes[i].Results, cfg.Composite.Name, cfg.Composite.Weights)
	}
	m, err := runner.Store(runDir, outcomes, result.Compression(cfg.Results.Compress))

	if m != nil {
		for _, s := range m.Sources {
			if s.Error != "" {
				fmt.Fprintf(out, "  %s: ERROR: %s\n", s.Name, s.Error)
				continue
			}
			fmt.Fprintf(out, "  %s: %d results\n", s.Name, s.Results)
		}
	}
	return err
}

// selectSources filters the configured sources to names, keeping config
// order. No names selects every source.
func selectSources(cfg *config.Config, names []string) ([]config.Source, error) {
	if len(names) == 0 {
		return cfg.Sources, nil
	}
	all := make([]string, len(cfg.Sources))
	for i, s := range cfg.Sources {
		all[i] = s.Name
	}
	want := map[string]bool{}
	for _, n := range names {
		if _, ok := cfg.Lookup(n); !ok {
			return nil, withHint(fmt.Errorf("%w: %q", errUnknownSource, n), n, all)
		}
		want[n] = true
	}
	var selected []config.Source
	for _, s := range cfg.Sources {
		if want[s.Name] {
			selected = append(selected, s)
		}
	}
	return selected, nil
}
