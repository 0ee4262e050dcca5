package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/signalnine/tribunal/internal/config"
	"github.com/signalnine/tribunal/internal/pricing"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config file and the local files it references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if _, err := cfg.LoadSecrets(); err != nil {
				return fmt.Errorf("loading secrets: %w", err)
			}
			if _, err := pricing.Load(cfg.Pricing); err != nil {
				return err
			}

			var problems int
			out := cmd.OutOrStdout()
			for _, s := range cfg.Sources {
				local := s.Path
				if s.Kind == config.KindDocker {
					local = s.Mount
				}
				if local == "" {
					fmt.Fprintf(out, "  %s: ok\n", s.Name)
					continue
				}
				if _, err := os.Stat(local); err != nil {
					fmt.Fprintf(out, "  %s: %v\n", s.Name, err)
					problems++
					continue
				}
				fmt.Fprintf(out, "  %s: ok\n", s.Name)
			}
			if problems > 0 {
				return fmt.Errorf("%d of %d sources reference missing paths", problems, len(cfg.Sources))
			}
			fmt.Fprintf(out, "%s is valid (%d sources)\n", cfgFile, len(cfg.Sources))
			return nil
		},
	}
}
