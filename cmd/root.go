package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	cfgFile       string
	flagDebug     bool
	flagLogFormat string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tribunal",
		Short:        "Collect experiment results and compare model performance",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "tribunal.yaml", "config file path")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format (text, json)")
	root.AddCommand(newFetchCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newRankCmd())
	root.AddCommand(newValidateCmd())
	return root
}

func setupLogging(w io.Writer) error {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if flagDebug {
		opts.Level = slog.LevelDebug
	}
	var h slog.Handler
	switch flagLogFormat {
	case "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", flagLogFormat)
	}
	slog.SetDefault(slog.New(h))
	return nil
}
