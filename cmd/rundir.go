package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/signalnine/tribunal/internal/config"
	"github.com/signalnine/tribunal/internal/result"
)

// loadOptionalConfig loads the config file. A missing file is not an error
// when the caller can do without one; cfg is nil then.
func loadOptionalConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("no config file", "path", cfgFile)
		return nil, nil
	}
	return cfg, err
}

// resolveRunDir picks the run directory from args, falling back to the
// latest run under the configured results dir.
func resolveRunDir(args []string) (string, *config.Config, error) {
	cfg, err := loadOptionalConfig()
	if err != nil {
		return "", nil, err
	}
	var runDir string
	switch {
	case len(args) > 0:
		runDir = args[0]
	case cfg != nil:
		runDir = filepath.Join(cfg.Results.Dir, "latest")
	default:
		runDir = filepath.Join("results", "latest")
	}
	resolved, err := filepath.EvalSymlinks(runDir)
	if err != nil {
		return "", nil, fmt.Errorf("resolving run dir: %w", err)
	}
	if info, err := os.Stat(resolved); err != nil || !info.IsDir() {
		return "", nil, fmt.Errorf("run dir %s is not a directory", runDir)
	}
	return resolved, cfg, nil
}

// loadRun reads every stored result of a run.
func loadRun(args []string) ([]result.Normalized, *config.Config, error) {
	runDir, cfg, err := resolveRunDir(args)
	if err != nil {
		return nil, nil, err
	}
	results, err := result.Collect(runDir)
	if err != nil {
		return nil, nil, err
	}
	slog.Debug("loaded run", "dir", runDir, "results", len(results))
	return results, cfg, nil
}

func parallelism(cfg *config.Config) int {
	if cfg == nil {
		return 1
	}
	return cfg.Parallel
}
