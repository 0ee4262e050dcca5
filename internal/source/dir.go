package source

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/signalnine/tribunal/internal/config"
	"github.com/signalnine/tribunal/internal/normalize"
	"github.com/signalnine/tribunal/internal/pricing"
	"github.com/signalnine/tribunal/internal/result"
	"github.com/signalnine/tribunal/internal/usage"
)

var recordExts = map[string]bool{
	".json":   true,
	".jsonl":  true,
	".ndjson": true,
	".yaml":   true,
	".yml":    true,
}

// Dir reads results from files under a local directory.
type Dir struct {
	cfg     config.Source
	pricing *pricing.Table
	logger  *slog.Logger
}

func (d *Dir) Name() string { return d.cfg.Name }
func (d *Dir) Kind() string { return config.KindDir }

func (d *Dir) Fetch(ctx context.Context) ([]result.Normalized, error) {
	root, err := filepath.EvalSymlinks(d.cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", d.cfg.Path, err)
	}
	if d.cfg.Format == config.FormatMeta {
		return d.fetchTrials(ctx, root)
	}
	return d.fetchRecords(ctx, root)
}

func (d *Dir) fetchRecords(ctx context.Context, root string) ([]result.Normalized, error) {
	var all []result.Normalized
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() || !recordExts[strings.ToLower(filepath.Ext(result.TrimCompression(path)))] {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		results, err := decodeStream(path, f, result.CompressionFor(path))
		if err != nil {
			return err
		}
		d.logger.Debug("read records", "file", path, "results", len(results))
		all = append(all, results...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return all, nil
}

// fetchTrials reads a trials tree of meta.json files. Unreadable trials are
// logged and skipped.
func (d *Dir) fetchTrials(ctx context.Context, root string) ([]result.Normalized, error) {
	var all []result.Normalized
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.Name() != "meta.json" {
			return nil
		}
		meta, err := result.ReadTrialMeta(path)
		if err != nil {
			d.logger.Warn("skipping trial", "path", path, "err", err)
			return nil
		}
		n := normalize.FromTrialMeta(meta)
		if d.pricing != nil {
			logPath := filepath.Join(filepath.Dir(path), usage.LogFile)
			if records, err := usage.ParseLog(logPath); err == nil {
				normalize.PriceUsage(&n, records, d.pricing)
			}
		}
		all = append(all, n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return all, nil
}
