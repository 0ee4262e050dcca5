package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/signalnine/tribunal/internal/config"
	"github.com/signalnine/tribunal/internal/docker"
	"github.com/signalnine/tribunal/internal/result"
)

// DataMount is where a docker source's mount directory appears in the
// exporter container.
const DataMount = "/data"

// Runner runs a container to completion. docker.RunContainer is the default.
type Runner func(ctx context.Context, opts *docker.RunOpts) (*docker.RunResult, error)

// Docker runs an exporter image that prints results to stdout.
type Docker struct {
	cfg     config.Source
	secrets map[string]string
	logger  *slog.Logger
	run     Runner
}

func (d *Docker) Name() string { return d.cfg.Name }
func (d *Docker) Kind() string { return config.KindDocker }

func (d *Docker) Fetch(ctx context.Context) ([]result.Normalized, error) {
	opts := &docker.RunOpts{
		Image:   d.cfg.Image,
		Command: d.cfg.Command,
		Env:     make(map[string]string, len(d.cfg.Env)),
		Timeout: time.Duration(d.cfg.TimeoutMinutes) * time.Minute,
	}
	for k, v := range d.cfg.Env {
		opts.Env[k] = config.Expand(v, d.secrets)
	}
	if d.cfg.Mount != "" {
		abs, err := filepath.Abs(d.cfg.Mount)
		if err != nil {
			return nil, fmt.Errorf("resolving mount %s: %w", d.cfg.Mount, err)
		}
		opts.Mounts = append(opts.Mounts, docker.Mount{Source: abs, Target: DataMount, ReadOnly: true})
	}

	run := d.run
	if run == nil {
		run = docker.RunContainer
	}
	res, err := run(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", d.cfg.Image, err)
	}
	if res.TimedOut {
		return nil, fmt.Errorf("running %s: timed out after %s", d.cfg.Image, opts.Timeout)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("running %s: exit code %d: %s", d.cfg.Image, res.ExitCode, tail(res.Output, 512))
	}
	d.logger.Debug("exporter finished", "image", d.cfg.Image, "duration", res.Duration, "bytes", len(res.Output))

	return decodeStream("stdout", bytes.NewReader(res.Output), result.CompressionNone)
}

func tail(b []byte, n int) string {
	b = bytes.TrimSpace(b)
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
