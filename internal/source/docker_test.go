package source

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/tribunal/internal/config"
	"github.com/signalnine/tribunal/internal/docker"
)

func newTestDocker(cfg config.Source, secrets map[string]string, run Runner) *Docker {
	return &Docker{cfg: cfg, secrets: secrets, logger: slog.Default(), run: run}
}

func TestDockerFetch(t *testing.T) {
	mountDir := t.TempDir()
	var got *docker.RunOpts
	d := newTestDocker(config.Source{
		Name:           "exporter",
		Kind:           config.KindDocker,
		Image:          "example/exporter:1",
		Command:        []string{"export", "--all"},
		Env:            map[string]string{"API_KEY": "${KEY}"},
		Mount:          mountDir,
		TimeoutMinutes: 3,
	}, map[string]string{"KEY": "abc"}, func(ctx context.Context, opts *docker.RunOpts) (*docker.RunResult, error) {
		got = opts
		return &docker.RunResult{
			Output: []byte("{\"model\":\"A\",\"metrics\":{\"acc\":1}}\r\n{\"model\":\"B\",\"metrics\":{\"acc\":0}}\r\n"),
		}, nil
	})

	results, err := d.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].ModelID)
	assert.Equal(t, "B", results[1].ModelID)

	require.NotNil(t, got)
	assert.Equal(t, "example/exporter:1", got.Image)
	assert.Equal(t, []string{"export", "--all"}, got.Command)
	assert.Equal(t, map[string]string{"API_KEY": "abc"}, got.Env)
	assert.Equal(t, 3*time.Minute, got.Timeout)
	abs, err := filepath.Abs(mountDir)
	require.NoError(t, err)
	assert.Equal(t, []docker.Mount{{Source: abs, Target: DataMount, ReadOnly: true}}, got.Mounts)
}

func TestDockerFetchFailures(t *testing.T) {
	cases := map[string]struct {
		res     *docker.RunResult
		err     error
		wantErr string
	}{
		"runner error": {err: errors.New("daemon unavailable"), wantErr: "daemon unavailable"},
		"timeout":      {res: &docker.RunResult{ExitCode: 124, TimedOut: true}, wantErr: "timed out"},
		"exit code":    {res: &docker.RunResult{ExitCode: 2, Output: []byte("boom\n")}, wantErr: "exit code 2: boom"},
		"bad output":   {res: &docker.RunResult{Output: []byte("not json")}, wantErr: "stdout"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			d := newTestDocker(config.Source{Name: "exporter", Image: "img", TimeoutMinutes: 1}, nil,
				func(ctx context.Context, opts *docker.RunOpts) (*docker.RunResult, error) {
					return tc.res, tc.err
				})
			_, err := d.Fetch(context.Background())
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestTail(t *testing.T) {
	assert.Equal(t, "abc", tail([]byte("  abc\n"), 10))
	assert.Equal(t, "cde", tail([]byte("abcde"), 3))
}
