// Package source retrieves experiment outputs and normalizes them.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/signalnine/tribunal/internal/config"
	"github.com/signalnine/tribunal/internal/normalize"
	"github.com/signalnine/tribunal/internal/pricing"
	"github.com/signalnine/tribunal/internal/result"
)

// Source retrieves normalized results from one configured location.
type Source interface {
	Name() string
	Kind() string
	Fetch(ctx context.Context) ([]result.Normalized, error)
}

// Deps are the shared collaborators sources are built with.
type Deps struct {
	Secrets    map[string]string
	Pricing    *pricing.Table
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New builds the source described by cfg.
func New(cfg config.Source, deps Deps) (Source, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	logger := deps.Logger.With("source", cfg.Name)
	switch cfg.Kind {
	case config.KindDir:
		return &Dir{cfg: cfg, pricing: deps.Pricing, logger: logger}, nil
	case config.KindHTTP:
		return newHTTP(cfg, deps.Secrets, deps.HTTPClient, logger), nil
	case config.KindDocker:
		return &Docker{cfg: cfg, secrets: deps.Secrets, logger: logger}, nil
	default:
		return nil, fmt.Errorf("source %q: unknown kind %q", cfg.Name, cfg.Kind)
	}
}

// decodeStream decompresses r per c and normalizes the records it holds.
// name picks the document syntax.
func decodeStream(name string, r io.Reader, c result.Compression) ([]result.Normalized, error) {
	zr, err := result.NewReader(r, c)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	raws, err := normalize.ParseDocument(result.TrimCompression(name), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	results, err := normalize.Records(raws)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return results, nil
}
