package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/signalnine/tribunal/internal/config"
	"github.com/signalnine/tribunal/internal/result"
)

const maxPages = 1000

// maxBodyBytes caps a single response body before decompression.
var maxBodyBytes int64 = 256 << 20

// HTTP downloads a results document from a URL.
type HTTP struct {
	cfg     config.Source
	secrets map[string]string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

func newHTTP(cfg config.Source, secrets map[string]string, client *http.Client, logger *slog.Logger) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	return &HTTP{
		cfg:     cfg,
		secrets: secrets,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

func (h *HTTP) Name() string { return h.cfg.Name }
func (h *HTTP) Kind() string { return config.KindHTTP }

// Fetch downloads the configured URL and every page it links to with a
// Link rel="next" header, waiting on the rate limiter before each request.
func (h *HTTP) Fetch(ctx context.Context) ([]result.Normalized, error) {
	var all []result.Normalized
	next := h.cfg.URL
	for page := 1; next != ""; page++ {
		if page > maxPages {
			return nil, fmt.Errorf("%s: more than %d pages", h.cfg.URL, maxPages)
		}
		results, following, err := h.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
		next = following
	}
	return all, nil
}

func (h *HTTP) fetchPage(ctx context.Context, pageURL string) ([]result.Normalized, string, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}
	for k, v := range h.cfg.Headers {
		req.Header.Set(k, config.Expand(v, h.secrets))
	}
	req.Header.Set("Accept", "application/json, application/x-ndjson, application/yaml")
	// Compressed bodies are decoded here, not by the transport.
	req.Header.Set("Accept-Encoding", "gzip, zstd")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("requesting %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("requesting %s: status %d: %s", pageURL, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	name := documentName(pageURL, resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", pageURL, err)
	}
	if int64(len(body)) > maxBodyBytes {
		return nil, "", fmt.Errorf("%s: response body exceeds %d bytes", pageURL, maxBodyBytes)
	}
	results, err := decodeStream(name, bytes.NewReader(body), bodyCompression(pageURL, resp.Header.Get("Content-Encoding")))
	if err != nil {
		return nil, "", err
	}
	h.logger.Debug("downloaded results", "url", pageURL, "results", len(results), "elapsed", time.Since(start))
	return results, nextLink(resp), nil
}

// nextLink resolves the rel="next" target of the response's Link header.
func nextLink(resp *http.Response) string {
	for _, header := range resp.Header.Values("Link") {
		for _, link := range strings.Split(header, ",") {
			target, params, ok := strings.Cut(strings.TrimSpace(link), ";")
			if !ok || !strings.Contains(strings.ReplaceAll(params, " ", ""), `rel="next"`) {
				continue
			}
			target = strings.Trim(strings.TrimSpace(target), "<>")
			ref, err := url.Parse(target)
			if err != nil {
				return ""
			}
			return resp.Request.URL.ResolveReference(ref).String()
		}
	}
	return ""
}

// documentName gives the body a file name whose extension selects the
// parser: the URL path's own name when it has one, else one derived from
// the content type.
func documentName(rawURL, contentType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		base := path.Base(u.Path)
		if strings.Contains(result.TrimCompression(base), ".") {
			return base
		}
	}
	switch {
	case strings.Contains(contentType, "ndjson"), strings.Contains(contentType, "jsonl"):
		return "body.jsonl"
	case strings.Contains(contentType, "yaml"):
		return "body.yaml"
	case strings.Contains(contentType, "json"):
		return "body.json"
	default:
		return "body"
	}
}

func bodyCompression(rawURL, contentEncoding string) result.Compression {
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip":
		return result.CompressionGzip
	case "zstd":
		return result.CompressionZstd
	}
	if u, err := url.Parse(rawURL); err == nil {
		return result.CompressionFor(u.Path)
	}
	return result.CompressionNone
}
