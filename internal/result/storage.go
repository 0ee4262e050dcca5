package result

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	resultsSubdir = "results"
	manifestFile  = "manifest.json"
	maxLineBytes  = 16 << 20
)

// Manifest describes a fetched run.
type Manifest struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Sources   []SourceStat `json:"sources"`
}

// NewManifest returns a manifest with a fresh run id.
func NewManifest() *Manifest {
	return &Manifest{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

func CreateRunDir(baseDir string) (string, error) {
	runsDir := filepath.Join(baseDir, "runs")
	stamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	runDir := filepath.Join(runsDir, stamp)
	runDir, err := filepath.Abs(runDir)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(runDir, resultsSubdir), 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// ResultsFile is the path results fetched from source are stored at.
func ResultsFile(runDir, source string, c Compression) string {
	return filepath.Join(runDir, resultsSubdir, source+".jsonl"+c.Ext())
}

// WriteResults stores results as JSON lines and returns the file path.
func WriteResults(runDir, source string, results []Normalized, c Compression) (string, error) {
	dir := filepath.Join(runDir, resultsSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results dir: %w", err)
	}
	path := ResultsFile(runDir, source, c)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating results file: %w", err)
	}
	defer f.Close()

	zw, err := NewWriter(f, c)
	if err != nil {
		return "", err
	}
	bw := bufio.NewWriter(zw)
	enc := json.NewEncoder(bw)
	for i := range results {
		if err := enc.Encode(&results[i]); err != nil {
			return "", fmt.Errorf("encoding result %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return "", fmt.Errorf("writing results: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("flushing results: %w", err)
	}
	return path, f.Close()
}

// ReadResults reads a results file written by WriteResults.
func ReadResults(path string) ([]Normalized, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results: %w", err)
	}
	defer f.Close()

	r, err := NewReader(f, CompressionFor(path))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var results []Normalized
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var n Normalized
		if err := json.Unmarshal([]byte(text), &n); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", filepath.Base(path), line, err)
		}
		results = append(results, n)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	return results, nil
}

// Collect reads every stored results file of a run, in file name order.
func Collect(runDir string) ([]Normalized, error) {
	pattern := filepath.Join(runDir, resultsSubdir, "*.jsonl*")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	sort.Strings(files)

	var all []Normalized
	for _, path := range files {
		results, err := ReadResults(path)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
	}
	return all, nil
}

func WriteManifest(runDir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(runDir, manifestFile), data, 0o644)
}

func ReadManifest(runDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(runDir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

func ReadTrialMeta(path string) (*TrialMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading meta: %w", err)
	}
	var meta TrialMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing meta: %w", err)
	}
	return &meta, nil
}
