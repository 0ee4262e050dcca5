// Package normalize turns raw experiment records into result.Normalized.
package normalize

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/signalnine/tribunal/internal/result"
)

// DefaultScenario is used for records that name no scenario.
const DefaultScenario = "default"

var ErrMissingModel = errors.New("record has no model id")

// record is the canonical shape a raw record is decoded into.
type record struct {
	ModelID    string             `mapstructure:"model_id"`
	ScenarioID string             `mapstructure:"scenario_id"`
	Metrics    map[string]float64 `mapstructure:"metrics"`
	Metadata   map[string]any     `mapstructure:"metadata"`
}

type alias struct {
	key  string
	rank int
}

// aliases maps squashed key spellings to canonical record keys. When a
// record carries several spellings of one key, the exact canonical key wins,
// then the lowest rank, then the lexically smallest raw key.
var aliases = map[string]alias{
	"modelid":      {"model_id", 1},
	"model":        {"model_id", 2},
	"orchestrator": {"model_id", 3},
	"scenarioid":   {"scenario_id", 1},
	"scenario":     {"scenario_id", 2},
	"task":         {"scenario_id", 3},
	"metrics":      {"metrics", 1},
	"scores":       {"metrics", 2},
	"metadata":     {"metadata", 1},
	"meta":         {"metadata", 2},
}

func canonical(raw map[string]any) map[string]any {
	type pick struct {
		rank int
		from string
	}
	picked := make(map[string]pick, len(raw))
	canon := make(map[string]any, len(raw))
	for k, v := range raw {
		a, ok := aliases[squash(k)]
		if !ok {
			continue
		}
		rank := a.rank
		if k == a.key {
			rank = 0
		}
		if p, seen := picked[a.key]; seen && (p.rank < rank || p.rank == rank && p.from < k) {
			continue
		}
		picked[a.key] = pick{rank: rank, from: k}
		canon[a.key] = v
	}

	// A null metric is absent, not zero.
	if m, ok := canon["metrics"].(map[string]any); ok {
		metrics := make(map[string]any, len(m))
		for name, v := range m {
			if v != nil {
				metrics[name] = v
			}
		}
		canon["metrics"] = metrics
	}
	return canon
}

// Record decodes one raw record. Numeric strings and booleans in metrics are
// converted to numbers.
func Record(raw map[string]any) (result.Normalized, error) {
	canon := canonical(raw)

	var rec record
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &rec,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return result.Normalized{}, fmt.Errorf("creating decoder: %w", err)
	}
	if err := dec.Decode(canon); err != nil {
		return result.Normalized{}, fmt.Errorf("decoding record: %w", err)
	}

	if rec.ModelID == "" {
		return result.Normalized{}, ErrMissingModel
	}
	if rec.ScenarioID == "" {
		rec.ScenarioID = DefaultScenario
	}
	if rec.Metrics == nil {
		rec.Metrics = map[string]float64{}
	}
	return result.Normalized{
		ModelID:    rec.ModelID,
		ScenarioID: rec.ScenarioID,
		Metrics:    rec.Metrics,
		Metadata:   rec.Metadata,
	}, nil
}

// Records decodes raw records, stopping at the first bad one.
func Records(raws []map[string]any) ([]result.Normalized, error) {
	out := make([]result.Normalized, 0, len(raws))
	for i, raw := range raws {
		n, err := Record(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// ParseDocument splits a document into raw records. name selects the
// syntax by extension: .jsonl/.ndjson are one record per line, .yaml/.yml
// and .json hold either one record or a list of them. Any other name is
// sniffed as JSON, falling back to JSON lines.
func ParseDocument(name string, data []byte) ([]map[string]any, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jsonl", ".ndjson":
		return parseJSONLines(data)
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing yaml: %w", err)
		}
		return records(doc)
	case ".json":
		return parseJSON(data)
	default:
		if raws, err := parseJSON(data); err == nil {
			return raws, nil
		}
		return parseJSONLines(data)
	}
}

func parseJSON(data []byte) ([]map[string]any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing json: %w", err)
	}
	return records(doc)
}

func parseJSONLines(data []byte) ([]map[string]any, error) {
	var raws []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var raw map[string]any
		if err := json.Unmarshal(text, &raw); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", line, err)
		}
		raws = append(raws, raw)
	}
	return raws, sc.Err()
}

func records(doc any) ([]map[string]any, error) {
	switch v := doc.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %d: expected an object, got %T", i, item)
			}
			out = append(out, m)
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("expected an object or a list, got %T", doc)
	}
}

func squash(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	return strings.ReplaceAll(key, "-", "")
}
