// Package usage reads the per-request token usage log an LLM gateway writes
// next to each trial.
package usage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// LogFile is the usage log name inside a trial directory.
const LogFile = "proxy-log.jsonl"

type Record struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

// ParseLog reads a JSON lines usage log. Lines that do not decode or name no
// model are skipped.
func ParseLog(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading usage log: %w", err)
	}
	var records []Record
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		if rec.Model != "" {
			records = append(records, rec)
		}
	}
	return records, sc.Err()
}

func Totals(records []Record) (inputTokens, outputTokens int) {
	for _, r := range records {
		inputTokens += r.InputTokens
		outputTokens += r.OutputTokens
	}
	return
}
