package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/tribunal/internal/aggregate"
	"github.com/signalnine/tribunal/internal/report"
	"github.com/signalnine/tribunal/internal/result"
)

func fixture() []result.Normalized {
	return []result.Normalized{
		{ModelID: "orch-b", ScenarioID: "s1", Metrics: map[string]float64{"acc": 0.25}},
		{ModelID: "orch-a", ScenarioID: "s1", Metrics: map[string]float64{"acc": 0.5, "cost": 2}},
		{ModelID: "orch-a", ScenarioID: "s2", Metrics: map[string]float64{"acc": 1}},
	}
}

func generate(t *testing.T, opts report.Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, report.Generate(context.Background(), aggregate.New(), fixture(), opts, &buf))
	return buf.String()
}

func TestGenerateTable(t *testing.T) {
	out := generate(t, report.Options{})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "MODEL"))
	assert.Contains(t, lines[0], "RESULTS")
	assert.Equal(t, strings.Repeat("-", len(lines[1])), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "orch-a"), "rows sorted by key")
	assert.Contains(t, lines[2], "0.750 ±0.250")
	assert.Contains(t, lines[2], "2.000 ±0.000")
	assert.True(t, strings.HasPrefix(lines[3], "orch-b"))
	assert.Contains(t, lines[3], "0.250 ±0.000")
	assert.True(t, strings.HasSuffix(lines[3], "-"), "missing metric")
}

func TestGenerateTableWidth(t *testing.T) {
	out := generate(t, report.Options{Width: 10})
	lines := strings.Split(out, "\n")
	assert.Equal(t, strings.Repeat("-", 10), lines[1])
}

func TestGenerateThousandsSeparator(t *testing.T) {
	results := make([]result.Normalized, 1200)
	for i := range results {
		results[i] = result.Normalized{ModelID: "m", ScenarioID: "s", Metrics: map[string]float64{"tokens": 1500}}
	}
	var buf bytes.Buffer
	require.NoError(t, report.Generate(context.Background(), aggregate.New(), results, report.Options{Group: report.GroupOverall}, &buf))
	assert.Contains(t, buf.String(), "1,200")
	assert.Contains(t, buf.String(), "1,500.000")
}

func TestGenerateMarkdown(t *testing.T) {
	out := generate(t, report.Options{Format: report.FormatMarkdown, Group: report.GroupScenario})
	assert.Equal(t, strings.Join([]string{
		"| SCENARIO | RESULTS | acc | cost |",
		"|---|---|---|---|",
		"| s1 | 2 | 0.375 ±0.125 | 2.000 ±0.000 |",
		"| s2 | 1 | 1.000 ±0.000 | - |",
		"",
	}, "\n"), out)
}

func TestGenerateJSON(t *testing.T) {
	out := generate(t, report.Options{Format: report.FormatJSON})
	var sec report.Section
	require.NoError(t, json.Unmarshal([]byte(out), &sec))
	assert.Equal(t, report.GroupModel, sec.Group)
	assert.Equal(t, []string{"acc", "cost"}, sec.Metrics)
	require.Len(t, sec.Rows, 2)
	assert.Equal(t, "orch-a", sec.Rows[0].Key)
	assert.Equal(t, 2, sec.Rows[0].Summary.Count)
	assert.Equal(t, 0.75, sec.Rows[0].Summary.Mean["acc"])
	assert.Equal(t, 0.5, sec.Rows[0].Summary.Min["acc"])
}

func TestGenerateHTML(t *testing.T) {
	out := generate(t, report.Options{Format: report.FormatHTML, Group: report.GroupOverall})
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "<title>Results by overall</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "OVERALL")
	assert.Contains(t, out, "0.583 ±0.312")
}

func TestGenerateErrors(t *testing.T) {
	agg := aggregate.New()
	var buf bytes.Buffer

	err := report.Generate(context.Background(), agg, fixture(), report.Options{Format: "pdf"}, &buf)
	assert.ErrorIs(t, err, report.ErrUnknownFormat)

	err = report.Generate(context.Background(), agg, fixture(), report.Options{Group: "provider"}, &buf)
	assert.ErrorIs(t, err, report.ErrUnknownGroup)

	err = report.Generate(context.Background(), agg, nil, report.Options{}, &buf)
	assert.ErrorIs(t, err, aggregate.ErrEmptyInput)
	assert.Empty(t, buf.String())
}

func TestWriteTextfile(t *testing.T) {
	m, err := aggregate.New().Aggregate(fixture())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tribunal.prom")
	require.NoError(t, report.WriteTextfile(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# TYPE tribunal_metric_mean gauge")
	assert.Contains(t, out, `tribunal_metric_mean{group="model",key="orch-a",metric="acc"} 0.75`)
	assert.Contains(t, out, `tribunal_metric_mean{group="scenario",key="s2",metric="acc"} 1`)
	assert.Contains(t, out, `tribunal_group_results{group="overall",key="overall"} 3`)
	assert.NotContains(t, out, `key="orch-b",metric="cost"`)
}
