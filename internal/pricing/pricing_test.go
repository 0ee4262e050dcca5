package pricing_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalnine/tribunal/internal/pricing"
)

func writePricing(t *testing.T) string {
	t.Helper()
	content := `anthropic:
  claude-opus-4-6:
    input: 0.015
    output: 0.075
openai:
  "*":
    input: 0.01
    output: 0.03
`
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPricing(t *testing.T) {
	table, err := pricing.Load(writePricing(t))
	require.NoError(t, err)

	assert.InDelta(t, 0.0525, table.Cost("anthropic", "claude-opus-4-6", 1000, 500), 1e-9)
	assert.InDelta(t, 0.025, table.Cost("openai", "codex-max", 1000, 500), 1e-9, "wildcard applies")
	assert.Zero(t, table.Cost("anthropic", "unknown", 1000, 500))
}

func TestCostUnknownProvider(t *testing.T) {
	table := &pricing.Table{}
	assert.Zero(t, table.Cost("unknown", "unknown", 1000, 500))

	var none *pricing.Table
	assert.Zero(t, none.Cost("anthropic", "claude-opus-4-6", 1000, 500))
}

func TestLoadEmptyPath(t *testing.T) {
	table, err := pricing.Load("")
	require.NoError(t, err)
	assert.Nil(t, table)
}

func TestLoadMissing(t *testing.T) {
	_, err := pricing.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
