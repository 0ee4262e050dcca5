// Package pricing prices token usage from a per-provider, per-model table.
package pricing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Wildcard is the model key used when a provider has no entry for a model.
const Wildcard = "*"

// ModelPricing holds prices per 1K tokens.
type ModelPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

type Table struct {
	Providers map[string]map[string]ModelPricing
}

// Load reads a pricing table. An empty path yields a nil table, which
// prices nothing.
func Load(path string) (*Table, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pricing file: %w", err)
	}
	var providers map[string]map[string]ModelPricing
	if err := yaml.Unmarshal(data, &providers); err != nil {
		return nil, fmt.Errorf("parsing pricing file: %w", err)
	}
	return &Table{Providers: providers}, nil
}

// Lookup finds the price of a model, falling back to the provider wildcard.
func (t *Table) Lookup(provider, model string) (ModelPricing, bool) {
	if t == nil || t.Providers == nil {
		return ModelPricing{}, false
	}
	models, ok := t.Providers[provider]
	if !ok {
		return ModelPricing{}, false
	}
	if p, ok := models[model]; ok {
		return p, true
	}
	p, ok := models[Wildcard]
	return p, ok
}

// Cost calculates total cost for a request. Unknown models cost nothing.
func (t *Table) Cost(provider, model string, inputTokens, outputTokens int) float64 {
	p, ok := t.Lookup(provider, model)
	if !ok {
		return 0
	}
	return (float64(inputTokens)/1000.0)*p.Input + (float64(outputTokens)/1000.0)*p.Output
}
