package result

// Normalized is one model's performance on one scenario, reduced to a flat
// map of numeric metrics. Metric names are not fixed across results.
type Normalized struct {
	ModelID    string             `json:"modelId"`
	ScenarioID string             `json:"scenarioId"`
	Metrics    map[string]float64 `json:"metrics"`
	Metadata   map[string]any     `json:"metadata,omitempty"`
}

// TrialMeta is the meta.json written for a single benchmark trial.
type TrialMeta struct {
	Orchestrator   string  `json:"orchestrator"`
	Task           string  `json:"task"`
	Trial          int     `json:"trial"`
	DurationS      int     `json:"duration_s"`
	ExitCode       int     `json:"exit_code"`
	ExitReason     string  `json:"exit_reason"`
	Scores         Scores  `json:"scores"`
	CompositeScore float64 `json:"composite_score"`
	TotalTokens    int     `json:"total_tokens"`
	TotalCostUSD   float64 `json:"total_cost_usd"`
	BudgetExceeded bool    `json:"budget_exceeded"`
}

type Scores struct {
	Tests          float64 `json:"tests"`
	StaticAnalysis float64 `json:"static_analysis"`
	Rubric         float64 `json:"rubric"`
	HiddenTests    float64 `json:"hidden_tests,omitempty"`
	AgentTests     float64 `json:"agent_tests,omitempty"`
	Coverage       float64 `json:"coverage,omitempty"`
	CodeMetrics    float64 `json:"code_metrics,omitempty"`
}

// SourceStat records how many results a source contributed to a run.
type SourceStat struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Results int    `json:"results"`
	File    string `json:"file,omitempty"`
	Error   string `json:"error,omitempty"`
}
