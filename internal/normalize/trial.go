package normalize

import (
	"github.com/signalnine/tribunal/internal/pricing"
	"github.com/signalnine/tribunal/internal/result"
	"github.com/signalnine/tribunal/internal/usage"
)

// FromTrialMeta maps a benchmark trial onto a normalized result: the
// orchestrator is the model and the task is the scenario. Optional scores
// that were never recorded are left out rather than reported as zero.
func FromTrialMeta(meta *result.TrialMeta) result.Normalized {
	metrics := map[string]float64{
		"tests":           meta.Scores.Tests,
		"static_analysis": meta.Scores.StaticAnalysis,
		"rubric":          meta.Scores.Rubric,
		"composite_score": meta.CompositeScore,
		"total_tokens":    float64(meta.TotalTokens),
		"total_cost_usd":  meta.TotalCostUSD,
		"duration_s":      float64(meta.DurationS),
		"passed":          0,
	}
	if meta.ExitReason == "completed" {
		metrics["passed"] = 1
	}
	optional := map[string]float64{
		"hidden_tests": meta.Scores.HiddenTests,
		"agent_tests":  meta.Scores.AgentTests,
		"coverage":     meta.Scores.Coverage,
		"code_metrics": meta.Scores.CodeMetrics,
	}
	for name, v := range optional {
		if v != 0 {
			metrics[name] = v
		}
	}

	return result.Normalized{
		ModelID:    meta.Orchestrator,
		ScenarioID: meta.Task,
		Metrics:    metrics,
		Metadata: map[string]any{
			"trial":           meta.Trial,
			"exit_reason":     meta.ExitReason,
			"exit_code":       meta.ExitCode,
			"budget_exceeded": meta.BudgetExceeded,
		},
	}
}

// PriceUsage replaces total_cost_usd with the cost of the recorded token
// usage and total_tokens with its token count. It returns false when there
// is nothing to price.
func PriceUsage(n *result.Normalized, records []usage.Record, table *pricing.Table) bool {
	if table == nil || len(records) == 0 {
		return false
	}
	var total float64
	for _, r := range records {
		total += table.Cost(r.Provider, r.Model, r.InputTokens, r.OutputTokens)
	}
	in, out := usage.Totals(records)
	n.Metrics["total_cost_usd"] = total
	n.Metrics["total_tokens"] = float64(in + out)
	return true
}
