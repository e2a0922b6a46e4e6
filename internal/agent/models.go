// internal/agent/models.go
package agent

import "saas-validator/internal/trends"

// RunResult is the assembled outcome of one validation run. Score and verdict
// fields are pointers so runs without trend evidence serialize them as null.
type RunResult struct {
	RunID            string      `json:"run_id"`
	Success          bool        `json:"success"`
	Query            string      `json:"query"`
	Recommendations  []string    `json:"recommendations"`
	TrendsData       trends.Data `json:"trends_data,omitempty"`
	OpportunityScore *int        `json:"opportunity_score"`
	RiskScore        *int        `json:"risk_score"`
	Recommendation   *string     `json:"recommendation"`
	AnalysisType     string      `json:"analysis_type,omitempty"`
	Error            string      `json:"error,omitempty"`
	ProcessingTime   float64     `json:"processing_time"`
}

// RunOptions tune a single run. The zero value disables the trends branch,
// so callers normally start from DefaultRunOptions.
type RunOptions struct {
	IncludeTrends bool
	MaxQueries    int
}

func DefaultRunOptions() RunOptions {
	return RunOptions{
		IncludeTrends: true,
		MaxQueries:    3,
	}
}
