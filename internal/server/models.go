// internal/server/models.go
package server

import "saas-validator/internal/agent"

type ValidationRequest struct {
	Query         string `json:"query" binding:"required"`
	IncludeTrends *bool  `json:"include_trends"`
	MaxQueries    int    `json:"max_queries"`
}

// options converts request knobs into run options, defaulting to the full
// pipeline when the caller leaves them unset.
func (r ValidationRequest) options() agent.RunOptions {
	opts := agent.DefaultRunOptions()
	if r.IncludeTrends != nil {
		opts.IncludeTrends = *r.IncludeTrends
	}
	if r.MaxQueries > 0 {
		opts.MaxQueries = r.MaxQueries
	}
	return opts
}

type BatchValidationRequest struct {
	Queries       []string `json:"queries" binding:"required"`
	IncludeTrends *bool    `json:"include_trends"`
}

type BatchValidationResponse struct {
	Success           bool               `json:"success"`
	Results           []*agent.RunResult `json:"results"`
	TotalQueries      int                `json:"total_queries"`
	SuccessfulQueries int                `json:"successful_queries"`
	FailedQueries     int                `json:"failed_queries"`
}

type HealthResponse struct {
	Status                string `json:"status"`
	AgentReady            bool   `json:"agent_ready"`
	GoogleTrendsAvailable bool   `json:"google_trends_available"`
	Timestamp             string `json:"timestamp"`
}
