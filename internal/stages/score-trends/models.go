// internal/stages/score-trends/models.go
package scoretrends

import "saas-validator/internal/trends"

type Input struct {
	Trends trends.Data `json:"trends"`
}

// TrendAnalysis is the structured verdict produced from trend evidence.
// Scores run 1 (worst) to 10 (best) for opportunity and 1 (safest) to 10
// (riskiest) for risk.
type TrendAnalysis struct {
	OpportunityScore int      `json:"opportunity_score"`
	RiskScore        int      `json:"risk_score"`
	TrendAnalysis    string   `json:"trend_analysis"`
	Recommendation   string   `json:"recommendation"`
	KeyInsights      []string `json:"key_insights"`
	Reasoning        string   `json:"reasoning"`
}

const (
	RecommendationBuild          = "BUILD"
	RecommendationDontBuild      = "DON'T BUILD"
	RecommendationAnalyzeFurther = "ANALYZE FURTHER"
)
