// internal/stages/generate-recommendations/models.go
package generaterecommendations

import (
	scoretrends "saas-validator/internal/stages/score-trends"
	"saas-validator/internal/trends"
)

type Input struct {
	Query    string                     `json:"query"`
	Trends   trends.Data                `json:"trends,omitempty"`
	Analysis *scoretrends.TrendAnalysis `json:"analysis,omitempty"`
}

type Output struct {
	Recommendations []string `json:"recommendations"`
}
