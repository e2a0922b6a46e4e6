// internal/stages/classify-query/models.go
package classifyquery

type Input struct {
	Query string `json:"query"`
}

type Output struct {
	NeedsTrends      bool     `json:"needs_trends"`
	ExtractedQueries []string `json:"extracted_queries"`
	AnalysisType     string   `json:"analysis_type"`
}

const (
	AnalysisTypeMarketResearch  = "market_research"
	AnalysisTypeGeneralAnalysis = "general_analysis"
)
