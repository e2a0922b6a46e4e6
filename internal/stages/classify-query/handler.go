package classifyquery

import (
	"context"
	"errors"
	"strings"

	"saas-validator/internal/common/logger"
	"saas-validator/internal/llm"
)

const StageName = "classify-query"

var ErrEmptyQuery = errors.New("EMPTY_QUERY")

// triggerTerms routes a query into the trends branch. The match is
// substring-based against the lowercased query.
var triggerTerms = []string{
	"trend", "market", "business", "idea", "validate",
	"research", "saas", "build", "should i", "can i",
}

// saasMarkers start a candidate topic phrase; the next three tokens after a
// marker become one extracted query.
var saasMarkers = map[string]bool{
	"saas":     true,
	"app":      true,
	"software": true,
	"platform": true,
	"tool":     true,
}

// fallbackTerms are scanned when marker extraction yields nothing.
var fallbackTerms = []string{
	"ai", "project management", "crm", "remote work", "automation",
}

const classifySystemPrompt = `You are a SaaS Validator agent that analyzes business ideas and market trends.
Analyze the user query and determine if it requires Google Trends data for validation.

If the query is about:
- Market research
- Trend analysis
- Business idea validation
- Competitive analysis
- Industry trends
- SaaS business ideas
- Product validation

Then it likely needs Google Trends data.

Respond with a JSON object containing:
{
    "needs_trends": true/false,
    "extracted_queries": ["list", "of", "search", "terms"],
    "analysis_type": "market_research|trend_analysis|business_validation|competitive_analysis"
}`

type Handler struct {
	llm    llm.Completer
	logger logger.Logger
}

func NewHandler(client llm.Completer, log logger.Logger) *Handler {
	return &Handler{
		llm: client,
		logger: log.With(map[string]interface{}{
			"stage": StageName,
		}),
	}
}

// Execute decides whether the query needs trend evidence and extracts
// candidate search queries. The routing decision is fully deterministic; the
// model call is advisory only and its failure never fails classification.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, ErrEmptyQuery
	}

	if h.llm != nil {
		if resp, err := h.llm.Complete(ctx, classifySystemPrompt, input.Query); err != nil {
			h.logger.Warn("advisory classification call failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			h.logger.Debug("advisory classification response", map[string]interface{}{
				"response": resp,
			})
		}
	}

	lowered := strings.ToLower(input.Query)

	needsTrends := false
	for _, term := range triggerTerms {
		if strings.Contains(lowered, term) {
			needsTrends = true
			break
		}
	}

	extracted := h.extractQueries(lowered)
	if len(extracted) == 0 {
		extracted = []string{input.Query}
	}

	analysisType := AnalysisTypeGeneralAnalysis
	if needsTrends {
		analysisType = AnalysisTypeMarketResearch
	}

	output := &Output{
		NeedsTrends:      needsTrends,
		ExtractedQueries: extracted,
		AnalysisType:     analysisType,
	}

	h.logger.Info("query classified", map[string]interface{}{
		"needsTrends":  needsTrends,
		"queryCount":   len(extracted),
		"analysisType": analysisType,
	})

	return output, nil
}

// extractQueries pulls candidate search phrases out of the lowercased query.
func (h *Handler) extractQueries(lowered string) []string {
	var extracted []string

	if strings.Contains(lowered, "saas") {
		words := strings.Fields(lowered)
		for i, word := range words {
			if saasMarkers[word] && i+1 < len(words) {
				end := i + 4
				if end > len(words) {
					end = len(words)
				}
				extracted = append(extracted, strings.Join(words[i+1:end], " "))
			}
		}
	}

	if len(extracted) == 0 {
		for _, term := range fallbackTerms {
			if strings.Contains(lowered, term) {
				extracted = append(extracted, term)
			}
		}
	}

	return extracted
}
