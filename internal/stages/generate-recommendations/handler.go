package generaterecommendations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"saas-validator/internal/common/logger"
	"saas-validator/internal/common/metrics"
	"saas-validator/internal/common/retry"
	"saas-validator/internal/llm"
)

const StageName = "generate-recommendations"

const recommendSystemPrompt = `You are a SaaS business advisor. Based on the user's query and the trend analysis provided, give specific, actionable recommendations.

Focus on:
- Concrete next steps
- Market positioning advice
- Risk mitigation strategies
- Validation experiments to run

Be direct and practical. Number your recommendations.`

type Handler struct {
	llm    llm.Completer
	retry  retry.Policy
	logger logger.Logger
}

func NewHandler(client llm.Completer, policy retry.Policy, log logger.Logger) *Handler {
	return &Handler{
		llm:   client,
		retry: policy,
		logger: log.With(map[string]interface{}{
			"stage": StageName,
		}),
	}
}

// Execute synthesizes the final recommendation list. Overload exhaustion
// yields a fixed generic list; any other failure degrades to a single error
// line. Execute never fails the run.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	prompt := buildContext(input)

	var text string
	attempts := 0
	err := h.retry.Do(ctx, func() error {
		attempts++
		var callErr error
		text, callErr = h.llm.Complete(ctx, recommendSystemPrompt, prompt)
		return callErr
	}, llm.IsOverloaded)
	if attempts > 1 {
		metrics.LLMRetries.WithLabelValues(StageName).Add(float64(attempts - 1))
	}

	switch {
	case err == nil:
	case errors.Is(err, retry.ErrExhausted):
		h.logger.Warn("recommendation model overloaded, using generic guidance", nil)
		metrics.LLMFallbacks.WithLabelValues(StageName).Inc()
		return &Output{Recommendations: overloadRecommendations()}
	default:
		h.logger.Error("recommendation model call failed", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.LLMFallbacks.WithLabelValues(StageName).Inc()
		return &Output{Recommendations: []string{
			fmt.Sprintf("Error generating recommendations: %v", err),
		}}
	}

	recommendations := []string{"SaaS Validator Recommendations:", text}
	if input.Analysis != nil {
		recommendations = append(recommendations,
			"\n🎯 QUICK ASSESSMENT:",
			fmt.Sprintf("Opportunity Score: %d/10", input.Analysis.OpportunityScore),
			fmt.Sprintf("Risk Score: %d/10", input.Analysis.RiskScore),
			fmt.Sprintf("Recommendation: %s", input.Analysis.Recommendation),
		)
	}

	h.logger.Info("recommendations generated", map[string]interface{}{
		"count": len(recommendations),
	})
	return &Output{Recommendations: recommendations}
}

// buildContext assembles the synthesis prompt from the query, the scored
// verdict and the raw trend evidence. Absent evidence is simply omitted.
func buildContext(input *Input) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("User Query: %s", input.Query))

	if input.Trends != nil && input.Analysis != nil {
		parts = append(parts,
			"",
			"📊 TRENDS ANALYSIS:",
			fmt.Sprintf("Opportunity Score: %d/10", input.Analysis.OpportunityScore),
			fmt.Sprintf("Risk Score: %d/10", input.Analysis.RiskScore),
			fmt.Sprintf("Recommendation: %s", input.Analysis.Recommendation),
			fmt.Sprintf("Trend Analysis: %s", input.Analysis.TrendAnalysis),
			fmt.Sprintf("Key Insights: %s", strings.Join(input.Analysis.KeyInsights, ", ")),
			fmt.Sprintf("Reasoning: %s", input.Analysis.Reasoning),
		)

		if raw, err := json.MarshalIndent(input.Trends, "", "  "); err == nil {
			parts = append(parts, "", "Raw Trends Data:", string(raw))
		}
	}

	return strings.Join(parts, "\n")
}

// overloadRecommendations is the canned guidance returned when the model
// stays overloaded through the whole retry budget.
func overloadRecommendations() []string {
	return []string{
		"SaaS Validator Recommendations:",
		"The analysis service is currently overloaded. Please try again in a few minutes.",
		"In the meantime, here are some general recommendations:",
		"1. Conduct market research to validate your business idea",
		"2. Analyze your target audience and their pain points",
		"3. Study your competitors and identify differentiation opportunities",
		"4. Create a minimum viable product (MVP) to test the market",
		"5. Gather feedback from potential customers early and often",
	}
}
