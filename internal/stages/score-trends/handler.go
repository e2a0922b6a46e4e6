package scoretrends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	commonerrors "saas-validator/internal/common/errors"
	"saas-validator/internal/common/logger"
	"saas-validator/internal/common/metrics"
	"saas-validator/internal/common/retry"
	"saas-validator/internal/llm"
)

const StageName = "score-trends"

const scoreSystemPrompt = `You are a SaaS business analyst. Analyze the Google Trends data and provide:

1. OPPORTUNITY SCORE (1-10): Rate the business opportunity based on:
   - Search volume trends (rising = higher score)
   - Market interest growth
   - Seasonal patterns
   - Geographic distribution

2. RISK SCORE (1-10): Rate the business risk based on:
   - Market saturation indicators
   - Declining trends
   - High competition signals
   - Market volatility

3. TREND ANALYSIS: Provide insights on:
   - Overall trend direction
   - Key growth indicators
   - Market timing assessment
   - Competitive landscape hints

Respond in JSON format:
{
    "opportunity_score": X,
    "risk_score": X,
    "trend_analysis": "detailed analysis text",
    "recommendation": "BUILD/DON'T BUILD/ANALYZE FURTHER",
    "key_insights": ["insight1", "insight2", "insight3"],
    "reasoning": "explanation of scores"
}`

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

// Execute scores trend evidence into a TrendAnalysis. It always returns a
// non-nil verdict: overload, malformed output and transport failures each
// degrade to a neutral 5/5 ANALYZE FURTHER.
func (h *Handler) Execute(ctx context.Context, input *Input) *TrendAnalysis {
	prompt, err := buildPrompt(input.Trends)
	if err != nil {
		h.logger.Error("failed to serialize trends data", map[string]interface{}{
			"error": err.Error(),
		})
		return errorFallback(err)
	}

	var text string
	attempts := 0
	err = h.retry.Do(ctx, func() error {
		attempts++
		var callErr error
		text, callErr = h.llm.Complete(ctx, scoreSystemPrompt, prompt)
		return callErr
	}, llm.IsOverloaded)
	if attempts > 1 {
		metrics.LLMRetries.WithLabelValues(StageName).Add(float64(attempts - 1))
	}

	switch {
	case err == nil:
	case errors.Is(err, retry.ErrExhausted):
		h.logger.Warn("scoring model overloaded, returning neutral verdict", nil)
		metrics.LLMFallbacks.WithLabelValues(StageName).Inc()
		return overloadFallback()
	default:
		h.logger.Error("scoring model call failed", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.LLMFallbacks.WithLabelValues(StageName).Inc()
		return errorFallback(err)
	}

	analysis, err := parseAnalysis(text)
	if err != nil {
		stdErr := commonerrors.NewMalformedAnalysisError(err.Error())
		h.logger.Warn("model response failed validation, preserving raw text", map[string]interface{}{
			"code":  string(stdErr.Code),
			"error": stdErr.Details,
		})
		metrics.LLMFallbacks.WithLabelValues(StageName).Inc()
		return rawFallback(text)
	}

	h.logger.Info("trends scored", map[string]interface{}{
		"opportunityScore": analysis.OpportunityScore,
		"riskScore":        analysis.RiskScore,
		"recommendation":   analysis.Recommendation,
	})
	return analysis
}

func buildPrompt(data map[string]interface{}) (string, error) {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return "Google Trends Data:\n" + string(raw) +
		"\n\nPlease analyze this data and provide scoring and recommendations.", nil
}

// overloadFallback is the verdict when the retry budget is spent on 529s.
func overloadFallback() *TrendAnalysis {
	return &TrendAnalysis{
		OpportunityScore: 5,
		RiskScore:        5,
		TrendAnalysis:    "Unable to analyze trends due to API overload. Please try again later.",
		Recommendation:   RecommendationAnalyzeFurther,
		KeyInsights:      []string{"API temporarily unavailable"},
		Reasoning:        "The analysis service is currently overloaded. Please retry in a few minutes.",
	}
}

// rawFallback keeps the model's prose when it did not produce valid JSON.
func rawFallback(text string) *TrendAnalysis {
	return &TrendAnalysis{
		OpportunityScore: 5,
		RiskScore:        5,
		TrendAnalysis:    text,
		Recommendation:   RecommendationAnalyzeFurther,
		KeyInsights:      []string{"Analysis completed"},
		Reasoning:        text,
	}
}

func errorFallback(err error) *TrendAnalysis {
	return &TrendAnalysis{
		OpportunityScore: 5,
		RiskScore:        5,
		TrendAnalysis:    "Unable to analyze trends data",
		Recommendation:   RecommendationAnalyzeFurther,
		KeyInsights:      []string{"Data analysis failed"},
		Reasoning:        fmt.Sprintf("Error in analysis: %v", err),
	}
}
