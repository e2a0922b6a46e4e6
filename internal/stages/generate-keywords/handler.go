package generatekeywords

import (
	"context"
	"strings"

	"saas-validator/internal/common/logger"
	"saas-validator/internal/common/metrics"
	"saas-validator/internal/common/retry"
	"saas-validator/internal/llm"
)

const (
	StageName   = "generate-keywords"
	maxKeywords = 10
)

// stopWords are filler tokens dropped by the tokenization fallback.
var stopWords = map[string]bool{
	"should":   true,
	"build":    true,
	"create":   true,
	"make":     true,
	"start":    true,
	"business": true,
	"idea":     true,
}

const keywordSystemPrompt = `You are a keyword extraction specialist. Extract 3-5 relevant search keywords from the user's business idea or query.
Focus on:
- Core product/service terms
- Industry keywords
- Market segment terms

Return only the keywords separated by commas, no explanations.`

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

// Execute turns a query into 1..10 search keywords. Model overload is retried
// with backoff; if the budget runs out or the call fails outright, the query
// is tokenized locally instead. Execute never fails the run.
func (h *Handler) Execute(ctx context.Context, input *Input) *Output {
	var text string
	attempts := 0
	err := h.retry.Do(ctx, func() error {
		attempts++
		var callErr error
		text, callErr = h.llm.Complete(ctx, keywordSystemPrompt, input.Query)
		return callErr
	}, llm.IsOverloaded)
	if attempts > 1 {
		metrics.LLMRetries.WithLabelValues(StageName).Add(float64(attempts - 1))
	}

	if err != nil {
		h.logger.Warn("keyword model call failed, falling back to tokenization", map[string]interface{}{
			"error": err.Error(),
		})
		metrics.LLMFallbacks.WithLabelValues(StageName).Inc()
		return &Output{Keywords: fallbackKeywords(input.Query)}
	}

	keywords := parseKeywords(text)
	if len(keywords) == 0 {
		h.logger.Warn("model returned no usable keywords", map[string]interface{}{
			"response": text,
		})
		metrics.LLMFallbacks.WithLabelValues(StageName).Inc()
		return &Output{Keywords: fallbackKeywords(input.Query)}
	}

	h.logger.Info("keywords generated", map[string]interface{}{
		"count": len(keywords),
	})
	return &Output{Keywords: keywords}
}

// parseKeywords splits the model response on commas, strips whitespace and
// surrounding quotes, drops fragments shorter than two characters and
// duplicates, and caps the result at ten keywords.
func parseKeywords(text string) []string {
	var keywords []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(text, ",") {
		kw := strings.TrimSpace(part)
		kw = strings.Trim(kw, `"'`)
		kw = strings.TrimSpace(kw)
		if len(kw) < 2 || seen[strings.ToLower(kw)] {
			continue
		}
		seen[strings.ToLower(kw)] = true
		keywords = append(keywords, kw)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// fallbackKeywords tokenizes the query locally: lowercase words longer than
// three characters that are not stop words, capped at five. An unproductive
// query degrades to the query itself.
func fallbackKeywords(query string) []string {
	var keywords []string
	seen := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if len(word) <= 3 || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == 5 {
			break
		}
	}
	if len(keywords) == 0 {
		keywords = []string{strings.TrimSpace(query)}
	}
	return keywords
}
