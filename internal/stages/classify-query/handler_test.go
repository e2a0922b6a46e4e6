package classifyquery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saas-validator/internal/common/logger"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	s.calls++
	return s.response, s.err
}

func TestExecute_TriggerTermsNeedTrends(t *testing.T) {
	h := NewHandler(nil, logger.NewTestLogger(t))

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"market term", "What is the market size for CRM tools?", true},
		{"should i phrase", "Should I start a newsletter?", true},
		{"saas term", "Is a SaaS invoicing product worth it?", true},
		{"validate term", "Help me validate this concept", true},
		{"plain question", "What is the capital of France?", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := h.Execute(context.Background(), &Input{Query: tt.query})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.NeedsTrends)
			assert.NotEmpty(t, out.ExtractedQueries, "classification must always extract at least one query")
		})
	}
}

func TestExecute_AnalysisType(t *testing.T) {
	h := NewHandler(nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Query: "validate my business idea"})
	require.NoError(t, err)
	assert.Equal(t, AnalysisTypeMarketResearch, out.AnalysisType)

	out, err = h.Execute(context.Background(), &Input{Query: "tell me a story"})
	require.NoError(t, err)
	assert.Equal(t, AnalysisTypeGeneralAnalysis, out.AnalysisType)
}

func TestExecute_SaaSMarkerExtraction(t *testing.T) {
	h := NewHandler(nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		Query: "Should I build a SaaS tool for invoice tracking automation today",
	})
	require.NoError(t, err)

	// Both "saas" and "tool" are markers; each yields the next three tokens.
	assert.Contains(t, out.ExtractedQueries, "tool for invoice")
	assert.Contains(t, out.ExtractedQueries, "for invoice tracking")
}

func TestExecute_FallbackTermExtraction(t *testing.T) {
	h := NewHandler(nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		Query: "Is the CRM market growing for remote work teams?",
	})
	require.NoError(t, err)

	assert.Contains(t, out.ExtractedQueries, "crm")
	assert.Contains(t, out.ExtractedQueries, "remote work")
}

func TestExecute_NoMatchFallsBackToFullQuery(t *testing.T) {
	h := NewHandler(nil, logger.NewTestLogger(t))

	query := "What is the weather like?"
	out, err := h.Execute(context.Background(), &Input{Query: query})
	require.NoError(t, err)
	assert.Equal(t, []string{query}, out.ExtractedQueries)
}

func TestExecute_EmptyQuery(t *testing.T) {
	h := NewHandler(nil, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Query: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestExecute_AdvisoryCallFailureIsNotFatal(t *testing.T) {
	stub := &stubCompleter{err: errors.New("model unavailable")}
	h := NewHandler(stub, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{Query: "validate my saas idea"})
	require.NoError(t, err)
	assert.True(t, out.NeedsTrends)
	assert.Equal(t, 1, stub.calls)
}
