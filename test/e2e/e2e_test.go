// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saas-validator/internal/agent"
	"saas-validator/internal/common/config"
	"saas-validator/internal/common/logger"
	"saas-validator/internal/server"
)

// fakeModel serves the Anthropic messages endpoint. When overloaded is set
// every call returns 529, which must exhaust retry budgets downstream.
type fakeModel struct {
	overloaded bool
}

func (f *fakeModel) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		if f.overloaded {
			w.WriteHeader(529)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"type": "overloaded_error", "message": "Overloaded"},
			})
			return
		}

		var req struct {
			System string `json:"system"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		var text string
		switch {
		case strings.Contains(req.System, "keyword extraction"):
			text = "crm software, freelancer invoicing, small business tools"
		case strings.Contains(req.System, "business analyst"):
			text = `{"opportunity_score": 7, "risk_score": 4, "trend_analysis": "interest is growing", "recommendation": "BUILD", "key_insights": ["steady demand"], "reasoning": "rising curve"}`
		case strings.Contains(req.System, "business advisor"):
			text = "1. Interview freelancers.\n2. Ship a landing page."
		default:
			text = `{"needs_trends": true}`
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{{"type": "text", "text": text}},
		})
	}
}

func fakeTrends(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"keywords":           strings.Split(r.URL.Query().Get("keywords"), ","),
			"interest_over_time": map[string]interface{}{"crm software": 64},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newStack(t *testing.T, model *fakeModel, trendsURL string) http.Handler {
	t.Helper()

	modelSrv := httptest.NewServer(model.handler())
	t.Cleanup(modelSrv.Close)

	cfg := &config.Config{
		Anthropic: config.AnthropicConfig{
			APIKey:      "test-key",
			BaseURL:     modelSrv.URL,
			Model:       "claude-3-5-sonnet-20241022",
			MaxTokens:   1024,
			Temperature: 0.1,
			Timeout:     5,
			MaxRetries:  3,
			BaseDelayMS: 1,
		},
		Trends: config.TrendsConfig{
			BaseURL:      trendsURL,
			Country:      "US",
			DefaultLimit: 10,
		},
	}
	cfg.App.Version = "1.0.0"
	require.NoError(t, cfg.Validate())

	log := logger.NewTestLogger(t)
	validator := agent.New(cfg, nil, log)
	t.Cleanup(validator.Close)

	return server.New(validator, cfg, log).Router()
}

func postValidate(t *testing.T, h http.Handler, body map[string]interface{}) (*httptest.ResponseRecorder, *agent.RunResult) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/validate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var result agent.RunResult
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	}
	return w, &result
}

func TestValidate_FullPipeline(t *testing.T) {
	h := newStack(t, &fakeModel{}, fakeTrends(t).URL)

	w, result := postValidate(t, h, map[string]interface{}{
		"query": "Should I build a SaaS tool for freelancer invoicing?",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, result.Success)
	assert.NotNil(t, result.TrendsData)
	require.NotNil(t, result.OpportunityScore)
	require.NotNil(t, result.RiskScore)
	require.NotNil(t, result.Recommendation)
	assert.Equal(t, 7, *result.OpportunityScore)
	assert.Equal(t, 4, *result.RiskScore)
	assert.Equal(t, "BUILD", *result.Recommendation)
	assert.Contains(t, result.Recommendations, "SaaS Validator Recommendations:")
	assert.Contains(t, result.Recommendations, "Opportunity Score: 7/10")
	assert.GreaterOrEqual(t, result.ProcessingTime, 0.0)
}

func TestValidate_TrendsOutageStillSucceeds(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	down.Close()

	h := newStack(t, &fakeModel{}, down.URL)

	w, result := postValidate(t, h, map[string]interface{}{
		"query": "Should I build a SaaS tool for freelancer invoicing?",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, result.Success, "provider outage must degrade, not fail")
	assert.Nil(t, result.TrendsData)
	assert.Nil(t, result.OpportunityScore)
	assert.Nil(t, result.RiskScore)
	assert.NotEmpty(t, result.Recommendations)
}

func TestValidate_EmptyQuery(t *testing.T) {
	h := newStack(t, &fakeModel{}, fakeTrends(t).URL)

	// A missing query is rejected at the HTTP boundary.
	w, _ := postValidate(t, h, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_QUERY")

	// A blank query passes binding but fails the run.
	w, result := postValidate(t, h, map[string]interface{}{"query": "   "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	require.Len(t, result.Recommendations, 1)
	assert.Contains(t, result.Recommendations[0], "Error running agent")
}

func TestValidate_ModelOverloadedEverywhere(t *testing.T) {
	h := newStack(t, &fakeModel{overloaded: true}, fakeTrends(t).URL)

	w, result := postValidate(t, h, map[string]interface{}{
		"query": "Should I build a SaaS tool for freelancer invoicing?",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, result.Success, "sustained overload must degrade, not fail")

	// Scoring degrades to the neutral verdict.
	require.NotNil(t, result.OpportunityScore)
	require.NotNil(t, result.RiskScore)
	assert.Equal(t, 5, *result.OpportunityScore)
	assert.Equal(t, 5, *result.RiskScore)
	assert.Equal(t, "ANALYZE FURTHER", *result.Recommendation)

	// Synthesis degrades to the canned guidance.
	require.NotEmpty(t, result.Recommendations)
	assert.Equal(t, "SaaS Validator Recommendations:", result.Recommendations[0])
	assert.Contains(t, result.Recommendations,
		"The analysis service is currently overloaded. Please try again in a few minutes.")
	assert.Len(t, result.Recommendations, 8)
}

func TestHealth(t *testing.T) {
	h := newStack(t, &fakeModel{}, fakeTrends(t).URL)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Status                string `json:"status"`
		GoogleTrendsAvailable bool   `json:"google_trends_available"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.GoogleTrendsAvailable)
}

func TestValidateBatch(t *testing.T) {
	h := newStack(t, &fakeModel{}, fakeTrends(t).URL)

	payload, err := json.Marshal(map[string]interface{}{
		"queries": []string{
			"Should I build a SaaS tool for freelancer invoicing?",
			"validate a crm idea for remote work teams",
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/validate/batch", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success           bool               `json:"success"`
		Results           []*agent.RunResult `json:"results"`
		TotalQueries      int                `json:"total_queries"`
		SuccessfulQueries int                `json:"successful_queries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.TotalQueries)
	assert.Equal(t, 2, resp.SuccessfulQueries)
	require.Len(t, resp.Results, 2)
	for _, r := range resp.Results {
		assert.True(t, r.Success)
		assert.NotEmpty(t, r.Recommendations)
	}
}
