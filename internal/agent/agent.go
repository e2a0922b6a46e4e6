// Package agent orchestrates the validation pipeline: classify the query,
// extract keywords, fetch trend evidence, score it and synthesize
// recommendations. A run degrades through fallbacks instead of failing;
// only an unusable query terminates it early.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"saas-validator/internal/common/config"
	commonerrors "saas-validator/internal/common/errors"
	"saas-validator/internal/common/logger"
	"saas-validator/internal/common/metrics"
	"saas-validator/internal/common/observability"
	"saas-validator/internal/common/retry"
	"saas-validator/internal/llm"
	classifyquery "saas-validator/internal/stages/classify-query"
	generatekeywords "saas-validator/internal/stages/generate-keywords"
	generaterecommendations "saas-validator/internal/stages/generate-recommendations"
	scoretrends "saas-validator/internal/stages/score-trends"
	"saas-validator/internal/trends"
)

// Agent wires the pipeline stages around a shared model client and trends
// gateway. Safe for concurrent runs.
type Agent struct {
	classifier  *classifyquery.Handler
	keywords    *generatekeywords.Handler
	scorer      *scoretrends.Handler
	recommender *generaterecommendations.Handler
	gateway     *trends.Client
	obs         *observability.Observability
	logger      logger.Logger
}

func New(cfg *config.Config, obs *observability.Observability, log logger.Logger) *Agent {
	client := llm.NewClient(cfg.Anthropic, log)
	cache := trends.NewCache(cfg.Trends, cfg.Redis, log)
	gateway := trends.NewClient(cfg.Trends, cache, log)
	a := newAgent(client, gateway, cfg, log)
	a.obs = obs
	return a
}

func newAgent(client llm.Completer, gateway *trends.Client, cfg *config.Config, log logger.Logger) *Agent {
	policy := retry.NewPolicy(cfg.Anthropic.MaxRetries, cfg.Anthropic.RetryBaseDelay())
	return &Agent{
		classifier:  classifyquery.NewHandler(client, log),
		keywords:    generatekeywords.NewHandler(client, policy, log),
		scorer:      scoretrends.NewHandler(client, policy, log),
		recommender: generaterecommendations.NewHandler(client, policy, log),
		gateway:     gateway,
		logger:      log.With(map[string]interface{}{"component": "agent"}),
	}
}

// Close releases the trends gateway and its cache connection. Idempotent.
func (a *Agent) Close() {
	a.gateway.Close()
}

// TrendsHealthy probes the trends provider, for readiness reporting.
func (a *Agent) TrendsHealthy(ctx context.Context) bool {
	return a.gateway.HealthCheck(ctx)
}

// Run executes one validation run with default options.
func (a *Agent) Run(ctx context.Context, query string) *RunResult {
	return a.RunWithOptions(ctx, query, DefaultRunOptions())
}

// RunWithOptions executes the full pipeline for one query. It always returns
// a non-nil result; a panic anywhere in the pipeline is converted into a
// failed result.
func (a *Agent) RunWithOptions(ctx context.Context, query string, opts RunOptions) (result *RunResult) {
	start := time.Now()
	runID := uuid.NewString()
	log := a.logger.With(map[string]interface{}{"runId": runID})

	defer func() {
		if r := recover(); r != nil {
			log.Error("run panicked", map[string]interface{}{"panic": fmt.Sprintf("%v", r)})
			result = failureResult(runID, query, fmt.Sprintf("%v", r))
		}
		result.ProcessingTime = time.Since(start).Seconds()

		outcome := "success"
		if !result.Success {
			outcome = "failure"
		}
		metrics.RunsCompleted.WithLabelValues(outcome).Inc()
		if a.obs != nil {
			a.obs.RecordRunProcessed(ctx, outcome)
			a.obs.RecordRunDuration(ctx, time.Since(start), outcome)
		}

		log.Info("run finished", map[string]interface{}{
			"success":        result.Success,
			"processingTime": result.ProcessingTime,
		})
	}()

	log.Info("run started", map[string]interface{}{"query": query})

	classification, err := a.timedClassify(ctx, query)
	if err != nil {
		stdErr := commonerrors.NewClassificationFailedError(err)
		if errors.Is(err, classifyquery.ErrEmptyQuery) {
			stdErr = commonerrors.NewInvalidQueryError("query must not be blank")
		}
		log.Warn("classification failed", map[string]interface{}{
			"code":  string(stdErr.Code),
			"error": err.Error(),
		})
		return failureResult(runID, query, err.Error())
	}

	result = &RunResult{
		RunID:        runID,
		Success:      true,
		Query:        query,
		AnalysisType: classification.AnalysisType,
	}

	var evidence trends.Data
	var analysis *scoretrends.TrendAnalysis

	if classification.NeedsTrends && opts.IncludeTrends {
		queries := classification.ExtractedQueries
		if opts.MaxQueries > 0 && len(queries) > opts.MaxQueries {
			queries = queries[:opts.MaxQueries]
		}

		evidence = a.fetchEvidence(ctx, queries[0])
		if evidence == nil {
			log.Warn("trend evidence unavailable, continuing without it", nil)
		} else {
			analysis = a.timedStage("score-trends", func() *scoretrends.TrendAnalysis {
				return a.scorer.Execute(ctx, &scoretrends.Input{Trends: evidence})
			})
		}
	}

	synthStart := time.Now()
	recommendations := a.recommender.Execute(ctx, &generaterecommendations.Input{
		Query:    query,
		Trends:   evidence,
		Analysis: analysis,
	})
	metrics.StageDuration.WithLabelValues("generate-recommendations").Observe(time.Since(synthStart).Seconds())

	result.Recommendations = recommendations.Recommendations
	result.TrendsData = evidence
	if analysis != nil {
		opportunity := analysis.OpportunityScore
		risk := analysis.RiskScore
		verdict := analysis.Recommendation
		result.OpportunityScore = &opportunity
		result.RiskScore = &risk
		result.Recommendation = &verdict
	}

	return result
}

func (a *Agent) timedClassify(ctx context.Context, query string) (*classifyquery.Output, error) {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues("classify-query").Observe(time.Since(start).Seconds())
	}()
	return a.classifier.Execute(ctx, &classifyquery.Input{Query: query})
}

// fetchEvidence runs keyword extraction and the trends fetch for the first
// extracted query. A nil return means no usable evidence.
func (a *Agent) fetchEvidence(ctx context.Context, query string) trends.Data {
	kwStart := time.Now()
	keywords := a.keywords.Execute(ctx, &generatekeywords.Input{Query: query})
	metrics.StageDuration.WithLabelValues("generate-keywords").Observe(time.Since(kwStart).Seconds())

	fetchStart := time.Now()
	evidence := a.gateway.GetTrendsForKeywords(ctx, keywords.Keywords)
	metrics.StageDuration.WithLabelValues("fetch-trends").Observe(time.Since(fetchStart).Seconds())
	return evidence
}

func (a *Agent) timedStage(stage string, fn func() *scoretrends.TrendAnalysis) *scoretrends.TrendAnalysis {
	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}()
	return fn()
}

func failureResult(runID, query, cause string) *RunResult {
	return &RunResult{
		RunID:           runID,
		Success:         false,
		Query:           query,
		Recommendations: []string{"Error running agent: " + cause},
		Error:           cause,
	}
}
