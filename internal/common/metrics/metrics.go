// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validator_runs_completed_total",
			Help: "Total number of pipeline runs completed",
		},
		[]string{"outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "validator_stage_duration_seconds",
			Help: "Duration of pipeline stage execution in seconds",
		},
		[]string{"stage"},
	)

	LLMRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validator_llm_retries_total",
			Help: "Total number of language-model retries after overload",
		},
		[]string{"stage"},
	)

	LLMFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validator_llm_fallbacks_total",
			Help: "Total number of degraded fallback responses served",
		},
		[]string{"stage"},
	)

	TrendsRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validator_trends_requests_total",
			Help: "Total number of trends provider requests by facet and status",
		},
		[]string{"facet", "status"},
	)

	TrendsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validator_trends_cache_total",
			Help: "Trends response cache lookups by result",
		},
		[]string{"result"},
	)
)
