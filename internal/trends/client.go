// Package trends is the typed gateway to the Google Trends API server. Every
// facet call returns a normalized map or nil; provider outages and non-200
// responses are absence of evidence, never errors.
package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"saas-validator/internal/common/config"
	"saas-validator/internal/common/logger"
	"saas-validator/internal/common/metrics"
)

const (
	requestTimeout = 30 * time.Second
	dateFormat     = "2006-01-02"
	defaultWindow  = 365 // days
)

// Data is the opaque trends payload threaded through the pipeline.
type Data = map[string]interface{}

// Client talks to the trends provider. It is safe for concurrent use; the
// underlying transport is shared and its lifecycle is owned by whoever
// constructed the client (open once, close once).
type Client struct {
	baseURL      string
	country      string
	defaultLimit int
	client       *http.Client
	cache        *Cache
	logger       logger.Logger

	closeOnce sync.Once
}

func NewClient(cfg config.TrendsConfig, cache *Cache, log logger.Logger) *Client {
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		country:      cfg.Country,
		defaultLimit: cfg.DefaultLimit,
		client: &http.Client{
			Timeout: requestTimeout,
		},
		cache: cache,
		logger: log.With(map[string]interface{}{
			"component": "trends",
		}),
	}
}

// Close releases the shared transport and the cache connection. Idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.client.CloseIdleConnections()
		if c.cache != nil {
			c.cache.Close()
		}
	})
}

// HealthCheck probes the provider's health endpoint. Any failure is false.
func (c *Client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("health check failed", map[string]interface{}{"error": err.Error()})
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// GetTrendsForKeywords fetches the combined trends bundle for a keyword set.
func (c *Client) GetTrendsForKeywords(ctx context.Context, keywords []string) Data {
	if len(keywords) == 0 {
		c.logger.Warn("no keywords provided for trends analysis", nil)
		return nil
	}

	params := url.Values{}
	params.Set("keywords", strings.Join(keywords, ","))

	data, ok := c.getJSON(ctx, "keyword_trends", "/api/trends", params)
	if !ok {
		return nil
	}
	return data
}

// GetTrendingSearches returns today's trending searches, truncated to limit.
func (c *Client) GetTrendingSearches(ctx context.Context, limit int) Data {
	data, ok := c.getJSON(ctx, "daily_trending", "/api/trends/daily", nil)
	if !ok {
		return nil
	}

	limit = c.effectiveLimit(limit)
	return Data{
		"trending_searches": truncateList(data["trending_searches"], limit),
		"country":           c.country,
		"limit":             limit,
	}
}

// GetRealtimeTrends returns the realtime trending list.
func (c *Client) GetRealtimeTrends(ctx context.Context, limit int) Data {
	data, ok := c.getJSON(ctx, "realtime_trending", "/api/trends/realtime", nil)
	if !ok {
		return nil
	}

	limit = c.effectiveLimit(limit)
	return Data{
		"realtime_trends": truncateList(data["realtime_trends"], limit),
		"timestamp":       time.Now().Format(time.RFC3339),
		"limit":           limit,
	}
}

// GetRelatedQueries returns queries related to a keyword over the last year.
func (c *Client) GetRelatedQueries(ctx context.Context, keyword string, limit int) Data {
	data, ok := c.getJSON(ctx, "related_queries", "/api/trends/related-queries", c.rangeParams(keyword, defaultWindow))
	if !ok {
		return nil
	}

	limit = c.effectiveLimit(limit)
	return Data{
		"keyword":         keyword,
		"related_queries": truncateList(data["related_queries"], limit),
		"country":         c.country,
		"limit":           limit,
	}
}

// GetRelatedTopics returns topics related to a keyword over the last year.
func (c *Client) GetRelatedTopics(ctx context.Context, keyword string, limit int) Data {
	data, ok := c.getJSON(ctx, "related_topics", "/api/trends/related-topics", c.rangeParams(keyword, defaultWindow))
	if !ok {
		return nil
	}

	limit = c.effectiveLimit(limit)
	return Data{
		"keyword":        keyword,
		"related_topics": truncateList(data["related_topics"], limit),
		"country":        c.country,
		"limit":          limit,
	}
}

// GetInterestOverTime returns the interest curve for a keyword. The timeframe
// token selects the window: 12-m, 3-m or 1-m; anything else means a year.
func (c *Client) GetInterestOverTime(ctx context.Context, keyword, timeframe string) Data {
	data, ok := c.getJSON(ctx, "interest_over_time", "/api/trends/interest-over-time", c.rangeParams(keyword, windowDays(timeframe)))
	if !ok {
		return nil
	}

	return Data{
		"keyword":            keyword,
		"interest_over_time": data["interest_over_time"],
		"country":            c.country,
		"timeframe":          timeframe,
	}
}

// GetInterestByRegion returns regional interest for a keyword over the last year.
func (c *Client) GetInterestByRegion(ctx context.Context, keyword string) Data {
	data, ok := c.getJSON(ctx, "interest_by_region", "/api/trends/interest-by-region", c.rangeParams(keyword, defaultWindow))
	if !ok {
		return nil
	}

	return Data{
		"keyword":            keyword,
		"interest_by_region": data["interest_by_region"],
		"country":            c.country,
	}
}

// windowDays maps a timeframe token to a day count.
func windowDays(timeframe string) int {
	switch {
	case strings.Contains(timeframe, "12-m"):
		return 365
	case strings.Contains(timeframe, "3-m"):
		return 90
	case strings.Contains(timeframe, "1-m"):
		return 30
	default:
		return defaultWindow
	}
}

func (c *Client) rangeParams(keyword string, days int) url.Values {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("startTime", start.Format(dateFormat))
	params.Set("endTime", end.Format(dateFormat))
	return params
}

func (c *Client) effectiveLimit(limit int) int {
	if limit <= 0 {
		return c.defaultLimit
	}
	return limit
}

// truncateList caps a raw JSON list at limit entries, preserving order.
// Non-list values pass through as an empty list.
func truncateList(v interface{}, limit int) []interface{} {
	list, ok := v.([]interface{})
	if !ok {
		return []interface{}{}
	}
	if len(list) > limit {
		return list[:limit]
	}
	return list
}

// getJSON issues one provider request, consulting the cache first. The bool
// result distinguishes data from absence; errors never escape.
func (c *Client) getJSON(ctx context.Context, facet, path string, params url.Values) (Data, bool) {
	cacheKey := facet + ":" + params.Encode()
	if c.cache != nil {
		if data, hit := c.cache.Get(ctx, cacheKey); hit {
			metrics.TrendsCacheHits.WithLabelValues("hit").Inc()
			return data, true
		}
		metrics.TrendsCacheHits.WithLabelValues("miss").Inc()
	}

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		metrics.TrendsRequests.WithLabelValues(facet, "error").Inc()
		return nil, false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("trends request failed", map[string]interface{}{
			"facet": facet,
			"error": err.Error(),
		})
		metrics.TrendsRequests.WithLabelValues(facet, "error").Inc()
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("trends request returned non-200", map[string]interface{}{
			"facet":  facet,
			"status": resp.StatusCode,
			"body":   string(body),
		})
		metrics.TrendsRequests.WithLabelValues(facet, fmt.Sprintf("%d", resp.StatusCode)).Inc()
		return nil, false
	}

	var data Data
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.logger.Warn("trends response decode failed", map[string]interface{}{
			"facet": facet,
			"error": err.Error(),
		})
		metrics.TrendsRequests.WithLabelValues(facet, "decode_error").Inc()
		return nil, false
	}

	metrics.TrendsRequests.WithLabelValues(facet, "ok").Inc()

	if c.cache != nil {
		c.cache.Set(ctx, cacheKey, data)
	}

	return data, true
}
