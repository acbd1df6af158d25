package daybrief

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTrendsBaseURL = "https://trends.google.com"
	trendsFetchTimeout   = 10 * time.Second
	trendsRetryDelay     = 2 * time.Second
	// One initial try plus two retries on empty or failed responses.
	trendsMaxAttempts = 3
)

var errNoTrends = errors.New("no trending topics returned")

type trendsCollectorOptions struct {
	Logger   *slog.Logger
	BaseURL  string
	Geo      string
	Language string
	Client   HTTPDoer
}

type trendsCollector struct {
	logger   *slog.Logger
	baseURL  string
	geo      string
	language string
	client   HTTPDoer
}

func newTrendsCollector(opts trendsCollectorOptions) *trendsCollector {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: trendsFetchTimeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultTrendsBaseURL
	}
	return &trendsCollector{
		logger:   logger,
		baseURL:  baseURL,
		geo:      strings.ToUpper(strings.TrimSpace(opts.Geo)),
		language: strings.ToLower(strings.TrimSpace(opts.Language)),
		client:   client,
	}
}

// Collect fetches the daily trending searches, retrying twice with a fixed
// delay when the source fails or returns nothing. Returns nil when every
// attempt comes back empty.
func (tc *trendsCollector) Collect(ctx context.Context) []TrendingTopic {
	policy := retryPolicy{
		MaxAttempts: trendsMaxAttempts,
		Backoff:     []time.Duration{trendsRetryDelay},
	}
	topics, err := executeWithPolicy(ctx, policy, tc.fetchOnce)
	if err != nil {
		tc.logger.Warn("trends fetch failed after retries", "err", err)
		return nil
	}
	return topics
}

func (tc *trendsCollector) fetchOnce(ctx context.Context) ([]TrendingTopic, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, trendsFetchTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/trends/api/dailytrends?%s", tc.baseURL, url.Values{
		"geo": {tc.geo},
		"hl":  {tc.language},
	}.Encode())

	body, err := collectorHTTPGet(fetchCtx, tc.client, endpoint, map[string]string{
		"User-Agent": "Mozilla/5.0",
	})
	if err != nil {
		return nil, err
	}

	topics, err := parseDailyTrends(body)
	if err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, errNoTrends
	}
	return topics, nil
}

// parseDailyTrends decodes the daily-trends payload, stripping the XSSI
// guard prefix ()]}', ) the endpoint prepends.
func parseDailyTrends(body []byte) ([]TrendingTopic, error) {
	text := string(body)
	if idx := strings.Index(text, "{"); idx > 0 {
		text = text[idx:]
	}

	var payload struct {
		Default struct {
			TrendingSearchesDays []struct {
				TrendingSearches []struct {
					Title struct {
						Query string `json:"query"`
					} `json:"title"`
					FormattedTraffic string `json:"formattedTraffic"`
				} `json:"trendingSearches"`
			} `json:"trendingSearchesDays"`
		} `json:"default"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("decode trends response: %w", err)
	}

	var topics []TrendingTopic
	for _, day := range payload.Default.TrendingSearchesDays {
		for _, item := range day.TrendingSearches {
			title := strings.TrimSpace(item.Title.Query)
			if title == "" {
				continue
			}
			topics = append(topics, TrendingTopic{
				Title:            title,
				FormattedTraffic: strings.TrimSpace(item.FormattedTraffic),
			})
		}
	}
	return topics, nil
}
