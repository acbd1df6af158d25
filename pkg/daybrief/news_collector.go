package daybrief

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultNewsBaseURL  = "https://newsapi.org"
	defaultNewsCategory = "business"
	defaultNewsPageSize = 10
	newsFetchTimeout    = 10 * time.Second
)

type newsCollectorOptions struct {
	Logger   *slog.Logger
	BaseURL  string
	APIKey   string
	Country  string
	Language string
	Category string
	PageSize int
	Client   HTTPDoer
}

type newsCollector struct {
	logger   *slog.Logger
	baseURL  string
	apiKey   string
	country  string
	language string
	category string
	pageSize int
	client   HTTPDoer
}

func newNewsCollector(opts newsCollectorOptions) *newsCollector {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: newsFetchTimeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultNewsBaseURL
	}
	category := opts.Category
	if category == "" {
		category = defaultNewsCategory
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultNewsPageSize
	}
	return &newsCollector{
		logger:   logger,
		baseURL:  baseURL,
		apiKey:   strings.TrimSpace(opts.APIKey),
		country:  strings.ToLower(strings.TrimSpace(opts.Country)),
		language: strings.ToLower(strings.TrimSpace(opts.Language)),
		category: category,
		pageSize: pageSize,
		client:   client,
	}
}

// Collect fetches top headlines. It returns nil on any fault so callers can
// proceed with partial data.
func (nc *newsCollector) Collect(ctx context.Context) []Headline {
	fetchCtx, cancel := context.WithTimeout(ctx, newsFetchTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v2/top-headlines?%s", nc.baseURL, url.Values{
		"country":  {nc.country},
		"category": {nc.category},
		"pageSize": {fmt.Sprintf("%d", nc.pageSize)},
	}.Encode())

	body, err := collectorHTTPGet(fetchCtx, nc.client, endpoint, map[string]string{
		"X-Api-Key":  nc.apiKey,
		"User-Agent": "daybrief/1.0",
	})
	if err != nil {
		nc.logger.Warn("news fetch failed", "err", err)
		return nil
	}

	var payload struct {
		Status   string `json:"status"`
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		nc.logger.Warn("news response malformed", "err", err)
		return nil
	}
	if payload.Status != "" && payload.Status != "ok" {
		nc.logger.Warn("news source reported failure", "status", payload.Status)
		return nil
	}

	headlines := make([]Headline, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			continue
		}
		headlines = append(headlines, Headline{
			Title:       title,
			Description: strings.TrimSpace(a.Description),
			Source:      strings.TrimSpace(a.Source.Name),
		})
	}
	return headlines
}
