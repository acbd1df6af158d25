package daybrief

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPDoer is an interface for making HTTP requests. It enables dependency
// injection for testing without network calls.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// NewsSource produces normalized headlines. A nil slice means the source was
// unavailable; implementations must never propagate a network or parse fault.
type NewsSource interface {
	Collect(ctx context.Context) []Headline
}

// TrendsSource produces normalized trending topics, nil when unavailable.
type TrendsSource interface {
	Collect(ctx context.Context) []TrendingTopic
}

// FinanceSource produces a quote snapshot for the given symbols, nil when the
// source is unavailable as a whole. Individual symbol failures are recorded
// inside the snapshot.
type FinanceSource interface {
	Collect(ctx context.Context, symbols []string) *FinanceSnapshot
}

// maxCollectorResponseSize limits external API responses to 1MB to prevent
// memory exhaustion.
const maxCollectorResponseSize = 1 << 20

func collectorHTTPGet(ctx context.Context, client HTTPDoer, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxCollectorResponseSize))
}
