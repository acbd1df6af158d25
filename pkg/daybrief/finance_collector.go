package daybrief

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultQuoteBaseURL = "https://query1.finance.yahoo.com"
	quoteFetchTimeout   = 10 * time.Second
)

type financeCollectorOptions struct {
	Logger  *slog.Logger
	BaseURL string
	Client  HTTPDoer
}

type financeCollector struct {
	logger  *slog.Logger
	baseURL string
	client  HTTPDoer
}

func newFinanceCollector(opts financeCollectorOptions) *financeCollector {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: quoteFetchTimeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultQuoteBaseURL
	}
	return &financeCollector{logger: logger, baseURL: baseURL, client: client}
}

type symbolQuoteResult struct {
	symbol string
	quote  *Quote
	err    error
}

// Collect fetches every symbol concurrently and assembles a snapshot. A slow
// or failing symbol never blocks the others; its failure is recorded
// per-symbol in Errors. Returns nil only when no symbols were requested.
func (fc *financeCollector) Collect(ctx context.Context, symbols []string) *FinanceSnapshot {
	if len(symbols) == 0 {
		return nil
	}

	ch := make(chan symbolQuoteResult, len(symbols))
	var wg sync.WaitGroup

	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol == "" {
			continue
		}
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			quote, err := fc.fetchQuote(ctx, sym)
			ch <- symbolQuoteResult{symbol: sym, quote: quote, err: err}
		}(symbol)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	snapshot := &FinanceSnapshot{
		Equities: map[string]Quote{},
		Crypto:   map[string]Quote{},
		Errors:   map[string]string{},
	}
	for r := range ch {
		if r.err != nil {
			fc.logger.Warn("quote fetch failed", "symbol", r.symbol, "err", r.err)
			snapshot.Errors[r.symbol] = r.err.Error()
			continue
		}
		switch {
		case IsCryptoSymbol(r.symbol):
			snapshot.Crypto[r.symbol] = *r.quote
		case IsPrimaryIndexSymbol(r.symbol):
			snapshot.PrimaryIndex = r.quote
		default:
			snapshot.Equities[r.symbol] = *r.quote
		}
	}
	return snapshot
}

func (fc *financeCollector) fetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, quoteFetchTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", fc.baseURL, symbol)
	body, err := collectorHTTPGet(fetchCtx, fc.client, endpoint, map[string]string{"User-Agent": "Mozilla/5.0"})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Chart struct {
			Result []struct {
				Meta struct {
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					PreviousClose      float64 `json:"previousClose"`
					ChartPreviousClose float64 `json:"chartPreviousClose"`
					RegularMarketTime  int64   `json:"regularMarketTime"`
				} `json:"meta"`
			} `json:"result"`
			Error *struct {
				Description string `json:"description"`
			} `json:"error"`
		} `json:"chart"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}
	if payload.Chart.Error != nil && payload.Chart.Error.Description != "" {
		return nil, fmt.Errorf("quote source error: %s", payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	meta := payload.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("no market price for %s", symbol)
	}
	prevClose := meta.PreviousClose
	if prevClose <= 0 {
		prevClose = meta.ChartPreviousClose
	}

	quote := &Quote{Price: meta.RegularMarketPrice}
	if prevClose > 0 {
		price := decimal.NewFromFloat(meta.RegularMarketPrice)
		prev := decimal.NewFromFloat(prevClose)
		change := price.Sub(prev)
		quote.Change = change.Round(2).InexactFloat64()
		quote.ChangePercent = change.Div(prev).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	}
	if meta.RegularMarketTime > 0 {
		quote.AsOf = time.Unix(meta.RegularMarketTime, 0).In(exchangeLocation).Format("Jan 2 15:04 MST")
	}
	return quote, nil
}
