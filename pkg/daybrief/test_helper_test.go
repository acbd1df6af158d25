package daybrief

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// sampleModelReply is a well-formed completion covering all four sections.
const sampleModelReply = `**Today's News Summary:** Markets digested fresh inflation data.

**Trending Topics:** Technology: a new phone launch led searches.

**Market Overview:** The index rose 0.4% in quiet trading.

**Looking Ahead:** Jobs data is due tomorrow morning.`

type fakeNews struct {
	headlines []Headline
}

func (f fakeNews) Collect(context.Context) []Headline { return f.headlines }

type fakeTrends struct {
	topics []TrendingTopic
}

func (f fakeTrends) Collect(context.Context) []TrendingTopic { return f.topics }

type fakeFinance struct {
	snapshot *FinanceSnapshot
}

func (f fakeFinance) Collect(context.Context, []string) *FinanceSnapshot { return f.snapshot }

// fakeCompleter records calls and returns canned output. Safe for concurrent
// use so single-flight tests can hammer it.
type fakeCompleter struct {
	mu               sync.Mutex
	text             string
	err              error
	delay            time.Duration
	automatedCalls   int
	interactiveCalls int
	lastPrompt       string
	lastSystem       string
	lastModels       []string
}

func (f *fakeCompleter) CompleteAutomated(ctx context.Context, prompt, system string, models []string) (string, error) {
	f.mu.Lock()
	f.automatedCalls++
	f.lastPrompt, f.lastSystem, f.lastModels = prompt, system, models
	f.mu.Unlock()
	return f.finish(ctx)
}

func (f *fakeCompleter) CompleteInteractive(ctx context.Context, prompt, system string, models []string) (string, error) {
	f.mu.Lock()
	f.interactiveCalls++
	f.lastPrompt, f.lastSystem, f.lastModels = prompt, system, models
	f.mu.Unlock()
	return f.finish(ctx)
}

func (f *fakeCompleter) finish(ctx context.Context) (string, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeCompleter) calls() (automated, interactive int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.automatedCalls, f.interactiveCalls
}

func sampleSnapshot() *FinanceSnapshot {
	return &FinanceSnapshot{
		PrimaryIndex: &Quote{Price: 5000, Change: 20, ChangePercent: 0.4},
		Equities: map[string]Quote{
			"AAPL": {Price: 180, Change: -1.2, ChangePercent: -0.66},
		},
		Crypto: map[string]Quote{
			"BTC-USD": {Price: 60000, Change: 900, ChangePercent: 1.52},
		},
		Errors: map[string]string{},
	}
}

// setupTestCore creates a Core backed by a temp dir, with fake sources and a
// fake completer. configure may mutate the options before the core opens.
func setupTestCore(t *testing.T, configure func(*Options)) (*Core, *fakeCompleter, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "daybrief-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	completer := &fakeCompleter{text: sampleModelReply}
	options := Options{
		DBPath:      filepath.Join(tmpDir, "test.db"),
		ArchivePath: filepath.Join(tmpDir, "summaries.json"),
		News:        fakeNews{headlines: []Headline{{Title: "Inflation cools", Source: "Wire"}}},
		Trends:      fakeTrends{topics: []TrendingTopic{{Title: "new phone", FormattedTraffic: "500K+"}}},
		Finance:     fakeFinance{snapshot: sampleSnapshot()},
		Completer:   completer,
	}
	if configure != nil {
		configure(&options)
	}

	core, err := OpenWithOptions(options)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to open test core: %v", err)
	}

	cleanup := func() {
		core.Close()
		os.RemoveAll(tmpDir)
	}
	return core, completer, cleanup
}

// fixedClock returns a now func pinned to the given exchange-local time.
func fixedClock(year int, month time.Month, day, hour, minute int) func() time.Time {
	at := time.Date(year, month, day, hour, minute, 0, 0, exchangeLocation)
	return func() time.Time { return at }
}
