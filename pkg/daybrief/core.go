package daybrief

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Options controls Core initialization.
type Options struct {
	DBPath      string
	ArchivePath string
	Logger      *slog.Logger

	// Digest region. Defaults to en/US.
	Language string
	Country  string

	// Model preference order for the completion client.
	Models []string

	NewsAPIKey      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GeminiAPIKey    string

	// DevMode bypasses the once-per-day manual refresh quota.
	DevMode bool

	// ManualTimeout bounds one manual generation attempt end to end.
	ManualTimeout time.Duration

	PromptLimits PromptLimits

	// Injection points for tests. Nil fields get real implementations.
	News      NewsSource
	Trends    TrendsSource
	Finance   FinanceSource
	Completer Completer
	Now       func() time.Time
}

// Core provides access to Daily Brief business logic and storage.
type Core struct {
	db     *sql.DB
	logger *slog.Logger
	dbPath string

	store   *SummaryStore
	news    NewsSource
	trends  TrendsSource
	finance FinanceSource
	llm     Completer

	language      string
	country       string
	models        []string
	devMode       bool
	manualTimeout time.Duration
	promptLimits  PromptLimits
	now           func() time.Time

	genMu              sync.Mutex
	isGenerating       bool
	lastGenerationDate string
}

// defaultModels is the fallback preference order when none is configured.
var defaultModels = []string{"gemini-2.5-flash", "gpt-4o-mini", "claude-3-5-haiku-latest"}

// Open initializes a Core using the provided database path.
func Open(dbPath string) (*Core, error) {
	return OpenWithOptions(Options{DBPath: dbPath})
}

// OpenWithOptions initializes a Core using the provided options.
func OpenWithOptions(opts Options) (*Core, error) {
	if opts.DBPath == "" {
		return nil, errors.New("db path is required")
	}
	cleanPath := filepath.Clean(opts.DBPath)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite performs best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("pragma busy_timeout failed", "err", err)
	}

	if err := initDatabase(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}

	archivePath := opts.ArchivePath
	if archivePath == "" {
		archivePath = filepath.Join(filepath.Dir(cleanPath), "summaries.json")
	}

	language := normalizeLanguage(opts.Language)
	country := normalizeCountry(opts.Country)

	news := opts.News
	if news == nil && opts.NewsAPIKey != "" {
		news = newNewsCollector(newsCollectorOptions{
			Logger:   logger,
			APIKey:   opts.NewsAPIKey,
			Country:  country,
			Language: language,
		})
	}
	trends := opts.Trends
	if trends == nil {
		trends = newTrendsCollector(trendsCollectorOptions{
			Logger:   logger,
			Geo:      country,
			Language: language,
		})
	}
	finance := opts.Finance
	if finance == nil {
		finance = newFinanceCollector(financeCollectorOptions{Logger: logger})
	}
	completer := opts.Completer
	if completer == nil {
		completer = newCompletionClient(completionClientOptions{
			Logger:          logger,
			OpenAIAPIKey:    opts.OpenAIAPIKey,
			AnthropicAPIKey: opts.AnthropicAPIKey,
			GeminiAPIKey:    opts.GeminiAPIKey,
		})
	}

	models := dedupeModels(opts.Models)
	if len(models) == 0 {
		models = defaultModels
	}
	nowFn := opts.Now
	if nowFn == nil {
		nowFn = time.Now
	}

	return &Core{
		db:            db,
		logger:        logger,
		dbPath:        cleanPath,
		store:         NewSummaryStore(archivePath, logger),
		news:          news,
		trends:        trends,
		finance:       finance,
		llm:           completer,
		language:      language,
		country:       country,
		models:        models,
		devMode:       opts.DevMode,
		manualTimeout: defaultDuration(opts.ManualTimeout, 3*time.Minute),
		promptLimits:  opts.PromptLimits,
		now:           nowFn,
	}, nil
}

// Close releases database resources.
func (c *Core) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DBPath returns the underlying database path.
func (c *Core) DBPath() string {
	return c.dbPath
}

// Store exposes the summary archive for read handlers.
func (c *Core) Store() *SummaryStore {
	return c.store
}

func defaultDuration(v time.Duration, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return v
}
