package daybrief

// SummaryRecord is one generated digest for one (date, language, country)
// triple. The JSON field names match the archive layout written by earlier
// releases: the market overview section is stored under "finance" and the
// forward-looking commentary under "overall".
type SummaryRecord struct {
	Date           string `json:"date,omitempty"`
	Language       string `json:"language,omitempty"`
	Country        string `json:"country,omitempty"`
	News           string `json:"news"`
	Trends         string `json:"trends"`
	MarketOverview string `json:"finance"`
	ForwardLooking string `json:"overall"`
	GeneratedAt    string `json:"generatedAt"`
	MarketWasOpen  bool   `json:"marketOpen"`
	Automated      bool   `json:"automated"`
}

// HasContent reports whether any of the four sections is non-empty.
func (r SummaryRecord) HasContent() bool {
	return r.News != "" || r.Trends != "" || r.MarketOverview != "" || r.ForwardLooking != ""
}

// ArchiveEntry is one flattened row returned by ListAll for archive browsing.
type ArchiveEntry struct {
	Date        string `json:"date"`
	Language    string `json:"language"`
	Country     string `json:"country"`
	GeneratedAt string `json:"generated_at"`
	Automated   bool   `json:"automated"`
	HasContent  bool   `json:"has_content"`
}

// Headline is one normalized news item.
type Headline struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// TrendingTopic is one normalized search-trend item.
type TrendingTopic struct {
	Title            string `json:"title"`
	FormattedTraffic string `json:"formattedTraffic"`
}

// Quote is one instrument's latest price snapshot.
type Quote struct {
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	AsOf          string  `json:"asOf"`
}

// FinanceSnapshot groups collected quotes by instrument class. Symbols that
// failed to resolve are recorded per-symbol in Errors and never abort the
// batch.
type FinanceSnapshot struct {
	PrimaryIndex *Quote            `json:"primaryIndex,omitempty"`
	Equities     map[string]Quote  `json:"equities"`
	Crypto       map[string]Quote  `json:"crypto"`
	Errors       map[string]string `json:"errors,omitempty"`
}

// QuoteCount returns the number of quotes collected across all classes.
func (s *FinanceSnapshot) QuoteCount() int {
	if s == nil {
		return 0
	}
	n := len(s.Equities) + len(s.Crypto)
	if s.PrimaryIndex != nil {
		n++
	}
	return n
}

// CollectedBundle is the ephemeral per-attempt data set fed to the prompt
// builder. A nil field means the source was unavailable; an empty non-nil
// slice means the fetch succeeded with nothing to report.
type CollectedBundle struct {
	News    []Headline
	Trends  []TrendingTopic
	Finance *FinanceSnapshot
}

// HasNews reports whether the news source produced at least one headline.
func (b CollectedBundle) HasNews() bool {
	return len(b.News) > 0
}

// HasFinance reports whether at least one quote was collected.
func (b CollectedBundle) HasFinance() bool {
	return b.Finance.QuoteCount() > 0
}

// Sufficient reports whether the bundle carries enough data to generate a
// digest. Trends alone are never sufficient.
func (b CollectedBundle) Sufficient() bool {
	return b.HasNews() || b.HasFinance()
}

// GenerationStatus describes the orchestrator's in-memory state.
type GenerationStatus struct {
	IsGenerating       bool   `json:"is_generating"`
	LastGenerationDate string `json:"last_generation_date,omitempty"`
}

// WatchSymbol is one configured watchlist entry fetched by the finance
// collector.
type WatchSymbol struct {
	Symbol  string `json:"symbol"`
	Name    string `json:"name,omitempty"`
	AddedAt string `json:"added_at,omitempty"`
}
