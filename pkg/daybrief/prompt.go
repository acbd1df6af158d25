package daybrief

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Section header literals. The prompt builder instructs the model to emit
// these exact headers and the section parser locates them again; the two
// must stay in lockstep.
const (
	sectionHeaderNews    = "Today's News Summary"
	sectionHeaderTrends  = "Trending Topics"
	sectionHeaderMarket  = "Market Overview"
	sectionHeaderForward = "Looking Ahead"
)

// summarySystemInstruction is fixed to every completion request. It pins the
// model to a factual reporting register with magnitude-banded language for
// percentage moves.
const summarySystemInstruction = `You are a financial news writer producing a factual daily digest.
Report only what the supplied data supports. No speculation, no embellishment, no investment advice.
Describe percentage moves with banded language: below 1% in either direction is "slight" or "little changed";
reserve dramatic words (surged, plunged, soared, crashed) for moves above 10%; use neutral verbs (rose, fell,
gained, declined) for everything in between. Write in plain prose under the exact section headers requested.`

// PromptLimits carries the per-section word ceilings. Zero values fall back
// to the defaults below.
type PromptLimits struct {
	NewsWords    int
	TrendsWords  int
	MarketWords  int
	ForwardWords int
}

const (
	defaultNewsWords    = 400
	defaultTrendsWords  = 300
	defaultMarketWords  = 500
	defaultForwardWords = 300
)

func (l PromptLimits) withDefaults() PromptLimits {
	if l.NewsWords <= 0 {
		l.NewsWords = defaultNewsWords
	}
	if l.TrendsWords <= 0 {
		l.TrendsWords = defaultTrendsWords
	}
	if l.MarketWords <= 0 {
		l.MarketWords = defaultMarketWords
	}
	if l.ForwardWords <= 0 {
		l.ForwardWords = defaultForwardWords
	}
	return l
}

// BuildPrompt assembles the single instruction string for one generation
// attempt. It is deterministic for a given bundle and flag set.
func BuildPrompt(bundle CollectedBundle, isWeekend, marketClosed bool, limits PromptLimits) string {
	limits = limits.withDefaults()
	var sb strings.Builder

	sb.WriteString("Write today's digest from the data below.\n\n")

	writeNewsInput(&sb, bundle.News)
	writeTrendsInput(&sb, bundle.Trends)
	writeMarketInput(&sb, bundle.Finance, isWeekend, marketClosed)
	writeOutputFormat(&sb, limits)

	return sb.String()
}

func writeNewsInput(sb *strings.Builder, news []Headline) {
	sb.WriteString("== News headlines ==\n")
	if len(news) == 0 {
		sb.WriteString("News headlines are unavailable today. State that plainly in the news section.\n\n")
		return
	}
	for _, h := range news {
		line := h.Title
		if h.Description != "" {
			line += " - " + h.Description
		}
		if h.Source != "" {
			line += " (" + h.Source + ")"
		}
		sb.WriteString("- " + line + "\n")
	}
	sb.WriteString("\n")
}

func writeTrendsInput(sb *strings.Builder, trends []TrendingTopic) {
	sb.WriteString("== Trending searches ==\n")
	if len(trends) == 0 {
		sb.WriteString("Trending search data is unavailable today. State that plainly in the trends section.\n\n")
		return
	}
	for _, t := range trends {
		line := t.Title
		if t.FormattedTraffic != "" {
			line += " (" + t.FormattedTraffic + " searches)"
		}
		sb.WriteString("- " + line + "\n")
	}
	sb.WriteString("Group the topics by theme (entertainment, sports, technology, politics, and so on); put anything ambiguous under \"Other\".\n\n")
}

func writeMarketInput(sb *strings.Builder, finance *FinanceSnapshot, isWeekend, marketClosed bool) {
	sb.WriteString("== Market data ==\n")
	if finance.QuoteCount() == 0 {
		sb.WriteString("Market data is unavailable today. State that plainly in the market section.\n\n")
		return
	}

	switch {
	case isWeekend:
		sb.WriteString("It is the weekend and equity markets are closed. Cover only the cryptocurrency moves below.\n")
		writeQuoteLines(sb, nil, nil, finance.Crypto)
	case marketClosed:
		sb.WriteString("The trading session has ended. Recap the full session: cover every equity symbol listed below individually, not just the index, then the cryptocurrencies.\n")
		writeQuoteLines(sb, finance.PrimaryIndex, finance.Equities, finance.Crypto)
	default:
		sb.WriteString("The market is currently open. Describe the live session so far: cover every equity symbol listed below individually, not just the index, then the cryptocurrencies.\n")
		writeQuoteLines(sb, finance.PrimaryIndex, finance.Equities, finance.Crypto)
	}
	sb.WriteString("\n")
}

func writeQuoteLines(sb *strings.Builder, index *Quote, equities, crypto map[string]Quote) {
	if index != nil {
		sb.WriteString("- Index: " + formatQuoteLine(*index) + "\n")
	}
	for _, symbol := range sortedQuoteSymbols(equities) {
		sb.WriteString("- " + symbol + ": " + formatQuoteLine(equities[symbol]) + "\n")
	}
	for _, symbol := range sortedQuoteSymbols(crypto) {
		sb.WriteString("- " + symbol + ": " + formatQuoteLine(crypto[symbol]) + "\n")
	}
}

func formatQuoteLine(q Quote) string {
	line := fmt.Sprintf("%.2f (%+.2f, %+.2f%%)", q.Price, q.Change, q.ChangePercent)
	if band := magnitudeBand(q.ChangePercent); band != "" {
		line += ", a " + band + " move"
	}
	if q.AsOf != "" {
		line += ", as of " + q.AsOf
	}
	return line
}

// magnitudeBand classifies a percent move into the banded vocabulary the
// system instruction enforces.
func magnitudeBand(changePercent float64) string {
	abs := decimal.NewFromFloat(changePercent).Abs()
	switch {
	case abs.LessThan(decimal.NewFromInt(1)):
		return "slight"
	case abs.GreaterThan(decimal.NewFromInt(10)):
		return "dramatic"
	default:
		return "moderate"
	}
}

func writeOutputFormat(sb *strings.Builder, limits PromptLimits) {
	sb.WriteString("== Output format ==\n")
	sb.WriteString("Respond with exactly four sections using these exact headers, each on its own line:\n")
	fmt.Fprintf(sb, "**%s:** at most %d words.\n", sectionHeaderNews, limits.NewsWords)
	fmt.Fprintf(sb, "**%s:** at most %d words.\n", sectionHeaderTrends, limits.TrendsWords)
	fmt.Fprintf(sb, "**%s:** at most %d words.\n", sectionHeaderMarket, limits.MarketWords)
	fmt.Fprintf(sb, "**%s:** at most %d words, a brief factual note on what the coming day holds.\n", sectionHeaderForward, limits.ForwardWords)
}

func sortedQuoteSymbols(quotes map[string]Quote) []string {
	symbols := make([]string, 0, len(quotes))
	for symbol := range quotes {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}
