package daybrief

import (
	"strings"
	"testing"
)

func TestParseSectionsFullReply(t *testing.T) {
	sections := ParseSections(sampleModelReply)

	if sections.News != "Markets digested fresh inflation data." {
		t.Fatalf("news = %q", sections.News)
	}
	if sections.Trends != "Technology: a new phone launch led searches." {
		t.Fatalf("trends = %q", sections.Trends)
	}
	if sections.MarketOverview != "The index rose 0.4% in quiet trading." {
		t.Fatalf("market = %q", sections.MarketOverview)
	}
	if sections.ForwardLooking != "Jobs data is due tomorrow morning." {
		t.Fatalf("forward = %q", sections.ForwardLooking)
	}
}

func TestParseSectionsPlainHeaders(t *testing.T) {
	raw := "Today's News Summary: headlines here\nTrending Topics: topics here\nMarket Overview: market here\nLooking Ahead: tomorrow here"
	sections := ParseSections(raw)

	if sections.News != "headlines here" {
		t.Fatalf("news = %q", sections.News)
	}
	if sections.Trends != "topics here" {
		t.Fatalf("trends = %q", sections.Trends)
	}
	if sections.MarketOverview != "market here" {
		t.Fatalf("market = %q", sections.MarketOverview)
	}
	if sections.ForwardLooking != "tomorrow here" {
		t.Fatalf("forward = %q", sections.ForwardLooking)
	}
}

func TestParseSectionsSubsets(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantNews    string
		wantMarket  string
		wantForward string
	}{
		{
			name:       "market only runs to EOF",
			raw:        "**Market Overview:** stocks were mixed\nacross two lines",
			wantMarket: "stocks were mixed\nacross two lines",
		},
		{
			name:     "no headers at all",
			raw:      "The model ignored every instruction.",
			wantNews: "",
		},
		{
			name:        "news then forward, trends and market missing",
			raw:         "**Today's News Summary:** some news\n\n**Looking Ahead:** quiet day expected",
			wantNews:    "some news",
			wantForward: "quiet day expected",
		},
		{
			name: "empty input",
			raw:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sections := ParseSections(tt.raw)
			if sections.News != tt.wantNews {
				t.Fatalf("news = %q, want %q", sections.News, tt.wantNews)
			}
			if sections.MarketOverview != tt.wantMarket {
				t.Fatalf("market = %q, want %q", sections.MarketOverview, tt.wantMarket)
			}
			if sections.ForwardLooking != tt.wantForward {
				t.Fatalf("forward = %q, want %q", sections.ForwardLooking, tt.wantForward)
			}
		})
	}
}

func TestParseSectionsCutsAtHorizontalRule(t *testing.T) {
	raw := "**Market Overview:** the session closed higher\n---\nfooter the model added"
	sections := ParseSections(raw)
	if sections.MarketOverview != "the session closed higher" {
		t.Fatalf("market = %q", sections.MarketOverview)
	}
	if strings.Contains(sections.MarketOverview, "footer") {
		t.Fatalf("rule not trimmed: %q", sections.MarketOverview)
	}
}

func TestParseSectionsMixedSpellings(t *testing.T) {
	raw := "**Today's News Summary:** bold news\nTrending Topics: plain trends"
	sections := ParseSections(raw)
	if sections.News != "bold news" {
		t.Fatalf("news = %q", sections.News)
	}
	if sections.Trends != "plain trends" {
		t.Fatalf("trends = %q", sections.Trends)
	}
}

func TestPromptAndParserRoundTrip(t *testing.T) {
	// The prompt instructs the model to emit the exact headers the parser
	// looks for; a reply that follows the instructions must parse cleanly.
	bundle := CollectedBundle{
		News:    []Headline{{Title: "A headline"}},
		Finance: sampleSnapshot(),
	}
	prompt := BuildPrompt(bundle, false, false, PromptLimits{})
	for _, header := range orderedSectionHeaders {
		if !strings.Contains(prompt, "**"+header+":**") {
			t.Fatalf("prompt missing header instruction for %q", header)
		}
	}
}
