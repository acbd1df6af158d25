package daybrief

import "strings"

// ParsedSections holds the four extracted digest sections. A missing header
// in the model reply leaves its field empty; parsing never fails.
type ParsedSections struct {
	News           string
	Trends         string
	MarketOverview string
	ForwardLooking string
}

// sectionMarkers lists the tolerated spellings of each header, checked in
// order: the markdown-emphasized form the prompt asks for, then the plain
// colon form models sometimes fall back to.
func sectionMarkers(header string) []string {
	return []string{"**" + header + ":**", header + ":"}
}

var orderedSectionHeaders = []string{
	sectionHeaderNews,
	sectionHeaderTrends,
	sectionHeaderMarket,
	sectionHeaderForward,
}

// ParseSections extracts the four named sections from a model reply using
// ordered marker segmentation. Each section's content runs from its header
// to the next located header, a horizontal rule, or end of text. Any subset
// of headers is accepted.
func ParseSections(raw string) ParsedSections {
	type located struct {
		header string
		start  int // index of first content byte after the marker
		at     int // index of the marker itself
	}

	var found []located
	searchFrom := 0
	for _, header := range orderedSectionHeaders {
		idx, markerLen := findMarker(raw, header, searchFrom)
		if idx < 0 {
			continue
		}
		found = append(found, located{header: header, start: idx + markerLen, at: idx})
		searchFrom = idx + markerLen
	}

	var sections ParsedSections
	for i, f := range found {
		end := len(raw)
		if i+1 < len(found) {
			end = found[i+1].at
		}
		content := trimSectionContent(raw[f.start:end])
		switch f.header {
		case sectionHeaderNews:
			sections.News = content
		case sectionHeaderTrends:
			sections.Trends = content
		case sectionHeaderMarket:
			sections.MarketOverview = content
		case sectionHeaderForward:
			sections.ForwardLooking = content
		}
	}
	return sections
}

func findMarker(raw, header string, from int) (int, int) {
	best := -1
	bestLen := 0
	for _, marker := range sectionMarkers(header) {
		idx := indexFrom(raw, marker, from)
		if idx < 0 {
			continue
		}
		if best < 0 || idx < best {
			best = idx
			bestLen = len(marker)
		}
	}
	return best, bestLen
}

func indexFrom(s, substr string, from int) int {
	if from >= len(s) {
		return -1
	}
	idx := strings.Index(s[from:], substr)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// trimSectionContent trims whitespace and cuts the section at a horizontal
// rule, which some models emit between sections.
func trimSectionContent(content string) string {
	for _, rule := range []string{"\n---", "\n***", "\n___"} {
		if idx := strings.Index(content, rule); idx >= 0 {
			content = content[:idx]
		}
	}
	return strings.TrimSpace(content)
}
