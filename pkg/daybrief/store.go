package daybrief

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultLanguage and DefaultCountry label records written by releases
	// that predate multi-region archives.
	DefaultLanguage = "en"
	DefaultCountry  = "US"

	archiveFileMode = 0o644
)

// SummaryStore persists generated digests in a single JSON archive file keyed
// by ISO date. Each date maps to a list of records, one per (language,
// country) pair. All access goes through an internal mutex, so concurrent
// saves never lose updates.
type SummaryStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// NewSummaryStore creates a store backed by the archive file at path. The
// file is created lazily on first save.
func NewSummaryStore(path string, logger *slog.Logger) *SummaryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryStore{path: path, logger: logger}
}

// Save inserts or replaces the record for its (date, language, country)
// triple. Records for other pairs under the same date are preserved.
func (s *SummaryStore) Save(record SummaryRecord) error {
	if _, err := time.Parse("2006-01-02", record.Date); err != nil {
		return NewError(ErrCodeInvalidInput, fmt.Sprintf("invalid date %q", record.Date))
	}
	record.Language = normalizeLanguage(record.Language)
	record.Country = normalizeCountry(record.Country)

	s.mu.Lock()
	defer s.mu.Unlock()

	archive := s.loadArchive()
	bucket := archive[record.Date]

	replaced := false
	for i, existing := range bucket {
		if existing.Language == record.Language && existing.Country == record.Country {
			bucket[i] = record
			replaced = true
			break
		}
	}
	if !replaced {
		bucket = append(bucket, record)
	}
	archive[record.Date] = bucket

	if err := s.writeArchive(archive); err != nil {
		return WrapError(ErrCodeStore, "write summary archive", err)
	}
	s.logger.Info("summary saved",
		"date", record.Date, "language", record.Language, "country", record.Country,
		"automated", record.Automated)
	return nil
}

// Load returns the record for the given triple. Language and country default
// to en/US when empty. Returns a NOT_FOUND error when no record exists.
func (s *SummaryStore) Load(date, language, country string) (*SummaryRecord, error) {
	language = normalizeLanguage(language)
	country = normalizeCountry(country)

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket := s.loadArchive()[date]
	for _, record := range bucket {
		if record.Language == language && record.Country == country {
			r := record
			return &r, nil
		}
	}
	return nil, NewError(ErrCodeNotFound, fmt.Sprintf("no summary for %s (%s-%s)", date, language, country))
}

// ListAll returns one entry per stored record, newest date first. Keys that
// do not parse as ISO dates are skipped.
func (s *SummaryStore) ListAll() []ArchiveEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	archive := s.loadArchive()
	dates := make([]string, 0, len(archive))
	for date := range archive {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			s.logger.Warn("skipping malformed archive key", "key", date)
			continue
		}
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	var entries []ArchiveEntry
	for _, date := range dates {
		for _, record := range archive[date] {
			entries = append(entries, ArchiveEntry{
				Date:        date,
				Language:    record.Language,
				Country:     record.Country,
				GeneratedAt: record.GeneratedAt,
				Automated:   record.Automated,
				HasContent:  record.HasContent(),
			})
		}
	}
	return entries
}

// loadArchive reads and normalizes the archive file. A missing or unreadable
// file yields an empty archive; corruption is logged, never fatal. Callers
// must hold s.mu.
func (s *SummaryStore) loadArchive() map[string][]SummaryRecord {
	archive := map[string][]SummaryRecord{}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("read summary archive", "path", s.path, "err", err)
		}
		return archive
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("summary archive corrupt, starting empty", "path", s.path, "err", err)
		return archive
	}

	for date, value := range raw {
		bucket, err := decodeArchiveBucket(date, value)
		if err != nil {
			s.logger.Warn("skipping unreadable archive bucket", "date", date, "err", err)
			continue
		}
		archive[date] = bucket
	}
	return archive
}

// decodeArchiveBucket accepts the three shapes the archive has carried over
// time: a list of tagged records, a single tagged record, and the original
// untagged single record which belongs to the en/US bucket.
func decodeArchiveBucket(date string, value json.RawMessage) ([]SummaryRecord, error) {
	var list []SummaryRecord
	if err := json.Unmarshal(value, &list); err == nil {
		for i := range list {
			list[i].Date = date
			list[i].Language = normalizeLanguage(list[i].Language)
			list[i].Country = normalizeCountry(list[i].Country)
		}
		return list, nil
	}

	var single SummaryRecord
	if err := json.Unmarshal(value, &single); err != nil {
		return nil, err
	}
	single.Date = date
	single.Language = normalizeLanguage(single.Language)
	single.Country = normalizeCountry(single.Country)
	return []SummaryRecord{single}, nil
}

// writeArchive serializes via a temp file and rename so a crash mid-write
// never truncates the archive. Callers must hold s.mu.
func (s *SummaryStore) writeArchive(archive map[string][]SummaryRecord) error {
	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create archive directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, archiveFileMode); err != nil {
		return fmt.Errorf("write archive temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace archive file: %w", err)
	}
	return nil
}

func normalizeLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return DefaultLanguage
	}
	return language
}

func normalizeCountry(country string) string {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return DefaultCountry
	}
	return country
}
