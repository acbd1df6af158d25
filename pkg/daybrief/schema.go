package daybrief

import (
	"database/sql"
)

func initDatabase(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS watch_symbols (
			symbol TEXT PRIMARY KEY,
			name TEXT,
			added_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	// One row per calendar date the manual refresh was consumed on.
	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS manual_refreshes (
			refresh_date TEXT PRIMARY KEY,
			used_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return err
	}

	var watchCount int
	if err := tx.QueryRow("SELECT COUNT(*) FROM watch_symbols").Scan(&watchCount); err != nil {
		return err
	}
	if watchCount == 0 {
		for _, d := range defaultWatchSymbols {
			if _, err := tx.Exec("INSERT INTO watch_symbols (symbol, name) VALUES (?, ?)", d.Symbol, d.Name); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func exec(tx *sql.Tx, query string) error {
	_, err := tx.Exec(query)
	return err
}

// defaultWatchSymbols seeds a fresh database: the primary index, a handful of
// large caps, and two crypto pairs so weekend digests have something to cover.
var defaultWatchSymbols = []WatchSymbol{
	{Symbol: "^GSPC", Name: "S&P 500"},
	{Symbol: "AAPL", Name: "Apple"},
	{Symbol: "MSFT", Name: "Microsoft"},
	{Symbol: "GOOGL", Name: "Alphabet"},
	{Symbol: "AMZN", Name: "Amazon"},
	{Symbol: "NVDA", Name: "NVIDIA"},
	{Symbol: "BTC-USD", Name: "Bitcoin"},
	{Symbol: "ETH-USD", Name: "Ethereum"},
}
