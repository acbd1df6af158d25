package daybrief

import (
	"database/sql"
	"strings"
)

// GetWatchSymbols returns all watchlist entries ordered by symbol.
func (c *Core) GetWatchSymbols() ([]WatchSymbol, error) {
	rows, err := c.db.Query("SELECT symbol, name, added_at FROM watch_symbols ORDER BY symbol")
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "list watch symbols", err)
	}
	defer rows.Close()

	var symbols []WatchSymbol
	for rows.Next() {
		var ws WatchSymbol
		var name, addedAt sql.NullString
		if err := rows.Scan(&ws.Symbol, &name, &addedAt); err != nil {
			return nil, WrapError(ErrCodeDatabase, "scan watch symbol", err)
		}
		ws.Name = name.String
		ws.AddedAt = addedAt.String
		symbols = append(symbols, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeDatabase, "iterate watch symbols", err)
	}
	return symbols, nil
}

// watchSymbolList returns just the ticker strings for the finance collector.
func (c *Core) watchSymbolList() ([]string, error) {
	entries, err := c.GetWatchSymbols()
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(entries))
	for _, e := range entries {
		symbols = append(symbols, e.Symbol)
	}
	return symbols, nil
}

// AddWatchSymbol inserts a watchlist entry. Symbols are stored upper-cased;
// re-adding an existing symbol updates its display name.
func (c *Core) AddWatchSymbol(symbol, name string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return NewError(ErrCodeInvalidInput, "symbol is required")
	}
	_, err := c.db.Exec(`
		INSERT INTO watch_symbols (symbol, name) VALUES (?, ?)
		ON CONFLICT(symbol) DO UPDATE SET name = excluded.name
	`, symbol, strings.TrimSpace(name))
	if err != nil {
		return WrapError(ErrCodeDatabase, "add watch symbol", err)
	}
	return nil
}

// RemoveWatchSymbol deletes a watchlist entry. Removing an unknown symbol
// returns a NOT_FOUND error.
func (c *Core) RemoveWatchSymbol(symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return NewError(ErrCodeInvalidInput, "symbol is required")
	}
	res, err := c.db.Exec("DELETE FROM watch_symbols WHERE symbol = ?", symbol)
	if err != nil {
		return WrapError(ErrCodeDatabase, "remove watch symbol", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NewError(ErrCodeNotFound, "symbol not on watchlist: "+symbol)
	}
	return nil
}

// manualRefreshUsed reports whether the manual refresh was already consumed
// on the given date.
func (c *Core) manualRefreshUsed(date string) (bool, error) {
	var count int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM manual_refreshes WHERE refresh_date = ?", date).Scan(&count); err != nil {
		return false, WrapError(ErrCodeDatabase, "check manual refresh", err)
	}
	return count > 0, nil
}

// markManualRefresh records that the manual refresh was consumed on the given
// date. Idempotent for the same date.
func (c *Core) markManualRefresh(date string) error {
	_, err := c.db.Exec("INSERT OR IGNORE INTO manual_refreshes (refresh_date) VALUES (?)", date)
	if err != nil {
		return WrapError(ErrCodeDatabase, "mark manual refresh", err)
	}
	return nil
}
