package daybrief

import (
	"strings"
	"time"
)

// Regular session bounds in exchange-local time: [09:30, 16:00).
const (
	sessionOpenHour    = 9
	sessionOpenMinute  = 30
	sessionCloseHour   = 16
	sessionCloseMinute = 0
)

const cryptoSuffix = "-USD"

// IsCryptoSymbol reports whether the symbol denotes a USD-quoted crypto pair.
func IsCryptoSymbol(symbol string) bool {
	return strings.HasSuffix(strings.ToUpper(strings.TrimSpace(symbol)), cryptoSuffix)
}

// IsPrimaryIndexSymbol reports whether the symbol denotes the primary index.
func IsPrimaryIndexSymbol(symbol string) bool {
	return strings.HasPrefix(strings.TrimSpace(symbol), "^")
}

// InstrumentTradingAt reports whether the given instrument trades at the
// given instant. Crypto pairs trade around the clock; everything else
// follows the exchange calendar.
func InstrumentTradingAt(symbol string, at time.Time) bool {
	if IsCryptoSymbol(symbol) {
		return true
	}
	return MarketOpenAt(at)
}

// MarketOpenAt reports whether the reference exchange is in continuous
// trading at the given instant. Pure function: no network, no ambient state.
func MarketOpenAt(at time.Time) bool {
	local := at.In(exchangeLocation)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	if isExchangeHoliday(local) {
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	open := sessionOpenHour*60 + sessionOpenMinute
	close := sessionCloseHour*60 + sessionCloseMinute
	return minutes >= open && minutes < close
}

func isExchangeHoliday(local time.Time) bool {
	year := local.Year()
	day := time.Date(year, local.Month(), local.Day(), 0, 0, 0, 0, exchangeLocation)

	for _, h := range observedFixedHolidays(year) {
		if day.Equal(h) {
			return true
		}
	}
	// Next year's New Year's Day observes the Friday before when it falls on
	// a Saturday, which lands in this year's December.
	for _, h := range observedFixedHolidays(year + 1) {
		if day.Equal(h) {
			return true
		}
	}
	for _, h := range floatingHolidays(year) {
		if day.Equal(h) {
			return true
		}
	}
	return false
}

// observedFixedHolidays returns the fixed-date holidays with the exchange's
// weekend observance rule applied: Saturday observes the Friday before,
// Sunday observes the Monday after.
func observedFixedHolidays(year int) []time.Time {
	dates := []time.Time{
		time.Date(year, time.January, 1, 0, 0, 0, 0, exchangeLocation),   // New Year's Day
		time.Date(year, time.June, 19, 0, 0, 0, 0, exchangeLocation),     // Juneteenth
		time.Date(year, time.July, 4, 0, 0, 0, 0, exchangeLocation),      // Independence Day
		time.Date(year, time.December, 25, 0, 0, 0, 0, exchangeLocation), // Christmas
	}
	observed := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		switch d.Weekday() {
		case time.Saturday:
			observed = append(observed, d.AddDate(0, 0, -1))
		case time.Sunday:
			observed = append(observed, d.AddDate(0, 0, 1))
		default:
			observed = append(observed, d)
		}
	}
	return observed
}

func floatingHolidays(year int) []time.Time {
	return []time.Time{
		nthWeekday(year, time.January, time.Monday, 3),    // MLK Day
		nthWeekday(year, time.February, time.Monday, 3),   // Presidents Day
		lastWeekday(year, time.May, time.Monday),          // Memorial Day
		nthWeekday(year, time.September, time.Monday, 1),  // Labor Day
		nthWeekday(year, time.November, time.Thursday, 4), // Thanksgiving
		goodFriday(year),
	}
}

func nthWeekday(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	day := time.Date(year, month, 1, 0, 0, 0, 0, exchangeLocation)
	offset := (int(weekday) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, offset+(n-1)*7)
}

func lastWeekday(year int, month time.Month, weekday time.Weekday) time.Time {
	day := time.Date(year, month+1, 1, 0, 0, 0, 0, exchangeLocation).AddDate(0, 0, -1)
	offset := (int(day.Weekday()) - int(weekday) + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// goodFriday is two days before Easter Sunday, computed with the Gregorian
// (Anonymous/Meeus) computus.
func goodFriday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	easter := time.Date(year, time.Month(month), day, 0, 0, 0, 0, exchangeLocation)
	return easter.AddDate(0, 0, -2)
}

// isWeekendAt reports whether the instant falls on a weekend at the exchange.
func isWeekendAt(at time.Time) bool {
	wd := at.In(exchangeLocation).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
