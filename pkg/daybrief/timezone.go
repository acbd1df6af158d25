package daybrief

import "time"

const exchangeTimeZoneName = "America/New_York"

var exchangeLocation = loadExchangeLocation()

func loadExchangeLocation() *time.Location {
	location, err := time.LoadLocation(exchangeTimeZoneName)
	if err != nil {
		return time.FixedZone(exchangeTimeZoneName, -5*60*60)
	}
	return location
}

// ExchangeLocation returns the reference exchange's time zone, used by the
// scheduler so cron entries fire on exchange-local time.
func ExchangeLocation() *time.Location {
	return exchangeLocation
}

// NowAtExchange returns the current time in the reference exchange's zone.
func NowAtExchange() time.Time {
	return time.Now().In(exchangeLocation)
}

// TodayISOAtExchange returns the current date as YYYY-MM-DD at the exchange.
func TodayISOAtExchange() string {
	return NowAtExchange().Format("2006-01-02")
}

// NowRFC3339AtExchange returns the current RFC3339 timestamp at the exchange.
func NowRFC3339AtExchange() string {
	return NowAtExchange().Format(time.RFC3339)
}
