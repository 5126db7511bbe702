package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Supported bar intervals.
const (
	Interval1m  = "1m"
	Interval5m  = "5m"
	Interval15m = "15m"
	Interval30m = "30m"
	Interval1h  = "1h"
	Interval1d  = "1d"
	Interval1wk = "1wk"
)

// Intervals lists every accepted interval token.
var Intervals = []string{Interval1m, Interval5m, Interval15m, Interval30m, Interval1h, Interval1d, Interval1wk}

// Periods lists every accepted relative history token.
var Periods = []string{"1d", "5d", "1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "ytd", "max"}

// BarRequest describes the history window requested from a data provider.
// Either Period is set, or Start/End give an absolute range.
type BarRequest struct {
	Symbol   string
	Period   string
	Start    time.Time
	End      time.Time
	Interval string
}

// HasRange reports whether the request uses an absolute date range.
func (r BarRequest) HasRange() bool {
	return !r.Start.IsZero()
}

// PeriodStart resolves a relative period token against now.
// "max" resolves to the zero time.
func PeriodStart(period string, now time.Time) (time.Time, bool) {
	switch period {
	case "1d":
		return now.AddDate(0, 0, -1), true
	case "5d":
		return now.AddDate(0, 0, -5), true
	case "1mo":
		return now.AddDate(0, -1, 0), true
	case "3mo":
		return now.AddDate(0, -3, 0), true
	case "6mo":
		return now.AddDate(0, -6, 0), true
	case "1y":
		return now.AddDate(-1, 0, 0), true
	case "2y":
		return now.AddDate(-2, 0, 0), true
	case "5y":
		return now.AddDate(-5, 0, 0), true
	case "10y":
		return now.AddDate(-10, 0, 0), true
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), true
	case "max":
		return time.Time{}, true
	}
	return time.Time{}, false
}

// ValidInterval reports whether s is a supported interval token.
func ValidInterval(s string) bool {
	for _, v := range Intervals {
		if v == s {
			return true
		}
	}
	return false
}

// ValidPeriod reports whether s is a supported period token.
func ValidPeriod(s string) bool {
	_, ok := PeriodStart(s, time.Now())
	return ok
}
