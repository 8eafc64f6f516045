package market

import (
	"time"

	"tickerlens-api/pkg/series"
)

// QuoteStatus reports how fresh a bundle's underlying session data is.
// A stale session is a correctness gate, not a warning: indicators computed
// from a prior session's close must not feed the advisor.
type QuoteStatus struct {
	LastRefreshed string `json:"lastRefreshed"`
	IsStale       bool   `json:"isStale"`
}

// MostRecentCompletedTradingDay returns the latest weekday strictly before
// now's calendar date. The current day is never considered complete, and
// Saturday/Sunday roll back to the preceding Friday, so a Monday resolves to
// the prior Friday.
func MostRecentCompletedTradingDay(now time.Time) time.Time {
	d := series.Day(now).AddDate(0, 0, -1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// NewQuoteStatus derives staleness by comparing the last-refreshed calendar
// date against the most recently completed trading day. An unparsable stamp
// is treated as stale, erring on the side of suppressing analysis.
func NewQuoteStatus(lastRefreshed string, now time.Time) QuoteStatus {
	status := QuoteStatus{LastRefreshed: lastRefreshed}

	stamp := lastRefreshed
	if len(stamp) > len(series.DateLayout) {
		stamp = stamp[:len(series.DateLayout)]
	}
	refreshed, err := series.ParseDate(stamp)
	if err != nil {
		status.IsStale = true
		return status
	}

	status.IsStale = refreshed.Before(MostRecentCompletedTradingDay(now))
	return status
}
