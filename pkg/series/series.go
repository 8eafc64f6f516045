// Package series holds the normalized OHLCV model shared by providers,
// indicators and the summary layer. Providers convert their loosely typed
// wire payloads into a Series at the boundary; everything downstream works
// on this type only.
package series

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the canonical calendar-day encoding used across providers.
const DateLayout = "2006-01-02"

// Point is a single OHLCV bar keyed by calendar day.
type Point struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Day returns the point's date truncated to a UTC calendar day.
func (p Point) Day() time.Time {
	return Day(p.Date)
}

// Day truncates t to a UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a provider date string in DateLayout form.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("series: parse date %q: %w", s, err)
	}
	return t, nil
}

// Series is an ordered OHLCV sequence, strictly ascending by date with no
// duplicate days.
type Series []Point

// Normalize sorts points ascending by date, drops duplicates (last entry for
// a day wins), rejects negative fields and bars without a positive close,
// and clamps high/low so that high >= max(open, close) and
// low <= min(open, close). Upstream sources do not guarantee the OHLC
// invariant; indicator math assumes it.
func Normalize(points []Point) (Series, error) {
	byDay := make(map[time.Time]Point, len(points))
	for _, p := range points {
		if p.Open < 0 || p.High < 0 || p.Low < 0 || p.Close < 0 || p.Volume < 0 {
			return nil, fmt.Errorf("series: negative field on %s", p.Day().Format(DateLayout))
		}
		if p.Close <= 0 {
			continue
		}
		p.Date = p.Day()
		if hi := max2(p.Open, p.Close); p.High < hi {
			p.High = hi
		}
		if lo := min2(p.Open, p.Close); p.Low > lo || p.Low == 0 {
			p.Low = lo
		}
		byDay[p.Date] = p
	}

	out := make(Series, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// Closes extracts the close column.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Close
	}
	return out
}

// Volumes extracts the volume column.
func (s Series) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Volume
	}
	return out
}

// Last returns the final point. ok is false on an empty series.
func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	return s[len(s)-1], true
}

// LastN returns the trailing n points (the whole series when shorter).
func (s Series) LastN(n int) Series {
	if n <= 0 {
		return Series{}
	}
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Since returns the points dated on or after cutoff.
func (s Series) Since(cutoff time.Time) Series {
	cutoff = Day(cutoff)
	idx := sort.Search(len(s), func(i int) bool {
		return !s[i].Date.Before(cutoff)
	})
	return s[idx:]
}

// TotalVolume sums the volume column. Resampling preserves this exactly.
func (s Series) TotalVolume() float64 {
	var total float64
	for _, p := range s {
		total += p.Volume
	}
	return total
}

func max2(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
