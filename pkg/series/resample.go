package series

import "time"

// ResampleWeekly groups consecutive daily bars into weekly buckets terminated
// on Fridays. A trailing partial week becomes a final bucket of its own.
// Aggregation: open=first, high=max, low=min, close=last, volume=sum.
func ResampleWeekly(daily Series) Series {
	var out Series
	var bucket Series
	for _, p := range daily {
		bucket = append(bucket, p)
		if p.Date.Weekday() == time.Friday {
			out = append(out, collapse(bucket))
			bucket = nil
		}
	}
	if len(bucket) > 0 {
		out = append(out, collapse(bucket))
	}
	return out
}

// ResampleMonthly groups daily bars into calendar-month buckets with the same
// aggregation rule as ResampleWeekly.
func ResampleMonthly(daily Series) Series {
	var out Series
	var bucket Series
	for _, p := range daily {
		if len(bucket) > 0 && !sameMonth(bucket[0].Date, p.Date) {
			out = append(out, collapse(bucket))
			bucket = nil
		}
		bucket = append(bucket, p)
	}
	if len(bucket) > 0 {
		out = append(out, collapse(bucket))
	}
	return out
}

// collapse folds a non-empty bucket into a single bar dated at the bucket's
// final day.
func collapse(bucket Series) Point {
	agg := Point{
		Date: bucket[len(bucket)-1].Date,
		Open: bucket[0].Open,
		High: bucket[0].High,
		Low:  bucket[0].Low,
	}
	for _, p := range bucket {
		if p.High > agg.High {
			agg.High = p.High
		}
		if p.Low < agg.Low {
			agg.Low = p.Low
		}
		agg.Volume += p.Volume
	}
	agg.Close = bucket[len(bucket)-1].Close
	return agg
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
