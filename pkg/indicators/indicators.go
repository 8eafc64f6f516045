// Package indicators computes technical indicators over an OHLCV series.
// Every function guards its own minimum-data requirement and returns a
// documented fallback instead of an error: the summary layer always emits a
// line per timeframe, so missing data degrades field by field.
package indicators

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"tickerlens-api/pkg/series"
)

const (
	// DefaultRSIPeriod is the trailing window used by RSI when unspecified.
	DefaultRSIPeriod = 14
	// DefaultATRPeriod is the trailing window used by ATR when unspecified.
	DefaultATRPeriod = 14

	macdMinPoints = 35
)

// RSI returns the Relative Strength Index over the trailing period+1 closes,
// using simple averages of up-moves and down-moves. Falls back to the neutral
// 50 when fewer than period+1 closes are available; returns 100 when the
// average loss is zero and 0 when the average gain is zero with losses
// present.
func RSI(s series.Series, period int) float64 {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	closes := s.Closes()
	if len(closes) < period+1 {
		return 50
	}
	closes = closes[len(closes)-(period+1):]

	var gains, losses float64
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	switch {
	case avgLoss == 0:
		return 100
	case avgGain == 0:
		return 0
	default:
		return 100 - 100/(1+avgGain/avgLoss)
	}
}

// SMA returns the arithmetic mean of the last period closes. When the series
// is shorter than period it degrades to the latest close, and to 0 on an
// empty series.
func SMA(s series.Series, period int) float64 {
	closes := s.Closes()
	if len(closes) == 0 {
		return 0
	}
	if period <= 0 || len(closes) < period {
		return closes[len(closes)-1]
	}
	return stat.Mean(closes[len(closes)-period:], nil)
}

// EMA returns the exponential moving average as a NaN-padded slice of the
// same length as the input: values before the seed window fills are NaN. The
// seed is the SMA of the first period values and the recurrence uses
// k = 2/(period+1).
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(values) < period {
		return out
	}

	seed := stat.Mean(values[:period], nil)
	out[period-1] = seed

	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		prev := out[i-1]
		if math.IsNaN(values[i]) {
			out[i] = prev
			continue
		}
		if math.IsNaN(prev) {
			prev = seed
		}
		out[i] = values[i]*k + prev*(1-k)
	}
	return out
}

// LastEMA is the final EMA value over the series closes, or NaN when the
// window never fills.
func LastEMA(s series.Series, period int) float64 {
	ema := EMA(s.Closes(), period)
	if len(ema) == 0 {
		return math.NaN()
	}
	return ema[len(ema)-1]
}

// MACD returns the Moving Average Convergence Divergence (EMA12 minus EMA26)
// and its 9-period signal line. Both report as zero when fewer than 35 points
// are available.
func MACD(s series.Series) (macd, signal float64) {
	closes := s.Closes()
	if len(closes) < macdMinPoints {
		return 0, 0
	}

	ema12 := EMA(closes, 12)
	ema26 := EMA(closes, 26)
	line := make([]float64, len(closes))
	for i := range closes {
		if math.IsNaN(ema12[i]) || math.IsNaN(ema26[i]) {
			line[i] = math.NaN()
		} else {
			line[i] = ema12[i] - ema26[i]
		}
	}

	signalLine := EMA(compact(line), 9)
	macd = line[len(line)-1]
	if len(signalLine) > 0 {
		signal = signalLine[len(signalLine)-1]
	}
	if math.IsNaN(macd) {
		macd = 0
	}
	if math.IsNaN(signal) {
		signal = 0
	}
	return macd, signal
}

// OBV returns the cumulative On-Balance Volume series seeded at 0: volume is
// added on an up-close, subtracted on a down-close and carried unchanged on a
// flat close.
func OBV(s series.Series) []float64 {
	out := make([]float64, len(s))
	if len(s) == 0 {
		return out
	}
	for i := 1; i < len(s); i++ {
		switch {
		case s[i].Close > s[i-1].Close:
			out[i] = out[i-1] + s[i].Volume
		case s[i].Close < s[i-1].Close:
			out[i] = out[i-1] - s[i].Volume
		default:
			out[i] = out[i-1]
		}
	}
	return out
}

// ATR returns the mean true range over the trailing period bars. True range
// needs the prior close, so the series must hold period+1 points; otherwise
// ATR reports 0.
func ATR(s series.Series, period int) float64 {
	if period <= 0 {
		period = DefaultATRPeriod
	}
	if len(s) < period+1 {
		return 0
	}

	window := s[len(s)-(period+1):]
	var sum float64
	for i := 1; i < len(window); i++ {
		highLow := window[i].High - window[i].Low
		highClose := math.Abs(window[i].High - window[i-1].Close)
		lowClose := math.Abs(window[i].Low - window[i-1].Close)
		sum += math.Max(highLow, math.Max(highClose, lowClose))
	}
	return sum / float64(period)
}

// compact drops leading NaNs so a dependent EMA seeds from the first real
// value.
func compact(values []float64) []float64 {
	for i, v := range values {
		if !math.IsNaN(v) {
			return values[i:]
		}
	}
	return nil
}
