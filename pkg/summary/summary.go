// Package summary renders indicator state into the fixed-shape textual
// digest fed to the recommendation advisor. The digest is the sole mechanism
// for compressing indicator state into prompt-ready text, so field order is
// fixed and the output is deterministic for a given series.
package summary

import (
	"fmt"
	"strings"

	"tickerlens-api/pkg/indicators"
	"tickerlens-api/pkg/market"
	"tickerlens-api/pkg/series"
)

// Per-field minimum lengths. Each field degrades to "insufficient data" on
// its own; the line is emitted regardless.
const (
	rsiMinPoints    = indicators.DefaultRSIPeriod + 1
	atrMinPoints    = indicators.DefaultATRPeriod + 1
	sma20MinPoints  = 1 // SMA degrades to last close on short data
	smaTrendMin     = 200
	macdMinPoints   = 35
	obvMinPoints    = 2
	insufficient    = indicators.Insufficient
	fieldSeparator  = " | "
	timeframePrefix = "[%s]"
)

// Line renders the digest line for one timeframe: price, RSI, price/SMA20
// relationship, SMA50-vs-SMA200 trend, MACD vs signal, OBV direction, ATR and
// volume classification, in that order.
func Line(timeframe string, s series.Series) string {
	fields := []string{
		priceField(s),
		rsiField(s),
		smaField(s),
		smaTrendField(s),
		macdField(s),
		obvField(s),
		atrField(s),
		volumeField(s),
	}
	return fmt.Sprintf(timeframePrefix, timeframe) + " " + strings.Join(fields, fieldSeparator)
}

// BundleDigest renders one line per timeframe in canonical order.
func BundleDigest(b *market.Bundle) string {
	var lines []string
	for _, view := range b.Views() {
		lines = append(lines, Line(view.Timeframe, view.Series))
	}
	return strings.Join(lines, "\n")
}

func priceField(s series.Series) string {
	last, ok := s.Last()
	if !ok {
		return "price: " + insufficient
	}
	return fmt.Sprintf("price=%.2f", last.Close)
}

func rsiField(s series.Series) string {
	if len(s) < rsiMinPoints {
		return "RSI14: " + insufficient
	}
	rsi := indicators.RSI(s, indicators.DefaultRSIPeriod)
	label := "neutral"
	switch {
	case rsi >= 70:
		label = "overbought"
	case rsi <= 30:
		label = "oversold"
	}
	return fmt.Sprintf("RSI14=%.1f (%s)", rsi, label)
}

func smaField(s series.Series) string {
	last, ok := s.Last()
	if !ok {
		return "SMA20: " + insufficient
	}
	sma := indicators.SMA(s, 20)
	rel := "below"
	if last.Close >= sma {
		rel = "above"
	}
	return fmt.Sprintf("price %s SMA20 (%.2f)", rel, sma)
}

func smaTrendField(s series.Series) string {
	if len(s) < smaTrendMin {
		return "SMA50/SMA200: " + insufficient
	}
	sma50 := indicators.SMA(s, 50)
	sma200 := indicators.SMA(s, 200)
	if sma50 >= sma200 {
		return fmt.Sprintf("SMA50>SMA200 (%s)", indicators.TrendBullish)
	}
	return fmt.Sprintf("SMA50<SMA200 (%s)", indicators.TrendBearish)
}

func macdField(s series.Series) string {
	if len(s) < macdMinPoints {
		return "MACD: " + insufficient
	}
	macd, signal := indicators.MACD(s)
	rel := "below signal"
	if macd >= signal {
		rel = "above signal"
	}
	return fmt.Sprintf("MACD=%.3f signal=%.3f (%s)", macd, signal, rel)
}

func obvField(s series.Series) string {
	if len(s) < obvMinPoints {
		return "OBV: " + insufficient
	}
	obv := indicators.OBV(s)
	last, prev := obv[len(obv)-1], obv[len(obv)-2]
	switch {
	case last > prev:
		return "OBV rising"
	case last < prev:
		return "OBV falling"
	default:
		return "OBV flat"
	}
}

func atrField(s series.Series) string {
	if len(s) < atrMinPoints {
		return "ATR14: " + insufficient
	}
	return fmt.Sprintf("ATR14=%.2f", indicators.ATR(s, indicators.DefaultATRPeriod))
}

func volumeField(s series.Series) string {
	return "volume " + indicators.ClassifyVolume(s)
}
