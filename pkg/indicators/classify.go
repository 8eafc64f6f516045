package indicators

import (
	"gonum.org/v1/gonum/stat"

	"tickerlens-api/pkg/series"
)

// Classification labels shared by the volume and trend heuristics.
const (
	VolumeHigh   = "high"
	VolumeLow    = "low"
	VolumeNormal = "normal"

	TrendBullish  = "bullish"
	TrendBearish  = "bearish"
	TrendSideways = "sideways"

	// Insufficient is reported whenever a classification's minimum-data
	// requirement is not met.
	Insufficient = "insufficient data"

	volumeMinPoints   = 10
	volumeAvgWindow   = 20
	trendMinPoints    = 20
	shortTrendBars    = 5
	mediumTrendBars   = 20
	shortTrendPctGate = 2.0
	mediumTrendPct    = 5.0
)

// ClassifyVolume compares the latest volume against the trailing average of
// the prior bars (up to 20, excluding the latest): above 1.5x is high, below
// 0.5x is low. Requires at least 10 points.
func ClassifyVolume(s series.Series) string {
	if len(s) < volumeMinPoints {
		return Insufficient
	}
	prior := s[:len(s)-1].LastN(volumeAvgWindow).Volumes()
	avg := stat.Mean(prior, nil)
	if avg == 0 {
		return VolumeNormal
	}
	latest := s[len(s)-1].Volume
	switch {
	case latest > 1.5*avg:
		return VolumeHigh
	case latest < 0.5*avg:
		return VolumeLow
	default:
		return VolumeNormal
	}
}

// Trend summarises directional movement over two horizons.
type Trend struct {
	ShortTerm  string // 5-bar percent change at a 2% gate
	MediumTerm string // 20-bar percent change at a 5% gate
}

// ClassifyTrend derives short- and medium-term trend labels from closing
// prices. Both horizons report insufficient data under 20 points; the 20-bar
// reference clamps to the first close when exactly 20 points are present.
func ClassifyTrend(s series.Series) Trend {
	if len(s) < trendMinPoints {
		return Trend{ShortTerm: Insufficient, MediumTerm: Insufficient}
	}
	closes := s.Closes()
	last := closes[len(closes)-1]

	return Trend{
		ShortTerm:  trendLabel(pctChange(refClose(closes, shortTrendBars), last), shortTrendPctGate),
		MediumTerm: trendLabel(pctChange(refClose(closes, mediumTrendBars), last), mediumTrendPct),
	}
}

func refClose(closes []float64, bars int) float64 {
	idx := len(closes) - 1 - bars
	if idx < 0 {
		idx = 0
	}
	return closes[idx]
}

func pctChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

func trendLabel(pct, gate float64) string {
	switch {
	case pct > gate:
		return TrendBullish
	case pct < -gate:
		return TrendBearish
	default:
		return TrendSideways
	}
}
