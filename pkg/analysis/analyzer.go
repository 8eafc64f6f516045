// Package analysis drives the end-to-end flow for one symbol: fetch the
// multi-timeframe bundle, compress it into the technical digest, gate on
// freshness, consult the oracle and absorb its failures so the caller always
// receives a usable result.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/pkg/advisor"
	"tickerlens-api/pkg/charts"
	"tickerlens-api/pkg/journal"
	"tickerlens-api/pkg/market"
	"tickerlens-api/pkg/summary"
)

// defaultSymbolDelay spaces batch analyses to stay under upstream quotas.
const defaultSymbolDelay = 12 * time.Second

// Report sources.
const (
	SourceOracle      = string(advisor.SourceOracle)
	SourcePassthrough = string(advisor.SourcePassthrough)
	// SourceTechnical marks a report degraded to the local digest after an
	// oracle failure, or produced with no oracle configured.
	SourceTechnical = "technical"
	// SourceStale marks a report whose analysis was suppressed by the
	// freshness gate.
	SourceStale = "stale"
)

// Oracle is the recommendation collaborator. *advisor.Client satisfies it.
type Oracle interface {
	Advise(ctx context.Context, req *advisor.AdviseRequest) (*advisor.Result, error)
}

// Report is the outcome of analyzing one symbol.
type Report struct {
	Symbol  string              `json:"symbol"`
	Status  market.QuoteStatus  `json:"quoteStatus"`
	Summary string              `json:"summary"`
	Source  string              `json:"source"`
	Result  *advisor.Result     `json:"-"`
	Verdict *advisor.Recommendation `json:"recommendation,omitempty"`
	RawText string              `json:"rawText,omitempty"`
	Notice  string              `json:"notice,omitempty"`
}

// Analyzer orchestrates aggregation, summarisation and the oracle call.
type Analyzer struct {
	aggregator *market.Aggregator
	oracle     Oracle
	renderer   charts.Renderer
	journal    *journal.Writer
	delay      time.Duration
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithOracle attaches the recommendation oracle. Without one, reports carry
// the technical digest only.
func WithOracle(o Oracle) Option {
	return func(a *Analyzer) { a.oracle = o }
}

// WithRenderer attaches a chart renderer whose images are sent to the oracle.
func WithRenderer(r charts.Renderer) Option {
	return func(a *Analyzer) { a.renderer = r }
}

// WithJournal records every analysis cycle to the given writer.
func WithJournal(w *journal.Writer) Option {
	return func(a *Analyzer) { a.journal = w }
}

// WithSymbolDelay overrides the pause between symbols in AnalyzeAll.
func WithSymbolDelay(d time.Duration) Option {
	return func(a *Analyzer) { a.delay = d }
}

// New constructs an Analyzer over the given aggregator.
func New(aggregator *market.Aggregator, opts ...Option) (*Analyzer, error) {
	if aggregator == nil {
		return nil, errors.New("analysis: aggregator is required")
	}
	a := &Analyzer{
		aggregator: aggregator,
		delay:      defaultSymbolDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Analyze runs the full flow for one symbol. Aggregation errors propagate;
// oracle errors are absorbed into a technical-only report so the caller
// always gets some output.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (*Report, error) {
	bundle, status, err := a.aggregator.FetchBundle(ctx, symbol)
	if err != nil {
		a.record(&journal.AnalysisRecord{Symbol: symbol, ErrorMessage: err.Error()})
		return nil, err
	}

	report := &Report{
		Symbol:  symbol,
		Status:  status,
		Summary: summary.BundleDigest(bundle),
	}

	// Freshness gate: indicators over a stale session reflect a prior close,
	// so the oracle is skipped outright rather than consulted with a caveat.
	if status.IsStale {
		report.Source = SourceStale
		report.Notice = fmt.Sprintf("market data last refreshed %s; analysis suppressed until the next session close",
			status.LastRefreshed)
		a.record(a.journalFor(report, true, ""))
		return report, nil
	}

	if a.oracle == nil {
		report.Source = SourceTechnical
		a.record(a.journalFor(report, true, ""))
		return report, nil
	}

	result, err := a.oracle.Advise(ctx, &advisor.AdviseRequest{
		Symbol:      symbol,
		Summary:     report.Summary,
		ChartImages: a.renderCharts(ctx, bundle),
	})
	if err != nil {
		notice := "recommendation service unavailable; showing technical summary only"
		if advisor.Classify(err) == advisor.OutcomeRateLimited {
			notice = "recommendation service rate limited; showing technical summary only"
		}
		logx.WithContext(ctx).Errorf("analysis: oracle failed for %s, degrading to technical summary: %v", symbol, err)
		report.Source = SourceTechnical
		report.Notice = notice
		a.record(a.journalFor(report, false, err.Error()))
		return report, nil
	}

	report.Result = result
	report.Source = string(result.Source)
	report.Verdict = result.Recommendation
	report.RawText = result.RawText
	a.record(a.journalFor(report, true, ""))
	return report, nil
}

// BatchResult pairs a symbol with its report or error.
type BatchResult struct {
	Symbol string
	Report *Report
	Err    error
}

// AnalyzeAll analyzes symbols strictly one at a time with a fixed pause
// between them. The serialization is a throttling discipline for upstream
// rate limits, so a per-symbol failure does not stop the batch.
func (a *Analyzer) AnalyzeAll(ctx context.Context, symbols []string) []BatchResult {
	results := make([]BatchResult, 0, len(symbols))
	for i, symbol := range symbols {
		if i > 0 && a.delay > 0 {
			select {
			case <-time.After(a.delay):
			case <-ctx.Done():
				results = append(results, BatchResult{Symbol: symbol, Err: ctx.Err()})
				continue
			}
		}
		report, err := a.Analyze(ctx, symbol)
		results = append(results, BatchResult{Symbol: symbol, Report: report, Err: err})
	}
	return results
}

func (a *Analyzer) renderCharts(ctx context.Context, bundle *market.Bundle) []string {
	if a.renderer == nil {
		return nil
	}

	overlays := []charts.Overlay{charts.OverlaySMA20, charts.OverlayVolume}
	var urls []string
	for _, view := range bundle.Views() {
		img, err := a.renderer.Render(ctx, view.Timeframe, view.Series, overlays)
		if err != nil {
			if !errors.Is(err, charts.ErrNotRendered) {
				logx.WithContext(ctx).Slowf("analysis: render %s chart for %s failed: %v",
					view.Timeframe, bundle.Symbol, err)
			}
			continue
		}
		urls = append(urls, img.DataURL())
	}
	return urls
}

func (a *Analyzer) journalFor(report *Report, success bool, errMsg string) *journal.AnalysisRecord {
	rec := &journal.AnalysisRecord{
		Symbol:        report.Symbol,
		LastRefreshed: report.Status.LastRefreshed,
		Stale:         report.Status.IsStale,
		Summary:       report.Summary,
		Source:        report.Source,
		Success:       success,
		ErrorMessage:  errMsg,
	}
	if report.Verdict != nil {
		if data, err := json.Marshal(report.Verdict); err == nil {
			var verdict map[string]any
			if json.Unmarshal(data, &verdict) == nil {
				rec.Verdict = verdict
			}
		}
	}
	return rec
}

func (a *Analyzer) record(rec *journal.AnalysisRecord) {
	if a.journal == nil || rec == nil {
		return
	}
	if _, err := a.journal.Write(rec); err != nil {
		logx.Errorf("analysis: journal write failed: %v", err)
	}
}
