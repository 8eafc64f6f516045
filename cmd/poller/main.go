// Command poller is the long-running monitor daemon. It resumes price
// monitoring for every active trade in the ledger and runs the scheduled
// analysis batch on the configured cron expression.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/internal/cli"
	"tickerlens-api/internal/config"
	"tickerlens-api/internal/svc"
	"tickerlens-api/pkg/poller"
)

const shutdownTimeout = 10 * time.Second

var configFile = flag.String("f", "etc/tickerlens.yaml", "the config file")

func main() {
	flag.Parse()
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[main] Starting monitor daemon...")

	cfg := config.MustLoad(*configFile)
	log.Println("[main] Configuration loaded:")
	for _, line := range cli.ConfigSummaryLines(cfg) {
		log.Printf("  - %s", line)
	}

	svcCtx := svc.NewServiceContext(*cfg)
	defer svcCtx.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resumeMonitoring(ctx, svcCtx)

	sched := cron.New()
	if len(cfg.Analysis.Symbols) > 0 && cfg.Analysis.Schedule != "" {
		_, err := sched.AddFunc(cfg.Analysis.Schedule, func() {
			runAnalysisBatch(ctx, svcCtx, cfg.Analysis.Symbols)
		})
		if err != nil {
			log.Fatalf("[main] Bad analysis schedule %q: %v", cfg.Analysis.Schedule, err)
		}
		log.Printf("[main] Analysis batch scheduled: %q over %v", cfg.Analysis.Schedule, cfg.Analysis.Symbols)
	} else {
		log.Println("[main] No analysis schedule configured, monitoring only")
	}
	sched.Start()

	log.Println("[main] Monitor daemon started. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[main] Shutdown signal received, stopping tasks...")

	stopCtx := sched.Stop()
	select {
	case <-stopCtx.Done():
		log.Println("[main] Scheduled jobs stopped cleanly")
	case <-time.After(shutdownTimeout):
		log.Println("[main] Shutdown timeout exceeded, forcing exit")
	}

	log.Println("[main] Monitor daemon stopped")
}

// resumeMonitoring restarts one price monitor per symbol with active trades.
// Updates go through the symbol-wide ledger operation so several trades on
// the same symbol all stay current.
func resumeMonitoring(ctx context.Context, svcCtx *svc.ServiceContext) {
	seen := make(map[string]bool)
	for _, trade := range svcCtx.Ledger.ActiveTrades() {
		if seen[trade.Symbol] {
			continue
		}
		seen[trade.Symbol] = true

		err := svcCtx.Poller.StartMonitoring(ctx, trade.Symbol, func(u poller.Update) {
			if err := svcCtx.Ledger.UpdateSymbolPrice(context.Background(), u.Symbol, u.CurrentPrice); err != nil {
				logx.Errorf("price update for %s: %v", u.Symbol, err)
			}
		})
		if err != nil {
			log.Printf("[main] Failed to resume monitoring %s: %v", trade.Symbol, err)
			continue
		}
		log.Printf("[main] Resumed monitoring %s", trade.Symbol)
	}
}

func runAnalysisBatch(ctx context.Context, svcCtx *svc.ServiceContext, symbols []string) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	log.Printf("[analysis] Batch started for %d symbols", len(symbols))
	results := svcCtx.Analyzer.AnalyzeAll(ctx, symbols)
	for _, res := range results {
		if res.Err != nil {
			log.Printf("[analysis.%s] [ERROR] %v", res.Symbol, res.Err)
			continue
		}
		log.Printf("[analysis.%s] [OK] source=%s stale=%t", res.Symbol, res.Report.Source, res.Report.Status.IsStale)
	}
	log.Printf("[analysis] Batch finished, took %dms", time.Since(start).Milliseconds())
}
