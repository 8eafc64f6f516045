// Command analyze runs one analysis pass over the given symbols and prints
// each report. Symbols come from the command line, falling back to the
// configured analysis list.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tickerlens-api/internal/config"
	"tickerlens-api/internal/svc"
	"tickerlens-api/pkg/analysis"
)

var configFile = flag.String("f", "etc/tickerlens.yaml", "the config file")

func main() {
	flag.Parse()

	cfg := config.MustLoad(*configFile)

	symbols := parseSymbols(flag.Args())
	if len(symbols) == 0 {
		symbols = cfg.Analysis.Symbols
	}
	if len(symbols) == 0 {
		fmt.Fprintln(os.Stderr, "usage: analyze [-f config] SYMBOL [SYMBOL...]")
		os.Exit(2)
	}

	svcCtx := svc.NewServiceContext(*cfg)
	defer svcCtx.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	for _, res := range svcCtx.Analyzer.AnalyzeAll(ctx, symbols) {
		if res.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.Symbol, res.Err)
			exitCode = 1
			continue
		}
		printReport(res.Symbol, res.Report)
	}
	os.Exit(exitCode)
}

func parseSymbols(args []string) []string {
	symbols := make([]string, 0, len(args))
	for _, arg := range args {
		for _, sym := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			symbols = append(symbols, strings.ToUpper(sym))
		}
	}
	return symbols
}

func printReport(symbol string, report *analysis.Report) {
	fmt.Printf("=== %s (last refreshed %s", symbol, report.Status.LastRefreshed)
	if report.Status.IsStale {
		fmt.Print(", stale")
	}
	fmt.Println(") ===")
	fmt.Println(report.Summary)

	if report.Notice != "" {
		fmt.Printf("notice: %s\n", report.Notice)
	}
	if report.Verdict != nil {
		verdict, err := json.MarshalIndent(report.Verdict, "", "  ")
		if err == nil {
			fmt.Printf("recommendation (%s):\n%s\n", report.Source, verdict)
		}
	} else if report.RawText != "" {
		fmt.Printf("raw response (%s):\n%s\n", report.Source, report.RawText)
	}
	fmt.Println()
}
