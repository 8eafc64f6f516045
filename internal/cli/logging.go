package cli

import (
	"fmt"
	"strings"

	"github.com/zeromicro/go-zero/core/logx"

	"tickerlens-api/internal/config"
	"tickerlens-api/pkg/confkit"
)

// ConfigSummaryLines returns human readable lines describing the loaded app config.
func ConfigSummaryLines(cfg *config.Config) []string {
	if cfg == nil {
		return []string{"Configuration: <nil>"}
	}

	lines := []string{
		fmt.Sprintf("Environment: %s", cfg.Env),
		fmt.Sprintf("Postgres: %s", presence(cfg.Postgres.DSN != "")),
		fmt.Sprintf("Ledger store: %s", cfg.Ledger.StorePath),
		fmt.Sprintf("Poller interval: %ds (quote TTL %ds)", cfg.Poller.IntervalSeconds, cfg.Poller.QuoteTTLSeconds),
		fmt.Sprintf("Analysis symbols: %d (delay %ds, schedule %q)", len(cfg.Analysis.Symbols), cfg.Analysis.SymbolDelaySeconds, cfg.Analysis.Schedule),
		fmt.Sprintf("Journal dir: %s", cfg.Analysis.JournalDir),
		sectionLine("Market config", cfg.Market),
		sectionLine("Advisor config", cfg.Advisor),
	}

	return lines
}

// LogConfigSummary emits the configuration summary using logx.
func LogConfigSummary(cfg *config.Config) {
	lines := ConfigSummaryLines(cfg)
	if len(lines) == 0 {
		return
	}
	logx.Info("configuration summary")
	for _, line := range lines {
		logx.Infof("config • %s", line)
	}
}

func presence(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func sectionLine[T any](name string, section confkit.Section[T]) string {
	switch {
	case strings.TrimSpace(section.File) != "":
		return fmt.Sprintf("%s: %s", name, section.File)
	case section.Value != nil:
		return fmt.Sprintf("%s: inline", name)
	default:
		return fmt.Sprintf("%s: not configured", name)
	}
}
