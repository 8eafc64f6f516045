package svc

import (
	"context"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"tickerlens-api/internal/config"
	advisorpkg "tickerlens-api/pkg/advisor"
	"tickerlens-api/pkg/analysis"
	"tickerlens-api/pkg/journal"
	"tickerlens-api/pkg/ledger"
	marketpkg "tickerlens-api/pkg/market"
	_ "tickerlens-api/pkg/market/providers/alphavantage" // register provider
	_ "tickerlens-api/pkg/market/providers/yahoo"        // register provider
	"tickerlens-api/pkg/poller"
)

type ServiceContext struct {
	Config config.Config

	MarketConfig    *marketpkg.Config
	MarketProviders map[string]marketpkg.Provider
	Aggregator      *marketpkg.Aggregator

	AdvisorConfig *advisorpkg.Config
	Advisor       *advisorpkg.Client

	Ledger   *ledger.Ledger
	Poller   *poller.Poller
	Analyzer *analysis.Analyzer
	Journal  *journal.Writer

	DBConn sqlx.SqlConn
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc := &ServiceContext{Config: c}

	svc.MarketConfig = c.Market.Value
	if svc.MarketConfig == nil {
		// Fall back to the default on-disk market config when the main
		// config carries no inline section.
		svc.MarketConfig = config.MustLoadMarket()
	}

	providers, err := svc.MarketConfig.Build()
	if err != nil {
		log.Fatalf("failed to build market providers: %v", err)
	}
	svc.MarketProviders = providers

	primary, err := svc.MarketConfig.PrimaryProvider(providers)
	if err != nil {
		log.Fatalf("failed to resolve primary provider: %v", err)
	}
	fallback, err := svc.MarketConfig.FallbackProviderFor(providers)
	if err != nil {
		log.Fatalf("failed to resolve fallback provider: %v", err)
	}
	svc.Aggregator = marketpkg.NewAggregator(primary, fallback)

	quotes, err := svc.MarketConfig.QuoteProviderFor(providers)
	if err != nil {
		log.Fatalf("failed to resolve quote provider: %v", err)
	}
	svc.Poller, err = poller.New(quotes,
		poller.WithInterval(time.Duration(c.Poller.IntervalSeconds)*time.Second),
		poller.WithQuoteTTL(time.Duration(c.Poller.QuoteTTLSeconds)*time.Second),
	)
	if err != nil {
		log.Fatalf("failed to build price poller: %v", err)
	}

	var store ledger.Store
	if c.Postgres.DSN != "" {
		conn := sqlx.NewSqlConn("pgx", c.Postgres.DSN)
		svc.DBConn = conn
		store = ledger.NewSQLStore(conn)
	} else {
		store, err = ledger.NewFileStore(c.Ledger.StorePath)
		if err != nil {
			log.Fatalf("failed to open trade store: %v", err)
		}
	}
	svc.Ledger, err = ledger.NewLedger(context.Background(), store)
	if err != nil {
		log.Fatalf("failed to load trade ledger: %v", err)
	}

	svc.Journal = journal.NewWriter(c.Analysis.JournalDir)

	analyzerOpts := []analysis.Option{
		analysis.WithJournal(svc.Journal),
		analysis.WithSymbolDelay(time.Duration(c.Analysis.SymbolDelaySeconds) * time.Second),
	}
	if c.Advisor.Value != nil {
		svc.AdvisorConfig = c.Advisor.Value
		svc.Advisor, err = advisorpkg.NewClient(c.Advisor.Value)
		if err != nil {
			log.Fatalf("failed to build advisor client: %v", err)
		}
		analyzerOpts = append(analyzerOpts, analysis.WithOracle(svc.Advisor))
	}

	svc.Analyzer, err = analysis.New(svc.Aggregator, analyzerOpts...)
	if err != nil {
		log.Fatalf("failed to build analyzer: %v", err)
	}

	return svc
}

// Shutdown releases background resources: active price monitors and the
// advisor's HTTP client.
func (s *ServiceContext) Shutdown() {
	if s.Poller != nil {
		s.Poller.StopAll()
	}
	if s.Advisor != nil {
		_ = s.Advisor.Close()
	}
}
