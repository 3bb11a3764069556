// Command keeper runs the pricing and risk engine as a single
// process: the market-data feed, the risk monitor, the oracle keeper,
// housekeeping, and the read-only HTTP surface all started from one
// binary, grounded on the teacher's trader-go/cmd/server/main.go
// startup sequence (config → logger → background loops → HTTP server
// → signal wait → graceful shutdown).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonsurance/core/internal/clients"
	"github.com/tonsurance/core/internal/config"
	"github.com/tonsurance/core/internal/events"
	"github.com/tonsurance/core/internal/housekeeping"
	"github.com/tonsurance/core/internal/keeper"
	"github.com/tonsurance/core/internal/keeper/index"
	"github.com/tonsurance/core/internal/market"
	"github.com/tonsurance/core/internal/marketfeed"
	"github.com/tonsurance/core/internal/metrics"
	"github.com/tonsurance/core/internal/policy"
	"github.com/tonsurance/core/internal/pricing"
	"github.com/tonsurance/core/internal/reliability"
	"github.com/tonsurance/core/internal/riskmonitor"
	"github.com/tonsurance/core/internal/server"
	"github.com/tonsurance/core/internal/utils"
	"github.com/tonsurance/core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	log.Info().Msg("starting tonsurance core")

	m := metrics.NewRegistry()

	marketCache := &market.Cache[market.Conditions]{}
	snapshotStore := market.NewSnapshotStore(cfg.SnapshotCachePath)
	if cond, ok, err := snapshotStore.Load(); err != nil {
		log.Warn().Err(err).Msg("failed to load warm-restart market snapshot")
	} else if ok {
		marketCache.Store(cond)
		log.Info().Time("snapshot_timestamp", cond.Timestamp).Msg("restored market snapshot from disk")
	}

	indexStore, err := index.Open(cfg.IndexDBPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open keeper index")
	}
	defer indexStore.Close()

	policies := policy.NewMemoryStore(policy.Snapshot{AsOf: time.Now()})
	vault := staticVault{state: riskmonitor.PoolState{
		TotalCapitalCents:  10_000_000_00,
		LiquidReserveCents: 3_000_000_00,
	}}

	pricingEngine := pricing.NewEngine(cfg.BaseAPR, cfg.RiskFactors)

	alertSink := buildAlertSink(cfg, log)

	monitor := riskmonitor.NewMonitor(policies, vault, cfg.RiskFactors, cfg.Thresholds, alertSink, log)

	hyperliquidStream := clients.NewHyperliquidStream(cfg.Upstreams.HyperliquidWSURL, log)
	if cfg.Upstreams.HyperliquidWSURL != "" {
		if err := hyperliquidStream.Start(); err != nil {
			log.Warn().Err(err).Msg("hyperliquid stream initial dial failed, continuing in background")
		}
		defer hyperliquidStream.Stop()
	}

	archiver, err := keeper.NewArchiver(context.Background(), cfg.Archive, log)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize swing-premium archiver, continuing without it")
	}

	requests := server.NewRequestCounter()
	oracleKeeper := keeper.NewKeeper(
		policies,
		marketCache,
		cfg.BaseAPR,
		hyperliquidVenues{stream: hyperliquidStream},
		requests,
		indexStore,
		devSigner{log: log},
		archiver,
		m,
		log,
	)

	feed := &marketfeed.Fetcher{
		Oracle:  clients.NewOracleAggregator(cfg.Upstreams.ChainlinkURL, cfg.Upstreams.PythURL, cfg.Upstreams.BinanceURL, cfg.Upstreams.RedStoneURL, log),
		Bridges: clients.NewBridgeHealthClient(cfg.Upstreams.DefiLlamaURL, log),
		CEX:     clients.NewCEXClient(cfg.Upstreams.BinanceURL, log),
		Chains:  clients.NewChainMetricsClient(cfg.Upstreams.EtherscanURL, log),
		Cache:   marketCache,
		Log:     log,
		Persist: snapshotStore,
	}

	housekeepingSched := housekeeping.New(log)
	if dedupingSink, ok := alertSink.(*events.DedupingSink); ok {
		if err := housekeepingSched.AddJob("@every 1m", housekeeping.DedupCleanupJob{Deduper: dedupingSink.Deduper()}); err != nil {
			log.Error().Err(err).Msg("failed to register dedup cleanup job")
		}
	}
	if err := housekeepingSched.AddJob("@every 5m", housekeeping.IndexPruneJob{Index: indexStore, Retention: 24 * time.Hour}); err != nil {
		log.Error().Err(err).Msg("failed to register index prune job")
	}
	housekeepingSched.Start()
	defer housekeepingSched.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go feed.Run(ctx, reliability.Loop{Interval: 5 * time.Second, HardCap: 4 * time.Second})
	log.Info().Msg("market feed started")

	go monitor.Run(ctx, reliability.Loop{Interval: cfg.MonitorInterval, HardCap: 30 * time.Second})
	log.Info().Dur("interval", cfg.MonitorInterval).Msg("risk monitor started")

	go oracleKeeper.Run(ctx)
	log.Info().Msg("oracle keeper started")

	srv := server.New(server.Config{
		Port:           cfg.Port,
		DevMode:        cfg.DevMode,
		Log:            log,
		AllowedOrigins: utils.ParseCSV(cfg.AllowedOrigins),
		Market:   marketCache,
		Policies: policies,
		Vault:    vault,
		Pricing:  pricingEngine,
		Monitor:  monitor,
		Metrics:  m,
		Requests: requests,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	log.Info().Int("port", cfg.Port).Msg("http server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server forced to shutdown")
	}

	log.Info().Msg("stopped")
}

// buildAlertSink composes the log sink (always on) with PagerDuty
// (when a routing key is configured), deduped together under one
// window so a threshold that stays breached across many monitor
// iterations logs and pages once, not every iteration.
func buildAlertSink(cfg *config.Config, log zerolog.Logger) events.Sink {
	sinks := []events.Sink{events.NewLogSink(log)}
	if cfg.PagerDutyRoutingKey != "" {
		sinks = append(sinks, events.NewPagerDutySink(cfg.PagerDutyURL, cfg.PagerDutyRoutingKey, log))
	}
	return events.NewDedupingSink(events.NewMultiSink(sinks...), events.DefaultDedupWindow)
}
