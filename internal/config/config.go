// Package config loads process-wide configuration for the pricing and
// risk engine from environment variables (optionally via a .env
// file), the way the teacher's config package does: typed getters
// with defaults, one Config struct, Validate() before use.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/riskmodel"
)

// ConfigError marks configuration problems detected at startup. It is
// always fatal (spec.md §7).
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// HedgeWeights is the static allocation of the hedge ratio across the
// four venues (spec.md §4.4). Weights must sum to 1.0.
type HedgeWeights struct {
	Polymarket  float64
	Hyperliquid float64
	Binance     float64
	Allianz     float64
}

// RiskThresholds holds the warn/critical limits the risk monitor
// checks each iteration (spec.md §4.7).
type RiskThresholds struct {
	LTVWarn           float64
	LTVCrit           float64
	ReserveWarn       float64
	ReserveCrit       float64
	ConcentrationWarn float64
	ConcentrationCrit float64
	CorrelationWarn   float64
	CorrelationCrit   float64
}

// Upstreams holds endpoints and credentials for third-party data and
// hedge-venue APIs. Empty fields disable that provider; the client
// degrades gracefully per spec.md §4.5/§7.
type Upstreams struct {
	ChainlinkURL     string
	PythURL          string
	BinanceURL       string
	RedStoneURL      string
	PolymarketURL    string
	PolymarketKey    string
	HyperliquidURL   string
	HyperliquidWSURL string
	BinanceAPIKey    string
	EtherscanURL     string
	EtherscanKey     string
	DefiLlamaURL     string
}

// OnChain holds the network and addresses the keeper writes to.
type OnChain struct {
	Network          string
	OracleContract   string
	KeeperWalletAddr string
}

// Archive configures best-effort S3 archival of published
// swing-premium batches (spec.md §4.8 EXPANDED). Disabled unless
// Enabled and Bucket are both set.
type Archive struct {
	Enabled bool
	Bucket  string
	Prefix  string
	Region  string
}

// Config is the single process-wide configuration object. Every
// component that reads options takes a Config or a narrow slice of
// it; there is no dynamic/runtime-attribute lookup.
type Config struct {
	LogLevel string
	DevMode  bool
	Port     int

	KeeperInterval  time.Duration
	MonitorInterval time.Duration

	ReferenceCoverageUSD  float64
	ReferenceDurationDays int

	BaseAPR map[catalog.Asset]float64

	RiskFactors map[catalog.Asset]riskmodel.StablecoinRiskFactors

	Thresholds RiskThresholds

	HedgeRatio   float64
	HedgeWeights HedgeWeights

	Upstreams Upstreams
	OnChain   OnChain
	Archive   Archive

	PagerDutyRoutingKey string
	PagerDutyURL        string

	SnapshotCachePath string
	IndexDBPath       string

	AllowedOrigins string
}

// Load reads configuration from a .env file (if present) and the
// environment, applies documented defaults, then validates it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		Port:     getEnvAsInt("PORT", 8090),

		KeeperInterval:  getEnvAsDuration("KEEPER_INTERVAL", 5*time.Second),
		MonitorInterval: getEnvAsDuration("MONITOR_INTERVAL", 60*time.Second),

		ReferenceCoverageUSD:  getEnvAsFloat("REFERENCE_COVERAGE_USD", 100_000),
		ReferenceDurationDays: getEnvAsInt("REFERENCE_DURATION_DAYS", 90),

		BaseAPR: defaultBaseAPR(),

		RiskFactors: defaultRiskFactors(),

		Thresholds: RiskThresholds{
			LTVWarn: 0.70, LTVCrit: 0.75,
			ReserveWarn: 0.20, ReserveCrit: 0.15,
			ConcentrationWarn: 0.25, ConcentrationCrit: 0.30,
			CorrelationWarn: 0.70, CorrelationCrit: 0.85,
		},

		HedgeRatio: getEnvAsFloat("HEDGE_RATIO", 0.20),
		HedgeWeights: HedgeWeights{
			Polymarket: 0.30, Hyperliquid: 0.30, Binance: 0.30, Allianz: 0.10,
		},

		Upstreams: Upstreams{
			ChainlinkURL:     getEnv("CHAINLINK_URL", ""),
			PythURL:          getEnv("PYTH_URL", ""),
			BinanceURL:       getEnv("BINANCE_URL", "https://api.binance.com"),
			RedStoneURL:      getEnv("REDSTONE_URL", ""),
			PolymarketURL:    getEnv("POLYMARKET_URL", ""),
			PolymarketKey:    getEnv("POLYMARKET_API_KEY", ""),
			HyperliquidURL:   getEnv("HYPERLIQUID_URL", ""),
			HyperliquidWSURL: getEnv("HYPERLIQUID_WS_URL", ""),
			BinanceAPIKey:    getEnv("BINANCE_API_KEY", ""),
			EtherscanURL:     getEnv("ETHERSCAN_URL", ""),
			EtherscanKey:     getEnv("ETHERSCAN_API_KEY", ""),
			DefiLlamaURL:     getEnv("DEFILLAMA_URL", "https://api.llama.fi"),
		},

		OnChain: OnChain{
			Network:          getEnv("ONCHAIN_NETWORK", "ethereum-sepolia"),
			OracleContract:   getEnv("ORACLE_CONTRACT_ADDRESS", ""),
			KeeperWalletAddr: getEnv("KEEPER_WALLET_ADDRESS", ""),
		},

		Archive: Archive{
			Enabled: getEnvAsBool("ARCHIVE_ENABLED", false),
			Bucket:  getEnv("ARCHIVE_S3_BUCKET", ""),
			Prefix:  getEnv("ARCHIVE_S3_PREFIX", "swing-premiums/"),
			Region:  getEnv("ARCHIVE_S3_REGION", "us-east-1"),
		},

		PagerDutyRoutingKey: getEnv("PAGERDUTY_ROUTING_KEY", ""),
		PagerDutyURL:        getEnv("PAGERDUTY_EVENTS_URL", "https://events.pagerduty.com/v2/enqueue"),

		SnapshotCachePath: getEnv("SNAPSHOT_CACHE_PATH", "./data/snapshot_cache.msgpack"),
		IndexDBPath:       getEnv("INDEX_DB_PATH", "./data/keeper_index.db"),

		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required configuration. Missing on-chain wiring is
// not fatal in dev mode (the keeper can run in dry-run/log-only mode).
func (c *Config) Validate() error {
	if c.KeeperInterval <= 0 {
		return &ConfigError{Field: "KEEPER_INTERVAL", Msg: "must be positive"}
	}
	if c.MonitorInterval <= 0 {
		return &ConfigError{Field: "MONITOR_INTERVAL", Msg: "must be positive"}
	}
	sum := c.HedgeWeights.Polymarket + c.HedgeWeights.Hyperliquid + c.HedgeWeights.Binance + c.HedgeWeights.Allianz
	if sum < 0.999 || sum > 1.001 {
		return &ConfigError{Field: "HedgeWeights", Msg: fmt.Sprintf("must sum to 1.0, got %.4f", sum)}
	}
	if !c.DevMode && c.OnChain.OracleContract == "" {
		return &ConfigError{Field: "ORACLE_CONTRACT_ADDRESS", Msg: "required outside dev mode"}
	}
	return nil
}

// defaultBaseAPR returns the base annual percentage rate per asset
// (spec.md §6): USDC 0.04, USDT 0.06, DAI 0.05, FRAX 0.08, BUSD 0.045,
// else 0.10.
func defaultBaseAPR() map[catalog.Asset]float64 {
	rates := make(map[catalog.Asset]float64)
	for _, a := range catalog.Stablecoins() {
		rates[a] = 0.10
	}
	rates[catalog.USDC] = 0.04
	rates[catalog.USDT] = 0.06
	rates[catalog.DAI] = 0.05
	rates[catalog.FRAX] = 0.08
	rates[catalog.BUSD] = 0.045
	return rates
}

// defaultRiskFactors returns built-in StablecoinRiskFactors for all 14
// stablecoins, overridable via RISK_FACTORS_PATH (not implemented in
// this core; the loader accepts injection for tests/production
// wiring instead of parsing a file format here).
func defaultRiskFactors() map[catalog.Asset]riskmodel.StablecoinRiskFactors {
	// Fully-reserved fiat-backed coins score well on reserve quality,
	// banking exposure, and regulatory clarity; algorithmic/crypto-
	// collateralized and yield-bearing coins score lower on those axes
	// and higher on historical volatility.
	fiat := riskmodel.StablecoinRiskFactors{
		ReserveQuality: 0.9, BankingExposure: 0.3, RedemptionVelocity: 0.2,
		MarketDepth: 0.85, RegulatoryClarity: 0.8, HistoricalVolatility: 0.05,
	}
	crypto := riskmodel.StablecoinRiskFactors{
		ReserveQuality: 0.6, BankingExposure: 0.1, RedemptionVelocity: 0.35,
		MarketDepth: 0.5, RegulatoryClarity: 0.4, HistoricalVolatility: 0.2,
	}
	yieldBearing := riskmodel.StablecoinRiskFactors{
		ReserveQuality: 0.65, BankingExposure: 0.2, RedemptionVelocity: 0.4,
		MarketDepth: 0.4, RegulatoryClarity: 0.35, HistoricalVolatility: 0.25,
	}

	return map[catalog.Asset]riskmodel.StablecoinRiskFactors{
		catalog.USDC: fiat, catalog.USDT: fiat, catalog.USDP: fiat,
		catalog.BUSD: fiat, catalog.PYUSD: fiat, catalog.FRAX: fiat,
		catalog.DAI: crypto, catalog.LUSD: crypto, catalog.GHO: crypto,
		catalog.CRVUSD: crypto, catalog.MKUSD: crypto,
		catalog.USDe: yieldBearing, catalog.SUSDe: yieldBearing, catalog.USDY: yieldBearing,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
