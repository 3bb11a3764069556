package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/market"
	"github.com/tonsurance/core/pkg/formulas"
)

// maxProviderDeviation is the fraction away from the running median a
// source may sit before it is dropped from the consensus (spec.md
// §4.5: "median-of-N with source dropout if deviation > 5%").
const maxProviderDeviation = 0.05

// priceProvider is one upstream price feed the aggregator polls.
// Chainlink, Pyth, Binance, and RedStone are wired with the same
// shape: GET a URL, decode a {price: float64} envelope.
type priceProvider struct {
	name string
	url  string
}

// OracleAggregator produces a market.ConsensusPrice per asset by
// querying Chainlink, Pyth, Binance, and RedStone and taking the
// median of whichever sources agree within maxProviderDeviation,
// grounded on exchangerate.Client's single-responsibility REST-poll
// shape (internal/clients/exchangerate/client.go in the teacher).
type OracleAggregator struct {
	base      Base
	providers []priceProvider

	// historyMu guards history: Fetch is called concurrently, once per
	// asset, by marketfeed.Fetcher's fan-out, so every read or write of
	// the map must be serialized.
	historyMu sync.Mutex
	// history retains each provider's recent price samples per asset,
	// feeding pkg/formulas realized volatility when no dedicated
	// volatility index feed is configured (spec.md §4.5).
	history map[catalog.Asset][]float64
}

// NewOracleAggregator wires up the four provider endpoints from
// config. An empty URL disables that provider.
func NewOracleAggregator(chainlinkURL, pythURL, binanceURL, redstoneURL string, log zerolog.Logger) *OracleAggregator {
	var providers []priceProvider
	for _, p := range []priceProvider{
		{"chainlink", chainlinkURL},
		{"pyth", pythURL},
		{"binance", binanceURL},
		{"redstone", redstoneURL},
	} {
		if p.url != "" {
			providers = append(providers, p)
		}
	}
	return &OracleAggregator{
		base:      NewBase("oracle_aggregator", 60, log),
		providers: providers,
		history:   make(map[catalog.Asset][]float64),
	}
}

type priceResponse struct {
	Price float64 `json:"price"`
}

// fetchOne queries a single provider for one asset's price.
func (o *OracleAggregator) fetchOne(ctx context.Context, p priceProvider, asset catalog.Asset) (float64, error) {
	url := fmt.Sprintf("%s/%s", p.url, asset.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &ClientError{Provider: p.name, Kind: KindParse, Err: err}
	}

	resp, err := o.base.Do(ctx, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var out priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, &ClientError{Provider: p.name, Kind: KindParse, Err: err}
	}
	return out.Price, nil
}

// median returns the median of a non-empty slice of quotes' prices,
// sorting a copy of the prices itself.
func median(quotes []market.SourceQuote) float64 {
	prices := make([]float64, len(quotes))
	for i, q := range quotes {
		prices[i] = q.Price
	}
	sort.Float64s(prices)
	n := len(prices)
	if n%2 == 1 {
		return prices[n/2]
	}
	return (prices[n/2-1] + prices[n/2]) / 2
}

// Fetch polls every configured provider for asset concurrently, drops
// quotes deviating more than maxProviderDeviation from the provisional
// median, and returns the consensus over the surviving quotes.
func (o *OracleAggregator) Fetch(ctx context.Context, asset catalog.Asset, now time.Time) (market.ConsensusPrice, error) {
	type result struct {
		quote market.SourceQuote
		err   error
	}

	results := make(chan result, len(o.providers))
	for _, p := range o.providers {
		p := p
		go func() {
			price, err := o.fetchOne(ctx, p, asset)
			if err != nil {
				results <- result{err: err}
				return
			}
			results <- result{quote: market.SourceQuote{Provider: p.name, Price: price}}
		}()
	}

	var quotes []market.SourceQuote
	for range o.providers {
		r := <-results
		if r.err == nil {
			quotes = append(quotes, r.quote)
		}
	}

	if len(quotes) == 0 {
		return market.ConsensusPrice{}, &ClientError{Provider: "oracle_aggregator", Kind: KindUnavailable, Err: fmt.Errorf("no providers returned a price for %s", asset)}
	}

	provisional := median(quotes)
	var survivors []market.SourceQuote
	for _, q := range quotes {
		if provisional == 0 || math.Abs(q.Price-provisional)/provisional <= maxProviderDeviation {
			survivors = append(survivors, q)
		}
	}
	if len(survivors) == 0 {
		survivors = quotes
	}

	consensus := median(survivors)
	o.recordHistory(asset, consensus)

	return market.ConsensusPrice{
		Asset:       asset,
		MedianPrice: consensus,
		Sources:     survivors,
		Confidence:  float64(len(survivors)) / float64(len(o.providers)),
		Timestamp:   now,
	}, nil
}

// historyWindow bounds how many recent samples feed realized
// volatility, matching a typical 20-sample StdDev window.
const historyWindow = 20

func (o *OracleAggregator) recordHistory(asset catalog.Asset, price float64) {
	o.historyMu.Lock()
	defer o.historyMu.Unlock()

	h := append(o.history[asset], price)
	if len(h) > historyWindow {
		h = h[len(h)-historyWindow:]
	}
	o.history[asset] = h
}

// RealizedVolatility reports the realized volatility of an asset's
// recent consensus prices, used as a fallback overall_volatility_index
// input when no dedicated volatility feed is configured (spec.md
// §4.5).
func (o *OracleAggregator) RealizedVolatility(asset catalog.Asset) *float64 {
	o.historyMu.Lock()
	h := append([]float64(nil), o.history[asset]...)
	o.historyMu.Unlock()
	return formulas.RealizedVolatility(h, volatilityPeriod)
}

// volatilityPeriod is the StdDev window passed to formulas.RealizedVolatility;
// kept below historyWindow so a value is available before the ring
// buffer is completely full.
const volatilityPeriod = 14

// MaxDepegDrawdown reports the deepest peak-to-trough drop in an
// asset's recent consensus prices within the retained history window,
// i.e. how far the asset fell from its local high before recovering.
// A stablecoin that spiked to 1.002 then sank to 0.94 reports 0.0619,
// independent of where the current price sits relative to peg.
func (o *OracleAggregator) MaxDepegDrawdown(asset catalog.Asset) *float64 {
	o.historyMu.Lock()
	h := append([]float64(nil), o.history[asset]...)
	o.historyMu.Unlock()
	return formulas.CalculateMaxDrawdown(h)
}
