package clients

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// CEXClient aggregates a liquidation rate across configured
// centralized-exchange venues (spec.md §4.5), feeding
// market.Conditions.CEXLiquidationRate.
type CEXClient struct {
	base      Base
	venueURLs []string
}

// NewCEXClient wires one or more liquidation-feed URLs; Binance's
// futures liquidation-orders endpoint is the primary venue.
func NewCEXClient(binanceURL string, log zerolog.Logger) *CEXClient {
	var venues []string
	if binanceURL != "" {
		venues = append(venues, binanceURL+"/fapi/v1/allForceOrders")
	}
	return &CEXClient{
		base:      NewBase("cex_client", 30, log),
		venueURLs: venues,
	}
}

type forceOrder struct {
	Side string `json:"side"`
	Qty  string `json:"origQty"`
}

// LiquidationRate returns each venue's count of recent liquidation
// orders divided by calmMarketLiquidationCount, averaged across venues
// that answered. The value is not a per-hour rate.
func (c *CEXClient) LiquidationRate(ctx context.Context) (float64, error) {
	if len(c.venueURLs) == 0 {
		return 0, &ClientError{Provider: "cex_client", Kind: KindUnavailable, Err: errNoVenuesConfigured}
	}

	type result struct {
		rate float64
		err  error
	}
	results := make(chan result, len(c.venueURLs))
	for _, url := range c.venueURLs {
		url := url
		go func() {
			rate, err := c.fetchVenue(ctx, url)
			results <- result{rate: rate, err: err}
		}()
	}

	var sum float64
	var n int
	var lastErr error
	for range c.venueURLs {
		r := <-results
		if r.err != nil {
			lastErr = r.err
			continue
		}
		sum += r.rate
		n++
	}
	if n == 0 {
		return 0, lastErr
	}
	return sum / float64(n), nil
}

// calmMarketLiquidationCount is the order count this feed typically
// returns in a quiet market window; used to normalize the raw
// liquidation-order count into a [0, ~few] rate, since the
// allForceOrders endpoint exposes liquidation counts but not total
// market volume to divide by.
const calmMarketLiquidationCount = 20.0

func (c *CEXClient) fetchVenue(ctx context.Context, url string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &ClientError{Provider: "cex_client", Kind: KindParse, Err: err}
	}

	resp, err := c.base.Do(ctx, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var orders []forceOrder
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return 0, &ClientError{Provider: "cex_client", Kind: KindParse, Err: err}
	}

	return float64(len(orders)) / calmMarketLiquidationCount, nil
}

var errNoVenuesConfigured = clientConfigError("no CEX venues configured")

type clientConfigError string

func (e clientConfigError) Error() string { return string(e) }
