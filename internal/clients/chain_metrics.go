package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tonsurance/core/internal/catalog"
)

// ChainMetricsClient reports gas price and congestion per chain
// (spec.md §4.5), polling Etherscan's gas-oracle-shaped endpoint for
// EVM chains.
type ChainMetricsClient struct {
	base Base
	urls map[catalog.Blockchain]string
}

// NewChainMetricsClient wires one gas-oracle URL per chain; chains
// without a configured URL are simply absent from FetchAll results.
func NewChainMetricsClient(etherscanURL string, log zerolog.Logger) *ChainMetricsClient {
	urls := make(map[catalog.Blockchain]string)
	if etherscanURL != "" {
		urls[catalog.Ethereum] = etherscanURL
		urls[catalog.Arbitrum] = etherscanURL
		urls[catalog.Base] = etherscanURL
	}
	return &ChainMetricsClient{
		base: NewBase("chain_metrics", 30, log),
		urls: urls,
	}
}

type gasOracleResponse struct {
	Result struct {
		ProposeGasPrice string `json:"ProposeGasPrice"`
	} `json:"result"`
}

// GasPriceGwei fetches the current proposed gas price for chain, in
// gwei.
func (c *ChainMetricsClient) GasPriceGwei(ctx context.Context, chain catalog.Blockchain) (float64, error) {
	url, ok := c.urls[chain]
	if !ok {
		return 0, &ClientError{Provider: "chain_metrics", Kind: KindUnavailable, Err: fmt.Errorf("no gas endpoint configured for %s", chain)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"?module=gastracker&action=gasoracle", nil)
	if err != nil {
		return 0, &ClientError{Provider: "chain_metrics", Kind: KindParse, Err: err}
	}

	resp, err := c.base.Do(ctx, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var out gasOracleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, &ClientError{Provider: "chain_metrics", Kind: KindParse, Err: err}
	}

	var gwei float64
	if _, err := fmt.Sscanf(out.Result.ProposeGasPrice, "%f", &gwei); err != nil {
		return 0, &ClientError{Provider: "chain_metrics", Kind: KindParse, Err: err}
	}
	return gwei, nil
}

// FetchAll queries gas price for every configured chain concurrently,
// omitting any chain whose call fails.
func (c *ChainMetricsClient) FetchAll(ctx context.Context) map[catalog.Blockchain]float64 {
	type result struct {
		chain catalog.Blockchain
		gwei  float64
		err   error
	}

	results := make(chan result, len(c.urls))
	for chain := range c.urls {
		chain := chain
		go func() {
			gwei, err := c.GasPriceGwei(ctx, chain)
			results <- result{chain: chain, gwei: gwei, err: err}
		}()
	}

	out := make(map[catalog.Blockchain]float64, len(c.urls))
	for range c.urls {
		r := <-results
		if r.err == nil {
			out[r.chain] = r.gwei
		}
	}
	return out
}
