package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/clients"
	"github.com/tonsurance/core/internal/onchain"
	"github.com/tonsurance/core/internal/riskmonitor"
)

// staticVault is a placeholder PoolReader/server.VaultReader backing
// the vault-wide capital and reserve totals. Persistent ledger storage
// is an external collaborator outside this core's scope (spec.md §1);
// production wiring replaces this with a real repository behind the
// same port.
type staticVault struct {
	state riskmonitor.PoolState
}

func (v staticVault) Read(ctx context.Context) (riskmonitor.PoolState, error) {
	return v.state, nil
}

// hyperliquidVenues adapts clients.HyperliquidStream's coin-keyed
// funding rate to keeper.VenueDataProvider's product-keyed port.
// Polymarket odds have no wired client in this core (no example repo
// in the pack ships one), so PolymarketOdds always reports
// unavailable — hedge.Quote already treats an absent venue input as
// "leave that component nil", not an error.
type hyperliquidVenues struct {
	stream *clients.HyperliquidStream
}

func (v hyperliquidVenues) PolymarketOdds(product catalog.ProductKey) (float64, bool) {
	return 0, false
}

func (v hyperliquidVenues) DailyFunding(product catalog.ProductKey) (float64, bool) {
	return 0, false
}

func (v hyperliquidVenues) HourlyFunding(product catalog.ProductKey) (float64, bool) {
	if v.stream == nil {
		return 0, false
	}
	return v.stream.HourlyFunding(product.Asset.String())
}

// devSigner logs the payload it would have broadcast instead of
// submitting it anywhere. Chain signing is an external collaborator
// (spec.md §1: "cryptographic wallet signing — a signer is
// injected"); this satisfies the port for dev-mode runs where no
// wallet is configured.
type devSigner struct {
	log zerolog.Logger
}

func (s devSigner) Submit(ctx context.Context, payload []byte) (onchain.TxReceipt, error) {
	s.log.Debug().Int("bytes", len(payload)).Msg("dev signer: would broadcast payload")
	return onchain.TxReceipt{TxHash: fmt.Sprintf("dev-%d", time.Now().UnixNano()), Success: true}, nil
}
