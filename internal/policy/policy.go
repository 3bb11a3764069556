// Package policy defines the Policy record the pricing and risk
// engines read, and the read-mostly store port that production
// wiring backs with a real repository. Persistent storage itself is
// an external collaborator (spec.md §1); this package only declares
// the contract the engine depends on.
package policy

import (
	"context"
	"fmt"
	"time"

	"github.com/tonsurance/core/internal/catalog"
)

// Status is the lifecycle state of a policy, as tracked by the
// external policy store. The engine treats policies read-only.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusClaimed Status = "claimed"
	StatusVoided  Status = "voided"
)

// Policy is the subset of policy-lifecycle data the pricing and risk
// engines need. It is owned by the policy store; the engine never
// writes it.
type Policy struct {
	ID                 string
	Coverage           catalog.CoverageType
	Chain              catalog.Blockchain
	Asset              catalog.Asset
	CoverageAmountCents int64
	TriggerPrice       float64
	FloorPrice         float64
	StartTS            time.Time
	ExpiryTS           time.Time
	Status             Status
}

// Validate checks the invariants spec.md §3 places on a Policy:
// floor_price < trigger_price <= 1.0, and start_ts < expiry_ts.
func (p Policy) Validate() error {
	if !(p.FloorPrice < p.TriggerPrice) {
		return fmt.Errorf("policy %s: floor_price %.4f must be < trigger_price %.4f", p.ID, p.FloorPrice, p.TriggerPrice)
	}
	if p.TriggerPrice > 1.0 {
		return fmt.Errorf("policy %s: trigger_price %.4f must be <= 1.0", p.ID, p.TriggerPrice)
	}
	if !p.StartTS.Before(p.ExpiryTS) {
		return fmt.Errorf("policy %s: start_ts must be before expiry_ts", p.ID)
	}
	return nil
}

// ProductKey returns the catalog product this policy covers.
func (p Policy) ProductKey() catalog.ProductKey {
	return catalog.ProductKey{Coverage: p.Coverage, Chain: p.Chain, Asset: p.Asset}
}

// PriceHistory is a time-ordered series of closing prices for one
// asset, used by the risk model's correlation and volatility
// computations.
type PriceHistory struct {
	Asset  catalog.Asset
	Prices []float64
}

// Snapshot is the read-mostly view of the portfolio the monitor and
// keeper iterate over: every policy considered for risk purposes,
// plus enough price history to compute correlations.
type Snapshot struct {
	Policies []Policy
	History  map[catalog.Asset]PriceHistory
	AsOf     time.Time
}

// Store is the reader-writer-gated port onto the policy repository.
// Readers (the risk monitor and the oracle keeper) take read holds;
// the real implementation is injected by the surrounding service and
// lives outside this module's scope (spec.md §1).
type Store interface {
	Read(ctx context.Context) (Snapshot, error)
}

// ActivePolicies filters a snapshot down to currently active policies.
func (s Snapshot) ActivePolicies() []Policy {
	out := make([]Policy, 0, len(s.Policies))
	for _, p := range s.Policies {
		if p.Status == StatusActive {
			out = append(out, p)
		}
	}
	return out
}
