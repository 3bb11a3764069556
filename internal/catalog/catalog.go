// Package catalog defines the static identity tables shared by every
// pricing and oracle component: assets, chains, coverage types, and
// the product keys formed by combining them.
package catalog

import "fmt"

// Asset is a tagged variant of the stablecoins and native crypto assets
// the engine prices. Integer values match the on-chain id table in
// spec.md §6 and must never be renumbered once published.
type Asset uint8

const (
	USDC Asset = iota
	USDT
	USDP
	DAI
	FRAX
	BUSD
	USDe
	SUSDe
	USDY
	PYUSD
	GHO
	LUSD
	CRVUSD
	MKUSD
	// BTC and ETH are native crypto assets, not part of the 14-stablecoin
	// pricing catalog, but share the Asset type for bridge/oracle clients.
	BTC
	ETH
)

var assetNames = map[Asset]string{
	USDC: "USDC", USDT: "USDT", USDP: "USDP", DAI: "DAI", FRAX: "FRAX",
	BUSD: "BUSD", USDe: "USDe", SUSDe: "sUSDe", USDY: "USDY", PYUSD: "PYUSD",
	GHO: "GHO", LUSD: "LUSD", CRVUSD: "crvUSD", MKUSD: "mkUSD",
	BTC: "BTC", ETH: "ETH",
}

// String returns the canonical ticker for the asset.
func (a Asset) String() string {
	if name, ok := assetNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Asset(%d)", uint8(a))
}

// IsStablecoin reports whether the asset is one of the 14 stablecoins
// used for depeg pricing (as opposed to a native crypto asset).
func (a Asset) IsStablecoin() bool {
	return a <= MKUSD
}

// ParseAsset looks up an Asset by its canonical ticker (case-sensitive,
// matching String()'s output), for decoding query/path parameters.
func ParseAsset(s string) (Asset, error) {
	for a, name := range assetNames {
		if name == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("catalog: unknown asset %q", s)
}

// Stablecoins lists all 14 pricing-eligible stablecoins in id order.
func Stablecoins() []Asset {
	return []Asset{USDC, USDT, USDP, DAI, FRAX, BUSD, USDe, SUSDe, USDY, PYUSD, GHO, LUSD, CRVUSD, MKUSD}
}

// Blockchain is a tagged variant of the 8 supported chains. Integer
// values match spec.md §6's id table.
type Blockchain uint8

const (
	Ethereum Blockchain = iota
	Arbitrum
	Base
	Polygon
	Bitcoin
	Lightning
	TON
	Solana
)

var chainNames = map[Blockchain]string{
	Ethereum: "Ethereum", Arbitrum: "Arbitrum", Base: "Base", Polygon: "Polygon",
	Bitcoin: "Bitcoin", Lightning: "Lightning", TON: "TON", Solana: "Solana",
}

// String returns the canonical chain name.
func (b Blockchain) String() string {
	if name, ok := chainNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Blockchain(%d)", uint8(b))
}

// Chains lists all 8 supported chains in id order.
func Chains() []Blockchain {
	return []Blockchain{Ethereum, Arbitrum, Base, Polygon, Bitcoin, Lightning, TON, Solana}
}

// ParseBlockchain looks up a Blockchain by its canonical name
// (case-sensitive, matching String()'s output).
func ParseBlockchain(s string) (Blockchain, error) {
	for b, name := range chainNames {
		if name == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("catalog: unknown blockchain %q", s)
}

// CoverageType is a tagged variant of the 5 coverage products. Integer
// values match spec.md §6's id table.
type CoverageType uint8

const (
	Depeg CoverageType = iota
	SmartContract
	Oracle
	Bridge
	CexLiquidation
)

var coverageNames = map[CoverageType]string{
	Depeg: "Depeg", SmartContract: "SmartContract", Oracle: "Oracle",
	Bridge: "Bridge", CexLiquidation: "CexLiquidation",
}

// String returns the canonical coverage-type name.
func (c CoverageType) String() string {
	if name, ok := coverageNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CoverageType(%d)", uint8(c))
}

// CoverageTypes lists all 5 coverage types in id order.
func CoverageTypes() []CoverageType {
	return []CoverageType{Depeg, SmartContract, Oracle, Bridge, CexLiquidation}
}

// ParseCoverageType looks up a CoverageType by its canonical name
// (case-sensitive, matching String()'s output).
func ParseCoverageType(s string) (CoverageType, error) {
	for c, name := range coverageNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("catalog: unknown coverage type %q", s)
}

// IsChainStablecoinCompatible restricts the valid (chain, asset) pairs
// in the catalog. Bitcoin only ever supports USDT; Lightning supports
// USDT and USDC. Every other chain supports all 14 stablecoins.
func IsChainStablecoinCompatible(chain Blockchain, asset Asset) bool {
	if !asset.IsStablecoin() {
		return false
	}
	switch chain {
	case Bitcoin:
		return asset == USDT
	case Lightning:
		return asset == USDT || asset == USDC
	default:
		return true
	}
}

// ProductKey identifies one catalog entry: a coverage type sold on a
// chain for an asset.
type ProductKey struct {
	Coverage CoverageType
	Chain    Blockchain
	Asset    Asset
}

// Hash returns the injective product identity hash used on-chain and
// as a map key: (coverage<<16)|(chain<<8)|asset.
func (p ProductKey) Hash() uint32 {
	return (uint32(p.Coverage) << 16) | (uint32(p.Chain) << 8) | uint32(p.Asset)
}

// Decompose reconstructs a ProductKey from its identity hash. It is
// the inverse of Hash and is used to verify Hash's injectivity.
func Decompose(hash uint32) ProductKey {
	return ProductKey{
		Coverage: CoverageType((hash >> 16) & 0xFF),
		Chain:    Blockchain((hash >> 8) & 0xFF),
		Asset:    Asset(hash & 0xFF),
	}
}

// Name returns a human-readable product identifier, stable across
// Hash/Decompose round trips.
func (p ProductKey) Name() string {
	return fmt.Sprintf("%s-%s-%s", p.Coverage, p.Chain, p.Asset)
}

// IsValid reports whether the product key is a real catalog entry:
// the chain/asset pair must be compatible, and CexLiquidation cover
// only applies to CEX-adjacent chains (all chains in this catalog,
// since every supported chain has a CEX on/off ramp).
func (p ProductKey) IsValid() bool {
	return IsChainStablecoinCompatible(p.Chain, p.Asset)
}

// AllProducts enumerates every valid ProductKey in the catalog.
func AllProducts() []ProductKey {
	var out []ProductKey
	for _, cov := range CoverageTypes() {
		for _, chain := range Chains() {
			for _, asset := range Stablecoins() {
				key := ProductKey{Coverage: cov, Chain: chain, Asset: asset}
				if key.IsValid() {
					out = append(out, key)
				}
			}
		}
	}
	return out
}
