package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullCatalogSize(t *testing.T) {
	// 5 coverage types x 8 chains x 14 stablecoins = 560, per spec.md §3.
	full := len(CoverageTypes()) * len(Chains()) * len(Stablecoins())
	require.Equal(t, 560, full)
}

func TestProductHashInjective(t *testing.T) {
	seen := make(map[uint32]ProductKey)
	for _, cov := range CoverageTypes() {
		for _, chain := range Chains() {
			for _, asset := range Stablecoins() {
				key := ProductKey{Coverage: cov, Chain: chain, Asset: asset}
				h := key.Hash()
				if existing, ok := seen[h]; ok {
					t.Fatalf("hash collision: %+v and %+v both hash to %d", existing, key, h)
				}
				seen[h] = key
			}
		}
	}
}

func TestDecomposeRoundTrip(t *testing.T) {
	for _, cov := range CoverageTypes() {
		for _, chain := range Chains() {
			for _, asset := range Stablecoins() {
				key := ProductKey{Coverage: cov, Chain: chain, Asset: asset}
				decoded := Decompose(key.Hash())
				assert.Equal(t, key.Name(), decoded.Name())
			}
		}
	}
}

func TestChainStablecoinCompatibility(t *testing.T) {
	assert.True(t, IsChainStablecoinCompatible(Bitcoin, USDT))
	assert.False(t, IsChainStablecoinCompatible(Bitcoin, USDC))
	assert.True(t, IsChainStablecoinCompatible(Lightning, USDT))
	assert.True(t, IsChainStablecoinCompatible(Lightning, USDC))
	assert.False(t, IsChainStablecoinCompatible(Lightning, DAI))
	assert.True(t, IsChainStablecoinCompatible(Ethereum, DAI))
	assert.False(t, IsChainStablecoinCompatible(Ethereum, BTC))
}

func TestAllProductsAreValid(t *testing.T) {
	products := AllProducts()
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.True(t, p.IsValid())
	}
}

func TestParseAssetRoundTripsWithString(t *testing.T) {
	for _, a := range Stablecoins() {
		parsed, err := ParseAsset(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}
}

func TestParseAssetUnknownReturnsError(t *testing.T) {
	_, err := ParseAsset("NOTACOIN")
	assert.Error(t, err)
}

func TestParseBlockchainRoundTripsWithString(t *testing.T) {
	for _, c := range Chains() {
		parsed, err := ParseBlockchain(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestParseBlockchainUnknownReturnsError(t *testing.T) {
	_, err := ParseBlockchain("Moonchain")
	assert.Error(t, err)
}

func TestParseCoverageTypeRoundTripsWithString(t *testing.T) {
	for _, c := range CoverageTypes() {
		parsed, err := ParseCoverageType(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestParseCoverageTypeUnknownReturnsError(t *testing.T) {
	_, err := ParseCoverageType("Meteor")
	assert.Error(t, err)
}
