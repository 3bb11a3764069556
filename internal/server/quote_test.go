package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonsurance/core/internal/catalog"
	"github.com/tonsurance/core/internal/market"
)

func TestHandleQuoteReturnsUnavailableWithoutMarketSnapshot(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quote?coverage=Depeg&chain=Ethereum&asset=USDC", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleQuoteRejectsUnknownProduct(t *testing.T) {
	s := newTestServer(t)
	s.market.Store(market.Conditions{Timestamp: time.Now()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quote?coverage=Depeg&chain=not-a-chain&asset=USDC", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuoteRejectsChainAssetMismatch(t *testing.T) {
	s := newTestServer(t)
	s.market.Store(market.Conditions{Timestamp: time.Now()})

	// DAI is not offered on Bitcoin (catalog.IsChainStablecoinCompatible).
	req := httptest.NewRequest(http.MethodGet, "/api/v1/quote?coverage=Depeg&chain=Bitcoin&asset=DAI", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuoteFreshSnapshotIsNotStale(t *testing.T) {
	s := newTestServer(t)
	s.market.Store(market.Conditions{Timestamp: time.Now(), OverallVolatilityIndex: 0.2})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quote?coverage=Depeg&chain=Ethereum&asset=USDC", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stale":false`)
}

func TestHandleQuoteOldSnapshotIsMarkedStale(t *testing.T) {
	s := newTestServer(t)
	s.market.Store(market.Conditions{Timestamp: time.Now().Add(-11 * time.Minute)})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quote?coverage=Depeg&chain=Ethereum&asset=USDC", nil)
	rec := httptest.NewRecorder()

	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"stale":true`)
}

func TestHandleQuoteRecordsRequestVolume(t *testing.T) {
	s := newTestServer(t)
	s.market.Store(market.Conditions{Timestamp: time.Now()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quote?coverage=Depeg&chain=Ethereum&asset=USDC", nil)
	s.router.ServeHTTP(httptest.NewRecorder(), req)

	top := s.requests.TopByVolume(1)
	require.Len(t, top, 1)
	assert.Equal(t, catalog.ProductKey{Coverage: catalog.Depeg, Chain: catalog.Ethereum, Asset: catalog.USDC}, top[0])
}
