package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeHealthFetchComputesDeltaAndScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"currentTVL": 900, "previousDayTVL": 1000}`))
	}))
	defer srv.Close()

	c := NewBridgeHealthClient(srv.URL, zerolog.Nop())
	got, err := c.Fetch(context.Background(), "arbitrum-bridge", time.Now())
	require.NoError(t, err)
	assert.InDelta(t, -0.10, got.TVLDelta24h, 0.001)
	assert.Equal(t, 0.002, got.TxFailureRate)
	assert.Greater(t, got.HealthScore, 0.0)
	assert.Less(t, got.HealthScore, 1.0)
}

func TestBridgeHealthUnknownBridgeUsesDefaultFactors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"currentTVL": 100, "previousDayTVL": 100}`))
	}))
	defer srv.Close()

	c := NewBridgeHealthClient(srv.URL, zerolog.Nop())
	got, err := c.Fetch(context.Background(), "unknown-bridge", time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0.02, got.TxFailureRate)
}

func TestHealthScoreClampsToZeroOnSevereConditions(t *testing.T) {
	assert.Equal(t, 0.0, healthScore(0.5, -0.9))
}
