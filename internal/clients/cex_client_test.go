package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCEXClientLiquidationRateNormalizesCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"side":"SELL","origQty":"1"},{"side":"BUY","origQty":"2"}]`))
	}))
	defer srv.Close()

	c := NewCEXClient(srv.URL, zerolog.Nop())
	rate, err := c.LiquidationRate(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 2.0/calmMarketLiquidationCount, rate, 1e-9)
}

func TestCEXClientNoVenuesErrors(t *testing.T) {
	c := NewCEXClient("", zerolog.Nop())
	_, err := c.LiquidationRate(context.Background())
	assert.Error(t, err)
}
