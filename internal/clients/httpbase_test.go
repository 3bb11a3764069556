package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonsurance/core/internal/reliability"
)

func TestBaseDoReturnsOnFirstSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := NewBase("test", 60, zerolog.Nop())
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := b.Do(context.Background(), req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBaseDoRetriesOn500ThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := NewBase("test", 60, zerolog.Nop())
	b.Backoff = reliability.Backoff{Base: 0, Max: 0, MaxRetries: 3}
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := b.Do(context.Background(), req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestBaseDoRateLimited(t *testing.T) {
	b := NewBase("test", 1, zerolog.Nop())
	b.Backoff = reliability.Backoff{Base: 0, Max: 0, MaxRetries: 0}
	req, _ := http.NewRequest(http.MethodGet, "http://127.0.0.1:1", nil)

	_, _ = b.Do(context.Background(), req) // consumes the single token; dial to a closed port fails fast
	_, err := b.Do(context.Background(), req)
	require.Error(t, err)
	var cerr *ClientError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, KindRateLimited, cerr.Kind)
}
