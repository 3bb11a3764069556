package clients

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tonsurance/core/internal/reliability"
)

// Base is the HTTP scaffolding every client in this package embeds:
// a timeout'd *http.Client, a per-provider token bucket gate, and
// exponential-backoff retry, mirroring the teacher's one-client-per-
// provider shape (exchangerate.Client, alphavantage client) but
// factored out so each client doesn't repeat it.
type Base struct {
	Provider string
	HTTP     *http.Client
	Limiter  *reliability.TokenBucket
	Backoff  reliability.Backoff
	Log      zerolog.Logger
}

// NewBase builds a Base with a 10s request timeout (matching the
// teacher's exchangerate/alphavantage clients), a per-minute rate
// budget, and the package-wide default retry backoff.
func NewBase(provider string, ratePerMinute int, log zerolog.Logger) Base {
	return Base{
		Provider: provider,
		HTTP:     &http.Client{Timeout: 10 * time.Second},
		Limiter:  reliability.NewTokenBucket(ratePerMinute),
		Backoff:  reliability.DefaultClientBackoff(),
		Log:      log.With().Str("client", provider).Logger(),
	}
}

// Do executes req with retry/backoff, honoring the token bucket
// before each attempt. The caller is responsible for closing the
// response body of a successful result.
func (b Base) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if !b.Limiter.Allow() {
			return nil, &ClientError{Provider: b.Provider, Kind: KindRateLimited, Err: context.DeadlineExceeded}
		}

		resp, err := b.HTTP.Do(req.WithContext(ctx))
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if err == nil {
			resp.Body.Close()
			lastErr = &ClientError{Provider: b.Provider, Kind: KindUpstream, Status: resp.StatusCode, Err: context.DeadlineExceeded}
		} else {
			lastErr = &ClientError{Provider: b.Provider, Kind: KindTimeout, Err: err}
		}

		if b.Backoff.Exhausted(attempt) {
			return nil, lastErr
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.Backoff.Delay(attempt)):
		}
	}
}
