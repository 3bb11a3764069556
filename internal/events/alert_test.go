package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertKeyWithProduct(t *testing.T) {
	a := Alert{Kind: KindLTVBreach, Product: "Depeg-Ethereum-USDC"}
	assert.Equal(t, "ltv_breach:Depeg-Ethereum-USDC", a.Key())
}

func TestAlertKeyWithoutProduct(t *testing.T) {
	a := Alert{Kind: KindReserveBreach}
	assert.Equal(t, "reserve_breach", a.Key())
}

type fakeSink struct {
	sent []Alert
	err  error
}

func (f *fakeSink) Send(_ context.Context, a Alert) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, a)
	return nil
}

func TestMultiSinkFansOutAndCollectsErrors(t *testing.T) {
	good := &fakeSink{}
	bad := &fakeSink{err: errors.New("boom")}
	m := NewMultiSink(good, bad)

	err := m.Send(context.Background(), Alert{Kind: KindStaleSnapshot})
	require.Error(t, err)
	assert.Len(t, good.sent, 1)
}

func TestDeduperSuppressesWithinWindow(t *testing.T) {
	d := NewDeduper(10 * time.Minute)
	now := time.Unix(1_700_000_000, 0)

	assert.True(t, d.Allow("k", now))
	assert.False(t, d.Allow("k", now.Add(time.Minute)))
	assert.True(t, d.Allow("k", now.Add(11*time.Minute)))
}

func TestDeduperCleanupDropsExpired(t *testing.T) {
	d := NewDeduper(time.Minute)
	now := time.Unix(1_700_000_000, 0)
	d.Allow("k", now)
	d.Cleanup(now.Add(2 * time.Minute))

	assert.True(t, d.Allow("k", now.Add(2*time.Minute)))
}

func TestDedupingSinkDropsRepeat(t *testing.T) {
	inner := &fakeSink{}
	t0 := time.Unix(1_700_000_000, 0)
	s := NewDedupingSink(inner, 10*time.Minute)
	s.now = func() time.Time { return t0 }

	require.NoError(t, s.Send(context.Background(), Alert{Kind: KindLTVBreach}))
	require.NoError(t, s.Send(context.Background(), Alert{Kind: KindLTVBreach}))
	assert.Len(t, inner.sent, 1)
}

func TestDedupingSinkDeduperExposesUnderlyingCleanup(t *testing.T) {
	inner := &fakeSink{}
	t0 := time.Unix(1_700_000_000, 0)
	s := NewDedupingSink(inner, time.Minute)
	s.now = func() time.Time { return t0 }

	require.NoError(t, s.Send(context.Background(), Alert{Kind: KindLTVBreach}))
	s.Deduper().Cleanup(t0.Add(2 * time.Minute))

	s.now = func() time.Time { return t0.Add(2 * time.Minute) }
	require.NoError(t, s.Send(context.Background(), Alert{Kind: KindLTVBreach}))
	assert.Len(t, inner.sent, 2)
}

func TestPagerDutySinkSkipsLowSeverity(t *testing.T) {
	s := NewPagerDutySink("", "", testLogger())
	err := s.Send(context.Background(), Alert{Kind: KindStaleSnapshot, Severity: SeverityLow})
	assert.NoError(t, err)
}

func TestPagerDutySinkSkipsWithoutRoutingKey(t *testing.T) {
	s := NewPagerDutySink("http://example.invalid", "", testLogger())
	err := s.Send(context.Background(), Alert{Kind: KindLTVBreach, Severity: SeverityCritical})
	assert.NoError(t, err)
}
