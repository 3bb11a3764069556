package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
)

const (
	hlWriteWait          = 10 * time.Second
	hlDialTimeout        = 30 * time.Second
	hlBaseReconnectDelay = 5 * time.Second
	hlMaxReconnectDelay  = 5 * time.Minute
	hlCacheStaleAfter    = 5 * time.Minute
)

// HyperliquidStream is a reconnecting websocket client for
// Hyperliquid's funding-rate feed, grounded on the teacher's
// MarketStatusWebSocket (internal/clients/tradernet/websocket_client.go)
// — same nhooyr.io/websocket dependency, same reconnect-with-backoff
// shape, repurposed from market open/closed events to funding-rate
// ticks (spec.md §4.4: the hedge-cost fetcher "prefers a fresh stream
// sample, falls back to a point-in-time HTTP pull otherwise").
type HyperliquidStream struct {
	url  string
	log  zerolog.Logger
	conn *websocket.Conn

	mu           sync.RWMutex
	connCtx      context.Context
	cancelFunc   context.CancelFunc
	connected    bool
	reconnecting bool
	stopCh       chan struct{}
	stopped      bool

	cacheMu    sync.RWMutex
	funding    map[string]float64 // coin -> hourly funding rate
	lastUpdate time.Time
}

// NewHyperliquidStream builds a stream client against url (Hyperliquid's
// public websocket endpoint).
func NewHyperliquidStream(url string, log zerolog.Logger) *HyperliquidStream {
	return &HyperliquidStream{
		url:     url,
		log:     log.With().Str("component", "hyperliquid_stream").Logger(),
		stopCh:  make(chan struct{}),
		funding: make(map[string]float64),
	}
}

// Start dials the stream and begins the read loop, falling back to
// the background reconnect loop if the initial dial fails.
func (s *HyperliquidStream) Start() error {
	if err := s.connect(); err != nil {
		s.log.Warn().Err(err).Msg("initial hyperliquid dial failed, retrying in background")
		go s.reconnectLoop()
		return err
	}
	s.mu.RLock()
	ctx := s.connCtx
	s.mu.RUnlock()
	go s.readLoop(ctx)
	return nil
}

// Stop closes the stream and halts reconnection.
func (s *HyperliquidStream) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stopCh)
	return s.disconnect()
}

func (s *HyperliquidStream) connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(context.Background(), hlDialTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial hyperliquid websocket: %w", err)
	}

	connCtx, connCancel := context.WithCancel(context.Background())
	s.conn = conn
	s.connCtx = connCtx
	s.cancelFunc = connCancel
	s.connected = true

	if err := s.subscribe(connCtx); err != nil {
		connCancel()
		conn.Close(websocket.StatusNormalClosure, "subscribe failed")
		s.conn, s.connCtx, s.cancelFunc, s.connected = nil, nil, nil, false
		return fmt.Errorf("subscribe to hyperliquid funding channel: %w", err)
	}
	return nil
}

func (s *HyperliquidStream) disconnect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}
	err := s.conn.Close(websocket.StatusNormalClosure, "")
	s.conn, s.connCtx, s.connected = nil, nil, false
	return err
}

type hlSubscribeMsg struct {
	Method       string            `json:"method"`
	Subscription map[string]string `json:"subscription"`
}

func (s *HyperliquidStream) subscribe(ctx context.Context) error {
	msg := hlSubscribeMsg{Method: "subscribe", Subscription: map[string]string{"type": "activeAssetCtx"}}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, hlWriteWait)
	defer cancel()
	return s.conn.Write(writeCtx, websocket.MessageText, data)
}

type hlFundingTick struct {
	Channel string `json:"channel"`
	Data    struct {
		Coin    string  `json:"coin"`
		Funding float64 `json:"funding"`
	} `json:"data"`
}

func (s *HyperliquidStream) readLoop(ctx context.Context) {
	defer func() {
		s.mu.RLock()
		stopped := s.stopped
		s.mu.RUnlock()
		if !stopped {
			go s.reconnectLoop()
		}
	}()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		s.mu.RLock()
		conn := s.conn
		s.mu.RUnlock()
		if conn == nil {
			return
		}

		msgType, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if msgType != websocket.MessageText {
			continue
		}

		var tick hlFundingTick
		if err := json.Unmarshal(data, &tick); err != nil {
			s.log.Debug().Err(err).Msg("failed to parse hyperliquid funding tick")
			continue
		}
		if tick.Data.Coin == "" {
			continue
		}

		s.cacheMu.Lock()
		s.funding[tick.Data.Coin] = tick.Data.Funding
		s.lastUpdate = time.Now()
		s.cacheMu.Unlock()
	}
}

func (s *HyperliquidStream) reconnectLoop() {
	s.mu.Lock()
	if s.reconnecting || s.stopped {
		s.mu.Unlock()
		return
	}
	s.reconnecting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.reconnecting = false
		s.mu.Unlock()
	}()

	attempt := 0
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		attempt++
		delay := backoffDelay(attempt)

		select {
		case <-time.After(delay):
		case <-s.stopCh:
			return
		}

		if err := s.connect(); err != nil {
			s.log.Error().Err(err).Int("attempt", attempt).Msg("hyperliquid reconnect failed")
			continue
		}

		s.mu.RLock()
		ctx := s.connCtx
		s.mu.RUnlock()
		go s.readLoop(ctx)
		return
	}
}

func backoffDelay(attempt int) time.Duration {
	delay := float64(hlBaseReconnectDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(hlMaxReconnectDelay) {
		delay = float64(hlMaxReconnectDelay)
	}
	return time.Duration(delay)
}

// HourlyFunding returns the last-known hourly funding rate for coin,
// and whether the cache is fresh enough to trust.
func (s *HyperliquidStream) HourlyFunding(coin string) (rate float64, fresh bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()

	rate, ok := s.funding[coin]
	if !ok {
		return 0, false
	}
	return rate, time.Since(s.lastUpdate) <= hlCacheStaleAfter
}

// IsConnected reports the current connection state.
func (s *HyperliquidStream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}
