// Package server exposes the thin HTTP surface around the pricing and
// risk engine: health, Prometheus metrics, and a read-only quote/risk
// query API backed by the same in-process caches the risk monitor and
// oracle keeper publish to. It never computes or mutates policy state
// itself; it only renders last-known snapshots (spec.md §7's REST
// quote semantics). Grounded on the teacher's
// trader-go/internal/server/server.go router/middleware/lifecycle
// shape.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/tonsurance/core/internal/market"
	"github.com/tonsurance/core/internal/metrics"
	"github.com/tonsurance/core/internal/policy"
	"github.com/tonsurance/core/internal/pricing"
	"github.com/tonsurance/core/internal/riskmonitor"
)

// quoteValidityWindow is how old a MarketConditions snapshot can be
// before a quote is marked stale (spec.md §7: "default 10 minutes").
const quoteValidityWindow = 10 * time.Minute

// VaultReader is the port onto the vault's pool-wide capital and
// reserves; coverage sold per product is summed from the policy store
// instead. The real implementation lives with the policy store's
// backing ledger, outside this module's scope.
type VaultReader interface {
	Read(ctx context.Context) (riskmonitor.PoolState, error)
}

// Config holds everything the HTTP surface needs to render
// last-known state. Nothing here is mutated by the server.
type Config struct {
	Port    int
	DevMode bool
	Log     zerolog.Logger

	// AllowedOrigins is the CORS allow-list. Nil or empty means "*".
	AllowedOrigins []string

	Market   *market.Cache[market.Conditions]
	Policies policy.Store
	Vault    VaultReader
	Pricing  *pricing.Engine
	Monitor  *riskmonitor.Monitor
	Metrics  *metrics.Registry

	Requests *RequestCounter
}

// Server is the process's HTTP surface.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	port   int

	market   *market.Cache[market.Conditions]
	policies policy.Store
	vault    VaultReader
	pricing  *pricing.Engine
	monitor  *riskmonitor.Monitor
	metrics  *metrics.Registry
	requests *RequestCounter
}

// New builds a Server and wires its routes. Call Start to serve.
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "server").Logger(),
		port:     cfg.Port,
		market:   cfg.Market,
		policies: cfg.Policies,
		vault:    cfg.Vault,
		pricing:  cfg.Pricing,
		monitor:  cfg.Monitor,
		metrics:  cfg.Metrics,
		requests: cfg.Requests,
	}

	s.setupMiddleware(cfg.DevMode, cfg.AllowedOrigins)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware(devMode bool, allowedOrigins []string) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", s.metricsHandler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/quote", s.handleQuote)
		r.Get("/risk/snapshot", s.handleRiskSnapshot)
		r.Get("/risk/alerts", s.handleRiskAlerts)
		r.Get("/tranche/apy", s.handleTrancheAPY)
	})
}

// Start serves until the process is signalled to stop; ListenAndServe
// always returns a non-nil error, http.ErrServerClosed on a clean
// Shutdown.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
