package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metricsHandler exposes every promauto-registered collector
// (internal/metrics.NewRegistry registers against the default
// registerer, so a plain promhttp.Handler is sufficient here; the
// Registry passed into Config is not otherwise dereferenced by this
// package, it only documents that metrics must already be wired by
// the process before the server starts).
func (s *Server) metricsHandler() http.Handler {
	return promhttp.Handler()
}
