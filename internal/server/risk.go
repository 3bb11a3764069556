package server

import "net/http"

// riskSnapshotResponse renders the portfolio-level fields of the most
// recent riskmonitor.Snapshot. Alerts are served separately by
// handleRiskAlerts.
type riskSnapshotResponse struct {
	VaR95             float64 `json:"var_95"`
	VaR99             float64 `json:"var_99"`
	CVaR95            float64 `json:"cvar_95"`
	ExpectedLoss      float64 `json:"expected_loss"`
	LTV               float64 `json:"ltv"`
	ReserveRatio      float64 `json:"reserve_ratio"`
	CorrelationRegime string  `json:"correlation_regime"`
	ActivePolicyCount int     `json:"active_policy_count"`
	AlertCount        int     `json:"alert_count"`
	GeneratedAt       string  `json:"generated_at"`
}

func (s *Server) handleRiskSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.monitor.Latest()
	if !ok {
		s.writeError(w, r, http.StatusServiceUnavailable, "no risk snapshot available yet")
		return
	}

	s.writeData(w, r, http.StatusOK, riskSnapshotResponse{
		VaR95:             snap.VaR95,
		VaR99:             snap.VaR99,
		CVaR95:            snap.CVaR95,
		ExpectedLoss:      snap.ExpectedLoss,
		LTV:               snap.LTV,
		ReserveRatio:      snap.ReserveRatio,
		CorrelationRegime: string(snap.CorrelationRegime),
		ActivePolicyCount: snap.ActivePolicyCount,
		AlertCount:        len(snap.Alerts),
		GeneratedAt:       snap.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}

type alertResponse struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	Severity     string  `json:"severity"`
	Message      string  `json:"message"`
	CurrentValue float64 `json:"current_value"`
	LimitValue   float64 `json:"limit_value"`
	Product      string  `json:"product,omitempty"`
}

func (s *Server) handleRiskAlerts(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.monitor.Latest()
	if !ok {
		s.writeError(w, r, http.StatusServiceUnavailable, "no risk snapshot available yet")
		return
	}

	out := make([]alertResponse, 0, len(snap.Alerts))
	for _, a := range snap.Alerts {
		out = append(out, alertResponse{
			ID:           a.ID,
			Kind:         string(a.Kind),
			Severity:     string(a.Severity),
			Message:      a.Message,
			CurrentValue: a.CurrentValue,
			LimitValue:   a.LimitValue,
			Product:      a.Product,
		})
	}
	s.writeData(w, r, http.StatusOK, out)
}
