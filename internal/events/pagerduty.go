package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// PagerDutySink delivers every alert above Low severity to the PagerDuty
// Events API v2, following the teacher's http.Client-with-timeout
// client shape (internal/clients/yahoo/client.go).
type PagerDutySink struct {
	client     *http.Client
	url        string
	routingKey string
	log        zerolog.Logger
}

// NewPagerDutySink builds a sink. url is the Events API v2 endpoint;
// routingKey is the integration key for the target service.
func NewPagerDutySink(url, routingKey string, log zerolog.Logger) *PagerDutySink {
	return &PagerDutySink{
		client:     &http.Client{Timeout: 10 * time.Second},
		url:        url,
		routingKey: routingKey,
		log:        log.With().Str("client", "pagerduty").Logger(),
	}
}

type pagerDutyPayload struct {
	RoutingKey  string          `json:"routing_key"`
	EventAction string          `json:"event_action"`
	DedupKey    string          `json:"dedup_key"`
	Payload     pagerDutyDetail `json:"payload"`
}

type pagerDutyDetail struct {
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	Severity string `json:"severity"`
}

// Send triggers a PagerDuty event. Low-severity alerts are not paged;
// Send returns nil for them without making a request.
func (s *PagerDutySink) Send(ctx context.Context, alert Alert) error {
	if alert.Severity == SeverityLow {
		return nil
	}
	if s.routingKey == "" {
		return nil
	}

	body := pagerDutyPayload{
		RoutingKey:  s.routingKey,
		EventAction: "trigger",
		DedupKey:    alert.Key(),
		Payload: pagerDutyDetail{
			Summary:  alert.String(),
			Source:   "tonsurance-core",
			Severity: pagerDutySeverity(alert.Severity),
		},
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return &AlertSinkError{Sink: "pagerduty", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(buf))
	if err != nil {
		return &AlertSinkError{Sink: "pagerduty", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return &AlertSinkError{Sink: "pagerduty", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &AlertSinkError{Sink: "pagerduty", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}
	return nil
}

// pagerDutySeverity maps this package's Severity onto the four values
// the PagerDuty Events API v2 accepts (critical/error/warning/info).
func pagerDutySeverity(s Severity) string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityHigh:
		return "error"
	case SeverityMedium:
		return "warning"
	default:
		return "info"
	}
}
