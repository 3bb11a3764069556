package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSink writes alerts through a zerolog.Logger at a level derived
// from Severity, the same mapping the teacher's monitoring service
// uses to pick a zerolog level for each AlertLevel.
type LogSink struct {
	log zerolog.Logger
}

// NewLogSink wraps a logger as a Sink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log.With().Str("component", "alerts").Logger()}
}

// Send logs the alert and never itself returns an error.
func (s *LogSink) Send(_ context.Context, alert Alert) error {
	s.log.WithLevel(severityToZerolog(alert.Severity)).
		Str("kind", string(alert.Kind)).
		Str("product", alert.Product).
		Float64("current_value", alert.CurrentValue).
		Float64("limit_value", alert.LimitValue).
		Msg(alert.Message)
	return nil
}

func severityToZerolog(s Severity) zerolog.Level {
	switch s {
	case SeverityCritical:
		return zerolog.ErrorLevel
	case SeverityHigh:
		return zerolog.WarnLevel
	case SeverityMedium:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
