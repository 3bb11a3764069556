package events

import "context"

// Sink delivers an Alert somewhere: a log line, an on-call page, a
// webhook. Send is fire-and-forget from the caller's perspective — a
// failing sink must not block or fail the risk-monitor iteration that
// produced the alert (spec.md §4.7 EXPANDED).
type Sink interface {
	Send(ctx context.Context, alert Alert) error
}

// AlertSinkError wraps a delivery failure from a specific sink so
// callers can log it without treating it as fatal.
type AlertSinkError struct {
	Sink string
	Err  error
}

func (e *AlertSinkError) Error() string {
	return "events: " + e.Sink + " sink: " + e.Err.Error()
}

func (e *AlertSinkError) Unwrap() error { return e.Err }

// MultiSink fans an alert out to every configured sink, collecting
// (not stopping on) individual failures.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink builds a MultiSink from one or more sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Send delivers to every sink and returns the first error encountered,
// after attempting delivery to all of them.
func (m *MultiSink) Send(ctx context.Context, alert Alert) error {
	var first error
	for _, s := range m.sinks {
		if err := s.Send(ctx, alert); err != nil {
			if first == nil {
				first = &AlertSinkError{Sink: "multi", Err: err}
			}
		}
	}
	return first
}
