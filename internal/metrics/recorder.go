package metrics

import "time"

// Outcome labels for target result counters.
const (
	OutcomeSuccess  = "success"
	OutcomeWarnings = "warnings"
	OutcomeFailed   = "failed"
)

// Recorder defines observability hooks for target runs. Implementations may
// forward to Prometheus; the NoopRecorder keeps metrics optional.
type Recorder interface {
	ObserveTargetDuration(target string, d time.Duration)
	IncTargetOutcome(target, outcome string)
	SetWarnings(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveTargetDuration(string, time.Duration) {}
func (NoopRecorder) IncTargetOutcome(string, string)             {}
func (NoopRecorder) SetWarnings(int)                             {}
