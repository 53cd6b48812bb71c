package metrics

import "time"

// RunOutcome enumerates final statuses of a revision run.
type RunOutcome string

const (
	OutcomeSuccess  RunOutcome = "success"
	OutcomeFailed   RunOutcome = "failed"
	OutcomeCanceled RunOutcome = "canceled"
)

// AssetKind labels counted assets.
type AssetKind string

const (
	AssetRevisioned AssetKind = "revisioned"
	AssetIgnored    AssetKind = "ignored"
	AssetExternal   AssetKind = "external"
)

// Recorder defines observability hooks for revision runs. Implementations may forward
// to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome RunOutcome)
	AddAssets(kind AssetKind, n int)
	AddReferences(resolved, unresolved int)
	IncCyclesBroken()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveRunDuration(time.Duration)           {}
func (NoopRecorder) IncRunOutcome(RunOutcome)                   {}
func (NoopRecorder) AddAssets(AssetKind, int)                   {}
func (NoopRecorder) AddReferences(int, int)                     {}
func (NoopRecorder) IncCyclesBroken()                           {}
