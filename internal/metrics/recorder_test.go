package metrics

import "time"

// testRecorder is a hand-rolled Recorder used to assert interface completeness.
type testRecorder struct {
	stageDurations map[string]int
	runDurations   int
	outcomes       map[RunOutcome]int
	assets         map[AssetKind]int
	resolved       int
	unresolved     int
	cycles         int
}

var _ Recorder = (*testRecorder)(nil)
var _ Recorder = NoopRecorder{}
var _ Recorder = (*PrometheusRecorder)(nil)

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.stageDurations[stage]++
}
func (t *testRecorder) ObserveRunDuration(_ time.Duration) { t.runDurations++ }
func (t *testRecorder) IncRunOutcome(outcome RunOutcome)   { t.outcomes[outcome]++ }
func (t *testRecorder) AddAssets(kind AssetKind, n int)    { t.assets[kind] += n }
func (t *testRecorder) AddReferences(resolved, unresolved int) {
	t.resolved += resolved
	t.unresolved += unresolved
}
func (t *testRecorder) IncCyclesBroken() { t.cycles++ }
