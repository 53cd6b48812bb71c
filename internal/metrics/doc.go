// Package metrics provides observability hooks for revision runs.
//
// Components receive a Recorder through dependency injection and default to NoopRecorder,
// so metrics collection never needs nil checks at call sites:
//
//	rev := revision.New(revision.Options{Metrics: metrics.NoopRecorder{}})
//
// The Prometheus implementation registers its collectors on a caller supplied registry.
// A one-shot CLI run has no scrape endpoint, so the recorder can also dump the registry
// to a node_exporter textfile after the run.
package metrics
