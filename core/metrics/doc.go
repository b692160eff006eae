// Package metrics defines the sinks recording matching outcomes. Sinks like
// PromSink and InfluxSink (infra/metrics) record match counts, rejections,
// cache degradations and saved groups and can be combined with
// NewMultiSink. The factory helpers return a MultiSink automatically when
// multiple sinks are configured.
package metrics
