// Package infra contains technical adapters: stores, cache backends, event
// publishers and metrics sinks. These packages depend only on the
// interfaces defined in the core packages.
package infra
