// Package otel binds backoffice metrics to OpenTelemetry observable instruments.
//
// [NewExporter] registers one Int64ObservableCounter per metric family and
// reports every labelled series as an attribute set on it. The API latency
// histogram becomes _bucket (keyed by le), _count and _sum instruments. A single
// callback reads the source on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate client state.
package otel
