// Package metrics holds lock-free counters and a latency histogram for session,
// navigation and backend request outcomes.
//
// Counters are padded to a cache line and updated with atomic adds, so recording
// never takes a lock. A nil or disabled [Metrics] accepts every call and records
// nothing.
//
// Backend requests are also counted by HTTP status class, and the latency
// histogram keeps a running sum. Exporters live under metrics/export and read a
// [Snapshot] on demand.
package metrics
