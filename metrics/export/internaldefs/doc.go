// Package internaldefs describes what the exporters publish: counter families
// with one labelled series per outcome, and the API latency histogram. Each
// series computes its value from an [Input], so derived values such as
// successful requests stay identical in Prometheus and OTel output.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
