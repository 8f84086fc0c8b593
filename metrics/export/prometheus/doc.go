// Package prometheus renders backoffice metrics in Prometheus text exposition format.
//
// [NewExporter] accepts any source with MetricsSnapshot and NoticeStats (the
// root backoffice.Client qualifies) and exposes an [http.Handler]. Families are
// labelled by outcome, e.g. backoffice_navigation_decisions_total{outcome="login"};
// the single histogram is backoffice_api_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate client state.
package prometheus
