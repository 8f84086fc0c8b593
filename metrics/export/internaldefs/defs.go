package internaldefs

import (
	"github.com/MrEthical07/backoffice/metrics"
	"github.com/MrEthical07/backoffice/notify"
)

// Input is everything one collection reads.
type Input struct {
	Metrics metrics.Snapshot
	Notices notify.Stats
}

// Empty reports whether metrics are disabled and no notice was ever handled.
func (in Input) Empty() bool {
	return len(in.Metrics.Counters) == 0 && len(in.Metrics.Histograms) == 0 && in.Notices == (notify.Stats{})
}

type Label struct {
	Name  string
	Value string
}

// Series is one labelled value of a family.
type Series struct {
	Labels []Label
	Value  func(Input) uint64
}

// Family is a counter exported under one name with one series per label set.
type Family struct {
	Name   string
	Help   string
	Series []Series
}

type Histogram struct {
	ID   metrics.MetricID
	Name string
	Help string
}

func counter(id metrics.MetricID) func(Input) uint64 {
	return func(in Input) uint64 { return in.Metrics.Counters[id] }
}

// succeeded derives the requests that did not fail. The two counters are read
// separately, so the difference is clamped at zero.
func succeeded(in Input) uint64 {
	total := in.Metrics.Counters[metrics.APIRequest]
	failed := in.Metrics.Counters[metrics.APIRequestFailure]
	if failed > total {
		return 0
	}
	return total - failed
}

func labels(kv ...string) []Label {
	out := make([]Label, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, Label{Name: kv[i], Value: kv[i+1]})
	}
	return out
}

var Families = []Family{
	{
		Name: "backoffice_sign_ins_total",
		Help: "Sign-in attempts by method and outcome.",
		Series: []Series{
			{Labels: labels("method", "password", "outcome", "success"), Value: counter(metrics.LoginSuccess)},
			{Labels: labels("method", "password", "outcome", "failure"), Value: counter(metrics.LoginFailure)},
			{Labels: labels("method", "guest", "outcome", "success"), Value: counter(metrics.GuestLogin)},
		},
	},
	{
		Name:   "backoffice_sign_outs_total",
		Help:   "Sign-outs.",
		Series: []Series{{Value: counter(metrics.Logout)}},
	},
	{
		Name: "backoffice_registrations_total",
		Help: "User registrations by outcome.",
		Series: []Series{
			{Labels: labels("outcome", "success"), Value: counter(metrics.RegisterSuccess)},
			{Labels: labels("outcome", "failure"), Value: counter(metrics.RegisterFailure)},
		},
	},
	{
		Name:   "backoffice_session_rehydrate_failures_total",
		Help:   "Session snapshots that could not be read and signed the client out.",
		Series: []Series{{Value: counter(metrics.RehydrateCorrupt)}},
	},
	{
		Name: "backoffice_navigation_decisions_total",
		Help: "Navigation guard decisions by outcome.",
		Series: []Series{
			{Labels: labels("outcome", "proceed"), Value: counter(metrics.GuardProceed)},
			{Labels: labels("outcome", "login"), Value: counter(metrics.GuardRedirectLogin)},
			{Labels: labels("outcome", "landing"), Value: counter(metrics.GuardRedirectLanding)},
			{Labels: labels("outcome", "role_landing"), Value: counter(metrics.GuardRedirectRoleLanding)},
			{Labels: labels("outcome", "loop"), Value: counter(metrics.GuardRedirectLoop)},
		},
	},
	{
		Name: "backoffice_api_requests_total",
		Help: "Backend requests by result.",
		Series: []Series{
			{Labels: labels("result", "ok"), Value: succeeded},
			{Labels: labels("result", "failed"), Value: counter(metrics.APIRequestFailure)},
		},
	},
	{
		Name: "backoffice_api_responses_total",
		Help: "Backend responses by HTTP status class; none means no response arrived.",
		Series: []Series{
			{Labels: labels("class", "2xx"), Value: counter(metrics.APIResponse2xx)},
			{Labels: labels("class", "4xx"), Value: counter(metrics.APIResponse4xx)},
			{Labels: labels("class", "5xx"), Value: counter(metrics.APIResponse5xx)},
			{Labels: labels("class", "other"), Value: counter(metrics.APIResponseOther)},
			{Labels: labels("class", "none"), Value: counter(metrics.APIResponseNone)},
		},
	},
	{
		Name:   "backoffice_store_actions_rejected_total",
		Help:   "Store actions refused because another action of the same store was running.",
		Series: []Series{{Labels: labels("reason", "in_flight"), Value: counter(metrics.ActionRejectedInFlight)}},
	},
	{
		Name: "backoffice_notices_total",
		Help: "User-facing notices by what the dispatcher did with them.",
		Series: []Series{
			{Labels: labels("outcome", "delivered"), Value: func(in Input) uint64 { return in.Notices.Delivered }},
			{Labels: labels("outcome", "dropped"), Value: func(in Input) uint64 { return in.Notices.Dropped }},
			{Labels: labels("outcome", "coalesced"), Value: func(in Input) uint64 { return in.Notices.Coalesced }},
		},
	},
}

var Latency = Histogram{
	ID:   metrics.APILatency,
	Name: "backoffice_api_latency_seconds",
	Help: "Backend request latency.",
}

// LatencyBounds are the upper bounds of the APILatency buckets, matching
// metrics' bucketing, in Prometheus "le" notation.
var LatencyBounds = [8]string{"0.025", "0.05", "0.1", "0.25", "0.5", "1", "2.5", "+Inf"}

// CumulativeBuckets turns raw per-bucket counts into cumulative ones,
// zero-filling short input.
func CumulativeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := range out {
		if i < len(raw) {
			running += raw[i]
		}
		out[i] = running
	}
	return out
}

// SumSeconds returns the observed latency total in seconds.
func SumSeconds(in Input, id metrics.MetricID) float64 {
	return in.Metrics.Sums[id].Seconds()
}
