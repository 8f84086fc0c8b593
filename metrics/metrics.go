package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID names one counter or histogram.
type MetricID uint16

const (
	LoginSuccess MetricID = iota
	LoginFailure
	GuestLogin
	Logout
	RegisterSuccess
	RegisterFailure
	// RehydrateCorrupt counts rehydrations that failed closed.
	RehydrateCorrupt
	GuardProceed
	GuardRedirectLogin
	GuardRedirectLanding
	GuardRedirectRoleLanding
	// GuardRedirectLoop counts navigations abandoned after too many redirects.
	GuardRedirectLoop
	APIRequest
	APIRequestFailure
	// APIResponse* count requests by HTTP status class. APIResponseNone is a
	// request that got no response at all.
	APIResponse2xx
	APIResponse4xx
	APIResponse5xx
	APIResponseOther
	APIResponseNone
	// ActionRejectedInFlight counts store actions refused because another was running.
	ActionRejectedInFlight
	// APILatency is the only histogram.
	APILatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

// Config toggles recording.
type Config struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics records counters and latency. Safe for concurrent use.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
	// latencyNanos is the running sum behind the APILatency histogram.
	latencyNanos atomic.Int64
}

// Snapshot is a point-in-time copy of every metric. Histogram buckets are not
// cumulative; Sums holds the total observed duration per histogram.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
	Sums       map[MetricID]time.Duration
}

func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d in the APILatency histogram. Other ids are ignored.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != APILatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
	m.latencyNanos.Add(int64(d))
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// ObserveRequest is an api.Observer: it counts every request, failed ones
// separately, the status class, and records latency.
func (m *Metrics) ObserveRequest(_, _ string, status int, elapsed time.Duration, err error) {
	m.Inc(APIRequest)
	if err != nil {
		m.Inc(APIRequestFailure)
	}
	m.Inc(statusClass(status))
	m.Observe(APILatency, elapsed)
}

func statusClass(status int) MetricID {
	switch {
	case status == 0:
		return APIResponseNone
	case status >= 200 && status <= 299:
		return APIResponse2xx
	case status >= 400 && status <= 499:
		return APIResponse4xx
	case status >= 500 && status <= 599:
		return APIResponse5xx
	default:
		return APIResponseOther
	}
}

func (m *Metrics) Snapshot() Snapshot {
	if m == nil || !m.enabled {
		return Snapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
			Sums:       map[MetricID]time.Duration{},
		}
	}

	s := Snapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
		Sums:       make(map[MetricID]time.Duration, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		if id == APILatency {
			continue
		}
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[APILatency].buckets[i])
		}
		s.Histograms[APILatency] = buckets
		s.Sums[APILatency] = time.Duration(m.latencyNanos.Load())
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 25:
		return 0
	case ms <= 50:
		return 1
	case ms <= 100:
		return 2
	case ms <= 250:
		return 3
	case ms <= 500:
		return 4
	case ms <= 1000:
		return 5
	case ms <= 2500:
		return 6
	default:
		return 7
	}
}
