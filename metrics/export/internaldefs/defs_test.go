package internaldefs

import (
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/backoffice/metrics"
	"github.com/MrEthical07/backoffice/notify"
)

func TestFamiliesUniqueAndPrefixed(t *testing.T) {
	seen := map[string]bool{}
	for _, f := range Families {
		if !strings.HasPrefix(f.Name, "backoffice_") || !strings.HasSuffix(f.Name, "_total") {
			t.Fatalf("unexpected counter name %q", f.Name)
		}
		if seen[f.Name] {
			t.Fatalf("duplicate family %q", f.Name)
		}
		seen[f.Name] = true

		sets := map[string]bool{}
		for _, s := range f.Series {
			var key []string
			for _, l := range s.Labels {
				key = append(key, l.Name+"="+l.Value)
			}
			k := strings.Join(key, ",")
			if sets[k] {
				t.Fatalf("%s: duplicate label set %q", f.Name, k)
			}
			sets[k] = true
		}
	}
}

func TestEveryCounterIsExported(t *testing.T) {
	in := Input{Metrics: metrics.Snapshot{Counters: map[metrics.MetricID]uint64{}}}
	for id := metrics.MetricID(0); id < metrics.APILatency; id++ {
		in.Metrics.Counters[id] = 1
	}
	// APIRequest only shows up through the derived ok series.
	in.Metrics.Counters[metrics.APIRequest] = 3

	var total uint64
	for _, f := range Families {
		for _, s := range f.Series {
			total += s.Value(in)
		}
	}
	// Every counter but APIRequest contributes 1, plus ok = 3 - 1.
	want := uint64(metrics.APILatency) - 1 + 2
	if total != want {
		t.Fatalf("exported total %d, want %d", total, want)
	}
}

func TestSucceededClampsAtZero(t *testing.T) {
	in := Input{Metrics: metrics.Snapshot{Counters: map[metrics.MetricID]uint64{
		metrics.APIRequest:        1,
		metrics.APIRequestFailure: 2,
	}}}
	if got := succeeded(in); got != 0 {
		t.Fatalf("succeeded = %d", got)
	}
}

func TestInputEmpty(t *testing.T) {
	if !(Input{}).Empty() {
		t.Fatal("zero input must be empty")
	}
	if (Input{Notices: notify.Stats{Dropped: 1}}).Empty() {
		t.Fatal("dropped notices must be exported even with metrics disabled")
	}
}

func TestCumulativeBuckets(t *testing.T) {
	got := CumulativeBuckets([]uint64{1, 2, 3})
	want := [8]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSumSeconds(t *testing.T) {
	in := Input{Metrics: metrics.Snapshot{Sums: map[metrics.MetricID]time.Duration{metrics.APILatency: 1500 * time.Millisecond}}}
	if got := SumSeconds(in, metrics.APILatency); got != 1.5 {
		t.Fatalf("SumSeconds = %v", got)
	}
}
