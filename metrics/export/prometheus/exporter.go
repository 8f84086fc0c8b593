package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/MrEthical07/backoffice/metrics"
	"github.com/MrEthical07/backoffice/metrics/export/internaldefs"
	"github.com/MrEthical07/backoffice/notify"
)

// Source supplies metric snapshots and notice delivery counts.
type Source interface {
	MetricsSnapshot() metrics.Snapshot
	NoticeStats() notify.Stats
}

// Exporter renders metrics in Prometheus text exposition format.
type Exporter struct {
	source Source
}

func NewExporter(source Source) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler that serves the rendered metrics.
func (p *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(p.Render()))
	})
}

// Render returns the current metrics, or "" when metrics are disabled and the
// dispatcher has handled nothing.
func (p *Exporter) Render() string {
	if p == nil || p.source == nil {
		return ""
	}

	in := internaldefs.Input{
		Metrics: p.source.MetricsSnapshot(),
		Notices: p.source.NoticeStats(),
	}
	if in.Empty() {
		return ""
	}

	var b strings.Builder
	b.Grow(4096)

	for _, f := range internaldefs.Families {
		writeHeader(&b, f.Name, f.Help, "counter")
		for _, s := range f.Series {
			writeSample(&b, f.Name, s.Labels, strconv.FormatUint(s.Value(in), 10))
		}
	}

	if raw, ok := in.Metrics.Histograms[internaldefs.Latency.ID]; ok {
		writeLatency(&b, in, raw)
	}

	return b.String()
}

func writeLatency(b *strings.Builder, in internaldefs.Input, raw []uint64) {
	h := internaldefs.Latency
	cumulative := internaldefs.CumulativeBuckets(raw)

	writeHeader(b, h.Name, h.Help, "histogram")
	for i, le := range internaldefs.LatencyBounds {
		writeSample(b, h.Name+"_bucket", []internaldefs.Label{{Name: "le", Value: le}}, strconv.FormatUint(cumulative[i], 10))
	}
	writeSample(b, h.Name+"_sum", nil, strconv.FormatFloat(internaldefs.SumSeconds(in, h.ID), 'g', -1, 64))
	writeSample(b, h.Name+"_count", nil, strconv.FormatUint(cumulative[len(cumulative)-1], 10))
}

func writeHeader(b *strings.Builder, name, help, kind string) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteString("\n# TYPE ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(kind)
	b.WriteByte('\n')
}

func writeSample(b *strings.Builder, name string, labels []internaldefs.Label, value string) {
	b.WriteString(name)
	if len(labels) > 0 {
		b.WriteByte('{')
		for i, l := range labels {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(l.Name)
			b.WriteString(`="`)
			b.WriteString(escapeLabel(l.Value))
			b.WriteByte('"')
		}
		b.WriteByte('}')
	}
	b.WriteByte(' ')
	b.WriteString(value)
	b.WriteByte('\n')
}

var (
	helpEscaper  = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
	labelEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`)
)

func escapeHelp(help string) string   { return helpEscaper.Replace(help) }
func escapeLabel(value string) string { return labelEscaper.Replace(value) }
