package otel

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/backoffice/metrics"
	"github.com/MrEthical07/backoffice/metrics/export/internaldefs"
	"github.com/MrEthical07/backoffice/notify"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// Source supplies metric snapshots and notice delivery counts.
type Source interface {
	MetricsSnapshot() metrics.Snapshot
	NoticeStats() notify.Stats
}

type series struct {
	attrs metric.ObserveOption
	value func(internaldefs.Input) uint64
}

type family struct {
	instrument metric.Int64ObservableCounter
	series     []series
}

type latency struct {
	buckets metric.Int64ObservableCounter
	bounds  [8]metric.ObserveOption
	count   metric.Int64ObservableCounter
	sum     metric.Float64ObservableCounter
}

type Exporter struct {
	source       Source
	registration metric.Registration
	families     []family
	latency      latency
}

func attributes(labels []internaldefs.Label) metric.ObserveOption {
	kvs := make([]attribute.KeyValue, 0, len(labels))
	for _, l := range labels {
		kvs = append(kvs, attribute.String(l.Name, l.Value))
	}
	return metric.WithAttributeSet(attribute.NewSet(kvs...))
}

// NewExporter registers one observable counter per metric family, with a
// series per label set, and the API latency histogram as bucket, count and
// sum instruments. A single callback reads the source per collection.
func NewExporter(meter metric.Meter, source Source) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &Exporter{source: source}
	observables := make([]metric.Observable, 0, len(internaldefs.Families)+3)

	for _, def := range internaldefs.Families {
		ins, err := meter.Int64ObservableCounter(def.Name, metric.WithDescription(def.Help))
		if err != nil {
			return nil, fmt.Errorf("create observable counter %s: %w", def.Name, err)
		}
		f := family{instrument: ins, series: make([]series, 0, len(def.Series))}
		for _, s := range def.Series {
			f.series = append(f.series, series{attrs: attributes(s.Labels), value: s.Value})
		}
		e.families = append(e.families, f)
		observables = append(observables, ins)
	}

	if err := e.registerLatency(meter); err != nil {
		return nil, err
	}
	observables = append(observables, e.latency.buckets, e.latency.count, e.latency.sum)

	registration, err := meter.RegisterCallback(e.observe, observables...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = registration
	return e, nil
}

func (e *Exporter) registerLatency(meter metric.Meter) error {
	h := internaldefs.Latency
	var err error

	e.latency.buckets, err = meter.Int64ObservableCounter(h.Name+"_bucket",
		metric.WithDescription("Cumulative latency bucket counts, keyed by the le attribute."))
	if err != nil {
		return fmt.Errorf("create latency buckets: %w", err)
	}
	for i, le := range internaldefs.LatencyBounds {
		e.latency.bounds[i] = attributes([]internaldefs.Label{{Name: "le", Value: le}})
	}

	e.latency.count, err = meter.Int64ObservableCounter(h.Name+"_count", metric.WithDescription(h.Help+" Sample count."))
	if err != nil {
		return fmt.Errorf("create latency count: %w", err)
	}
	e.latency.sum, err = meter.Float64ObservableCounter(h.Name+"_sum",
		metric.WithDescription(h.Help+" Total seconds."), metric.WithUnit("s"))
	if err != nil {
		return fmt.Errorf("create latency sum: %w", err)
	}
	return nil
}

func (e *Exporter) observe(_ context.Context, observer metric.Observer) error {
	in := internaldefs.Input{
		Metrics: e.source.MetricsSnapshot(),
		Notices: e.source.NoticeStats(),
	}

	for _, f := range e.families {
		for _, s := range f.series {
			observer.ObserveInt64(f.instrument, int64(s.value(in)), s.attrs)
		}
	}

	raw, ok := in.Metrics.Histograms[internaldefs.Latency.ID]
	if !ok {
		return nil
	}
	cumulative := internaldefs.CumulativeBuckets(raw)
	for i, opt := range e.latency.bounds {
		observer.ObserveInt64(e.latency.buckets, int64(cumulative[i]), opt)
	}
	observer.ObserveInt64(e.latency.count, int64(cumulative[len(cumulative)-1]))
	observer.ObserveFloat64(e.latency.sum, internaldefs.SumSeconds(in, internaldefs.Latency.ID))
	return nil
}

// Close unregisters the collection callback.
func (e *Exporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
