package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled bool
	// BufferSize bounds the queue of success notices. Failures get a separate
	// queue of a quarter of that size, at least one.
	BufferSize int
	DropIfFull bool
	// CoalesceWindow suppresses a notice equal in level, operation and message
	// to the previous one when it arrives within the window. Zero disables it.
	CoalesceWindow time.Duration
}

// Stats counts what happened to emitted notices.
type Stats struct {
	Delivered uint64
	Dropped   uint64
	Coalesced uint64
}

type noticeKey struct {
	level     Level
	operation string
	message   string
}

func keyOf(n Notice) noticeKey {
	return noticeKey{level: n.Level, operation: n.Operation, message: n.Message}
}

// Dispatcher forwards notices to a sink on its own goroutine. Failures are
// queued apart from successes and delivered first, so a burst of confirmations
// cannot push an error out of the buffer. A nil *Dispatcher is valid and drops
// everything.
type Dispatcher struct {
	cfg     Config
	sink    Sink
	now     func() time.Time
	errs    chan Notice
	routine chan Notice
	done    chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	last   noticeKey
	lastAt time.Time

	delivered atomic.Uint64
	dropped   atomic.Uint64
	coalesced atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts the delivery goroutine. It returns nil when cfg is disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:     cfg,
		sink:    sink,
		now:     time.Now,
		errs:    make(chan Notice, max(1, cfg.BufferSize/4)),
		routine: make(chan Notice, cfg.BufferSize),
		done:    make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case n := <-d.errs:
			d.deliver(n)
			continue
		default:
		}

		select {
		case n := <-d.errs:
			d.deliver(n)
		case n := <-d.routine:
			d.deliver(n)
		case <-d.done:
			d.drain(d.errs)
			d.drain(d.routine)
			return
		}
	}
}

func (d *Dispatcher) drain(ch chan Notice) {
	for {
		select {
		case n := <-ch:
			d.deliver(n)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(n Notice) {
	d.sink.Emit(context.Background(), n)
	d.delivered.Add(1)
}

// repeated reports whether n repeats the previous notice inside the coalescing
// window, and remembers n otherwise.
func (d *Dispatcher) repeated(n Notice) bool {
	if d.cfg.CoalesceWindow <= 0 {
		return false
	}
	key := keyOf(n)
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()
	if key == d.last && now.Sub(d.lastAt) < d.cfg.CoalesceWindow {
		return true
	}
	d.last, d.lastAt = key, now
	return false
}

// Emit queues n. With DropIfFull a full queue drops n and counts it; otherwise
// Emit blocks until there is room, ctx ends, or the dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, n Notice) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if d.repeated(n) {
		d.coalesced.Add(1)
		return
	}

	ch := d.routine
	if n.Level == LevelError {
		ch = d.errs
	}

	if d.cfg.DropIfFull {
		select {
		case ch <- n:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case ch <- n:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close stops accepting notices and waits until queued ones are delivered.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns how many notices were discarded because their queue was full.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Stats returns delivery counters. A nil Dispatcher reports zeros.
func (d *Dispatcher) Stats() Stats {
	if d == nil {
		return Stats{}
	}
	return Stats{
		Delivered: d.delivered.Load(),
		Dropped:   d.dropped.Load(),
		Coalesced: d.coalesced.Load(),
	}
}
