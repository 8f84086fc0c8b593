package stores

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/MrEthical07/backoffice/api"
	"github.com/MrEthical07/backoffice/metrics"
	"github.com/MrEthical07/backoffice/notify"
	"github.com/MrEthical07/backoffice/session"
)

// ErrActionInProgress is returned when a store is asked to act while a previous
// action is still outstanding.
var ErrActionInProgress = errors.New("another action is in progress")

// State is the observable status of a store.
type State struct {
	Loading   bool
	LastError string
}

// Deps are the collaborators shared by every store.
type Deps struct {
	API      *api.Client
	Sessions *session.Manager
	Notices  notify.Emitter
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Notices == nil {
		d.Notices = notify.NoOpSink{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}

// base carries the in-flight guard and last-error bookkeeping for one store.
// Concrete stores guard their cached responses with mu.
type base struct {
	deps     Deps
	name     string
	inFlight atomic.Bool

	mu      sync.RWMutex
	lastErr string
}

func (b *base) init(name string, deps Deps) {
	b.name = name
	b.deps = deps.withDefaults()
}

// State returns the loading flag and last failure message.
func (b *base) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return State{Loading: b.inFlight.Load(), LastError: b.lastErr}
}

// LastError returns the message of the most recent failed action, or "".
func (b *base) LastError() string {
	return b.State().LastError
}

// run executes fn as the store's single outstanding action.
func (b *base) run(op string, fn func() error) error {
	if !b.inFlight.CompareAndSwap(false, true) {
		b.deps.Metrics.Inc(metrics.ActionRejectedInFlight)
		b.deps.Logger.Debug("store action rejected", "store", b.name, "operation", op)
		return ErrActionInProgress
	}
	defer b.inFlight.Store(false)

	return b.track(op, fn)
}

// track records the outcome of fn in LastError without claiming the in-flight
// slot. Local actions that never wait on the backend use it directly.
func (b *base) track(op string, fn func() error) error {
	b.mu.Lock()
	b.lastErr = ""
	b.mu.Unlock()

	err := fn()
	if err != nil {
		b.mu.Lock()
		b.lastErr = api.Message(err)
		b.mu.Unlock()
		b.deps.Logger.Warn("store action failed", "store", b.name, "operation", op, "error", err)
	}
	return err
}

// report emits a success or failure notice for a mutating action.
func (b *base) report(ctx context.Context, op string, err error, success, failurePrefix string) {
	if err != nil {
		b.deps.Notices.Emit(ctx, notify.Failure(op, failurePrefix+": "+api.Message(err)))
		return
	}
	b.deps.Notices.Emit(ctx, notify.Success(op, success))
}

func (b *base) call(ctx context.Context, req api.Request, out any) error {
	req.Auth = true
	return b.deps.API.Do(ctx, req, out)
}

// fetch performs an authenticated request and returns the envelope payload.
func fetch[T any](ctx context.Context, b *base, req api.Request) (T, error) {
	var env api.Envelope[T]
	err := b.call(ctx, req, &env)
	return env.Data, err
}

func idPath(format string, id any) string {
	return fmt.Sprintf(format, url.PathEscape(fmt.Sprint(id)))
}
