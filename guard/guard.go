package guard

import (
	"context"
	"log/slog"

	"github.com/MrEthical07/backoffice/metrics"
	"github.com/MrEthical07/backoffice/permission"
	"github.com/MrEthical07/backoffice/session"
)

// Kind is the outcome of a decision.
type Kind uint8

const (
	Proceed Kind = iota
	Redirect
)

func (k Kind) String() string {
	if k == Redirect {
		return "redirect"
	}
	return "proceed"
}

// Reason records which rule produced an [Action].
type Reason string

const (
	ReasonPublic                = Reason("public")
	ReasonAuthenticatedOnPublic = Reason("authenticated_on_public")
	ReasonUnauthenticated       = Reason("unauthenticated")
	ReasonPrivileged            = Reason("privileged")
	ReasonAllowed               = Reason("allowed")
	ReasonRoleLanding           = Reason("role_landing")
	ReasonNotAllowed            = Reason("not_allowed")
	ReasonRedirectLoop          = Reason("redirect_loop")
)

// Action is a navigation decision. Path is set for redirects only.
type Action struct {
	Kind   Kind
	Path   string
	Reason Reason
}

// Proceeds reports whether the navigation may continue.
func (a Action) Proceeds() bool { return a.Kind == Proceed }

// Route is one navigation attempt.
type Route struct {
	Target  string
	Current string
}

// Guard applies a permission table to the session held by a manager.
type Guard struct {
	sessions *session.Manager
	table    *permission.Table
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a [Guard].
type Option func(*Guard)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Guard) {
		g.metrics = m
	}
}

// New returns a Guard. Both sessions and table are required.
func New(sessions *session.Manager, table *permission.Table, opts ...Option) *Guard {
	g := &Guard{
		sessions: sessions,
		table:    table,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Table returns the permission table the guard enforces.
func (g *Guard) Table() *permission.Table { return g.table }

// Decide rehydrates the session and returns the action for r.
func (g *Guard) Decide(ctx context.Context, r Route) Action {
	s := g.sessions.Rehydrate(ctx)
	target := permission.CleanPath(r.Target)
	role := permission.ParseRole(s.Role())

	a := g.decide(target, role, s.Authenticated())

	g.record(a)
	g.logger.Debug("navigation decision",
		"target", target,
		"current", r.Current,
		"role", string(role),
		"action", a.Kind.String(),
		"redirect", a.Path,
		"reason", string(a.Reason),
	)
	return a
}

func (g *Guard) decide(target string, role permission.Role, authenticated bool) Action {
	t := g.table
	public := t.IsPublic(target)

	switch {
	case public && authenticated:
		return Action{Kind: Redirect, Path: t.DefaultLanding(), Reason: ReasonAuthenticatedOnPublic}
	case public:
		return Action{Kind: Proceed, Reason: ReasonPublic}
	case !authenticated:
		return Action{Kind: Redirect, Path: t.LoginPath(), Reason: ReasonUnauthenticated}
	case t.IsPrivileged(role):
		return Action{Kind: Proceed, Reason: ReasonPrivileged}
	case t.Permits(role, target):
		return Action{Kind: Proceed, Reason: ReasonAllowed}
	}

	if target == "/" {
		if landing, ok := t.Landing(role); ok {
			return Action{Kind: Redirect, Path: landing, Reason: ReasonRoleLanding}
		}
	}
	return Action{Kind: Redirect, Path: t.DefaultLanding(), Reason: ReasonNotAllowed}
}

func (g *Guard) record(a Action) {
	switch {
	case a.Kind == Proceed:
		g.metrics.Inc(metrics.GuardProceed)
	case a.Reason == ReasonUnauthenticated:
		g.metrics.Inc(metrics.GuardRedirectLogin)
	case a.Reason == ReasonRoleLanding:
		g.metrics.Inc(metrics.GuardRedirectRoleLanding)
	default:
		g.metrics.Inc(metrics.GuardRedirectLanding)
	}
}
