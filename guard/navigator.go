package guard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrEthical07/backoffice/metrics"
	"github.com/MrEthical07/backoffice/permission"
)

// DefaultMaxRedirects bounds how many redirects one navigation may follow.
const DefaultMaxRedirects = 8

// ErrRedirectLoop is returned when redirects revisit a path or exceed the bound.
// The navigator is left on the login path.
var ErrRedirectLoop = errors.New("navigation redirect loop")

// Result is where a navigation ended and the redirects taken to get there.
type Result struct {
	Path      string
	Redirects []Action
}

// Navigator tracks the current path of one view and feeds redirects back
// through the guard. Navigations on one Navigator are serialized.
type Navigator struct {
	guard        *Guard
	maxRedirects int

	mu      sync.Mutex
	current string
}

// NewNavigator returns a Navigator with no current path. maxRedirects <= 0 means
// [DefaultMaxRedirects].
func NewNavigator(g *Guard, maxRedirects int) *Navigator {
	if maxRedirects <= 0 {
		maxRedirects = DefaultMaxRedirects
	}
	return &Navigator{guard: g, maxRedirects: maxRedirects}
}

// Current returns the path of the last completed navigation.
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate asks the guard about target and follows redirects until one proceeds.
func (n *Navigator) Navigate(ctx context.Context, target string) (Result, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	route := Route{Target: permission.CleanPath(target), Current: n.current}
	visited := map[string]struct{}{route.Target: {}}
	var res Result

	for {
		a := n.guard.Decide(ctx, route)
		if a.Proceeds() {
			n.current = route.Target
			res.Path = route.Target
			return res, nil
		}

		res.Redirects = append(res.Redirects, a)
		next := permission.CleanPath(a.Path)
		_, seen := visited[next]
		if seen || len(res.Redirects) > n.maxRedirects {
			login := n.guard.table.LoginPath()
			n.guard.metrics.Inc(metrics.GuardRedirectLoop)
			n.guard.logger.Warn("navigation abandoned",
				"target", target,
				"redirects", len(res.Redirects),
				"landing", login,
			)
			n.current = login
			res.Path = login
			res.Redirects = append(res.Redirects, Action{Kind: Redirect, Path: login, Reason: ReasonRedirectLoop})
			return res, fmt.Errorf("%w: %s after %d redirects", ErrRedirectLoop, target, len(res.Redirects)-1)
		}

		visited[next] = struct{}{}
		route = Route{Target: next, Current: route.Current}
	}
}
