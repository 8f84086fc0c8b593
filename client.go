package backoffice

import (
	"context"
	"log/slog"
	"sync"

	"github.com/MrEthical07/backoffice/api"
	"github.com/MrEthical07/backoffice/guard"
	"github.com/MrEthical07/backoffice/metrics"
	"github.com/MrEthical07/backoffice/notify"
	"github.com/MrEthical07/backoffice/permission"
	"github.com/MrEthical07/backoffice/session"
	"github.com/MrEthical07/backoffice/stores"
	"github.com/redis/go-redis/v9"
)

// Client is a fully wired back-office client. It is safe for concurrent use;
// each store still allows only one outstanding action at a time.
type Client struct {
	config     Config
	logger     *slog.Logger
	sessions   *session.Manager
	api        *api.Client
	table      *permission.Table
	guard      *guard.Guard
	navigator  *guard.Navigator
	metrics    *metrics.Metrics
	dispatcher *notify.Dispatcher
	ownedRedis redis.UniversalClient
	closeOnce  sync.Once

	auth           *stores.Auth
	accounts       *stores.Accounts
	clients        *stores.Clients
	vendors        *stores.Vendors
	items          *stores.Items
	categories     *stores.Categories
	transactions   *stores.Transactions
	purchaseOrders *stores.PurchaseOrders
	invoices       *stores.Invoices
	finalReports   *stores.FinalReports
	freelancers    *stores.Freelancers
	users          *stores.Users
}

func (c *Client) Config() Config { return c.config }
func (c *Client) Sessions() *session.Manager { return c.sessions }
func (c *Client) API() *api.Client { return c.api }
func (c *Client) Table() *permission.Table { return c.table }
func (c *Client) Guard() *guard.Guard { return c.guard }
func (c *Client) Navigator() *guard.Navigator { return c.navigator }
func (c *Client) Metrics() *metrics.Metrics { return c.metrics }
func (c *Client) Auth() *stores.Auth { return c.auth }
func (c *Client) Accounts() *stores.Accounts { return c.accounts }
func (c *Client) Clients() *stores.Clients { return c.clients }
func (c *Client) Vendors() *stores.Vendors { return c.vendors }
func (c *Client) Items() *stores.Items { return c.items }
func (c *Client) Categories() *stores.Categories { return c.categories }
func (c *Client) Transactions() *stores.Transactions { return c.transactions }
func (c *Client) PurchaseOrders() *stores.PurchaseOrders { return c.purchaseOrders }
func (c *Client) Invoices() *stores.Invoices { return c.invoices }
func (c *Client) FinalReports() *stores.FinalReports { return c.finalReports }
func (c *Client) Freelancers() *stores.Freelancers { return c.freelancers }
func (c *Client) Users() *stores.Users { return c.users }

// Session rehydrates and returns the current session.
func (c *Client) Session(ctx context.Context) session.Session {
	return c.sessions.Rehydrate(ctx)
}

// Login signs in with username and password.
func (c *Client) Login(ctx context.Context, username, password string) error {
	return c.auth.Login(ctx, stores.Credentials{Username: username, Password: password})
}

// Logout clears the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.auth.Logout(ctx)
}

// Decide asks the guard about one navigation without following redirects.
func (c *Client) Decide(ctx context.Context, target, current string) guard.Action {
	return c.guard.Decide(ctx, guard.Route{Target: target, Current: current})
}

// Navigate moves the client's navigator to target, following redirects.
func (c *Client) Navigate(ctx context.Context, target string) (guard.Result, error) {
	return c.navigator.Navigate(ctx, target)
}

// MetricsSnapshot returns a point-in-time copy of every counter.
func (c *Client) MetricsSnapshot() metrics.Snapshot {
	return c.metrics.Snapshot()
}

// NoticeStats reports how many notices were delivered, dropped under
// backpressure, or merged into an identical predecessor.
func (c *Client) NoticeStats() notify.Stats {
	return c.dispatcher.Stats()
}

// Close drains pending notices and releases a Redis connection dialed by Build.
// It is idempotent.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.dispatcher.Close()
		if c.ownedRedis != nil {
			err = c.ownedRedis.Close()
		}
	})
	return err
}
