package backoffice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/MrEthical07/backoffice/api"
	"github.com/MrEthical07/backoffice/guard"
	"github.com/MrEthical07/backoffice/metrics"
	"github.com/MrEthical07/backoffice/notify"
	"github.com/MrEthical07/backoffice/permission"
	"github.com/MrEthical07/backoffice/session"
	"github.com/MrEthical07/backoffice/stores"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Client]. A Builder is single use.
type Builder struct {
	config     Config
	logger     *slog.Logger
	storage    session.Storage
	redis      redis.UniversalClient
	policy     *permission.Policy
	sink       notify.Sink
	httpClient *http.Client

	built bool
}

// New returns a Builder holding [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithStorage overrides the snapshot storage selected by Config.Session.
func (b *Builder) WithStorage(s session.Storage) *Builder {
	b.storage = s
	return b
}

// WithRedis supplies the client used for [StorageRedis]. Without it Build dials
// Config.Session.RedisAddr and the Client closes that connection on Close.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPolicy replaces the default or file-loaded permission policy.
func (b *Builder) WithPolicy(p permission.Policy) *Builder {
	b.policy = &p
	return b
}

// WithNotifySink sets where notices end up. The default logs them.
func (b *Builder) WithNotifySink(sink notify.Sink) *Builder {
	b.sink = sink
	return b
}

func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires every component.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	// -------- PERMISSION TABLE --------
	policy, err := b.resolvePolicy(cfg.Navigation)
	if err != nil {
		return nil, err
	}
	table, err := permission.NewTable(policy)
	if err != nil {
		return nil, err
	}

	// -------- METRICS --------
	m := metrics.New(metrics.Config{
		Enabled:                 cfg.Metrics.Enabled,
		EnableLatencyHistograms: cfg.Metrics.EnableLatencyHistograms,
	})

	// -------- SESSION --------
	storage, owned, err := b.resolveStorage(cfg.Session)
	if err != nil {
		return nil, err
	}
	sessions := session.NewManager(storage,
		session.WithLogger(logger),
		session.WithCorruptHook(func(error) { m.Inc(metrics.RehydrateCorrupt) }),
	)
	// Stores read the bearer from memory, so a session persisted by an earlier
	// process has to be loaded before the first request.
	sessions.Rehydrate(context.Background())

	// -------- API --------
	apiOpts := []api.Option{api.WithLogger(logger), api.WithObserver(m.ObserveRequest)}
	if b.httpClient != nil {
		apiOpts = append(apiOpts, api.WithHTTPClient(b.httpClient))
	}
	apiClient, err := api.NewClient(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
	}, sessions, apiOpts...)
	if err != nil {
		closeOwned(owned)
		return nil, err
	}

	// -------- NOTICES --------
	sink := b.sink
	if sink == nil {
		sink = notify.NewSlogSink(logger)
	}
	dispatcher := notify.NewDispatcher(notify.Config{
		Enabled:        cfg.Notify.Enabled,
		BufferSize:     cfg.Notify.BufferSize,
		DropIfFull:     cfg.Notify.DropIfFull,
		CoalesceWindow: cfg.Notify.CoalesceWindow,
	}, sink)
	var notices notify.Emitter = notify.NoOpSink{}
	if dispatcher != nil {
		notices = dispatcher
	}

	// -------- GUARD --------
	g := guard.New(sessions, table, guard.WithLogger(logger), guard.WithMetrics(m))

	deps := stores.Deps{
		API:      apiClient,
		Sessions: sessions,
		Notices:  notices,
		Metrics:  m,
		Logger:   logger,
	}

	b.built = true

	return &Client{
		config:         cfg,
		logger:         logger,
		sessions:       sessions,
		api:            apiClient,
		table:          table,
		guard:          g,
		navigator:      guard.NewNavigator(g, cfg.Navigation.MaxRedirects),
		metrics:        m,
		dispatcher:     dispatcher,
		ownedRedis:     owned,
		auth:           stores.NewAuth(deps),
		accounts:       stores.NewAccounts(deps),
		clients:        stores.NewClients(deps),
		vendors:        stores.NewVendors(deps),
		items:          stores.NewItems(deps),
		categories:     stores.NewCategories(deps),
		transactions:   stores.NewTransactions(deps),
		purchaseOrders: stores.NewPurchaseOrders(deps),
		invoices:       stores.NewInvoices(deps),
		finalReports:   stores.NewFinalReports(deps),
		freelancers:    stores.NewFreelancers(deps),
		users:          stores.NewUsers(deps),
	}, nil
}

func (b *Builder) resolvePolicy(nav NavigationConfig) (permission.Policy, error) {
	var policy permission.Policy
	switch {
	case b.policy != nil:
		policy = *b.policy
	case nav.PolicyFile != "":
		p, err := permission.LoadPolicyFile(nav.PolicyFile)
		if err != nil {
			return permission.Policy{}, err
		}
		policy = p
	default:
		policy = permission.DefaultPolicy()
	}

	if nav.LoginPath != "" {
		policy.LoginPath = nav.LoginPath
		if !slices.Contains(policy.PublicPaths, nav.LoginPath) {
			policy.PublicPaths = append(slices.Clone(policy.PublicPaths), nav.LoginPath)
		}
	}
	if nav.DefaultLanding != "" {
		policy.DefaultLanding = nav.DefaultLanding
	}
	return policy, nil
}

// resolveStorage returns the snapshot storage and, when Build dialed Redis
// itself, the connection the Client must close.
func (b *Builder) resolveStorage(cfg SessionConfig) (session.Storage, redis.UniversalClient, error) {
	if b.storage != nil {
		return b.storage, nil, nil
	}

	switch cfg.Storage {
	case StorageFile:
		return session.NewFileStorage(cfg.FilePath), nil, nil
	case StorageRedis:
		client := b.redis
		var owned redis.UniversalClient
		if client == nil {
			if cfg.RedisAddr == "" {
				return nil, nil, errors.New("redis storage requires WithRedis or Session RedisAddr")
			}
			owned = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
			client = owned
		}
		return session.NewRedisStorage(client, cfg.RedisPrefix, cfg.Key, cfg.TTL), owned, nil
	case StorageMemory, "":
		return session.NewMemoryStorage(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session storage %q", cfg.Storage)
	}
}

func closeOwned(c redis.UniversalClient) {
	if c != nil {
		_ = c.Close()
	}
}
