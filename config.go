package backoffice

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/backoffice/guard"
)

// Config is the complete client configuration. Treat it as immutable once
// passed to [Builder.WithConfig].
type Config struct {
	API        APIConfig
	Session    SessionConfig
	Navigation NavigationConfig
	Notify     NotifyConfig
	Metrics    MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig locates the REST backend.
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

/*
====================================
SESSION CONFIG
====================================
*/

// StorageKind selects where the session snapshot is persisted.
type StorageKind string

const (
	StorageMemory StorageKind = "memory"
	StorageFile   StorageKind = "file"
	StorageRedis  StorageKind = "redis"
)

// SessionConfig controls session snapshot persistence. FilePath applies to
// [StorageFile]; RedisAddr, RedisPrefix and TTL apply to [StorageRedis]. Key
// names the snapshot within the Redis prefix.
type SessionConfig struct {
	Storage     StorageKind
	FilePath    string
	RedisAddr   string
	RedisPrefix string
	Key         string
	TTL         time.Duration
}

/*
====================================
NAVIGATION CONFIG
====================================
*/

// NavigationConfig overrides parts of the permission policy. Empty strings keep
// the policy's own values.
type NavigationConfig struct {
	PolicyFile     string
	LoginPath      string
	DefaultLanding string
	MaxRedirects   int
}

/*
====================================
NOTIFY / METRICS CONFIG
====================================
*/

// NotifyConfig controls asynchronous notice delivery.
type NotifyConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// CoalesceWindow merges a repeated notice into the previous identical one
	// when it arrives within the window. Zero delivers every notice.
	CoalesceWindow time.Duration
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns a configuration for a local backend with in-memory
// session storage.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8080",
			Timeout:   30 * time.Second,
			UserAgent: "backoffice-client",
		},
		Session: SessionConfig{
			Storage:     StorageMemory,
			RedisPrefix: "bo",
			Key:         "default",
		},
		Navigation: NavigationConfig{
			MaxRedirects: guard.DefaultMaxRedirects,
		},
		Notify: NotifyConfig{
			Enabled:    true,
			BufferSize:     64,
			DropIfFull:     true,
			CoalesceWindow: 2 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// LoadConfigFromEnv starts from [DefaultConfig] and applies BACKOFFICE_*
// environment variables. Unparseable values keep the default.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.API.BaseURL = envString("BACKOFFICE_API_URL", cfg.API.BaseURL)
	cfg.API.Timeout = envDuration("BACKOFFICE_API_TIMEOUT", cfg.API.Timeout)
	cfg.API.UserAgent = envString("BACKOFFICE_USER_AGENT", cfg.API.UserAgent)

	cfg.Session.Storage = StorageKind(strings.ToLower(envString("BACKOFFICE_SESSION_STORAGE", string(cfg.Session.Storage))))
	cfg.Session.FilePath = envString("BACKOFFICE_SESSION_FILE", cfg.Session.FilePath)
	cfg.Session.RedisAddr = envString("BACKOFFICE_REDIS_ADDR", cfg.Session.RedisAddr)
	cfg.Session.RedisPrefix = envString("BACKOFFICE_REDIS_PREFIX", cfg.Session.RedisPrefix)
	cfg.Session.Key = envString("BACKOFFICE_SESSION_KEY", cfg.Session.Key)
	cfg.Session.TTL = envDuration("BACKOFFICE_SESSION_TTL", cfg.Session.TTL)

	cfg.Navigation.PolicyFile = envString("BACKOFFICE_POLICY_FILE", cfg.Navigation.PolicyFile)
	cfg.Navigation.LoginPath = envString("BACKOFFICE_LOGIN_PATH", cfg.Navigation.LoginPath)
	cfg.Navigation.DefaultLanding = envString("BACKOFFICE_LANDING_PATH", cfg.Navigation.DefaultLanding)
	cfg.Navigation.MaxRedirects = envInt("BACKOFFICE_MAX_REDIRECTS", cfg.Navigation.MaxRedirects)

	cfg.Notify.Enabled = envBool("BACKOFFICE_NOTIFY_ENABLED", cfg.Notify.Enabled)
	cfg.Notify.BufferSize = envInt("BACKOFFICE_NOTIFY_BUFFER", cfg.Notify.BufferSize)
	cfg.Notify.DropIfFull = envBool("BACKOFFICE_NOTIFY_DROP_IF_FULL", cfg.Notify.DropIfFull)
	cfg.Notify.CoalesceWindow = envDuration("BACKOFFICE_NOTIFY_COALESCE_WINDOW", cfg.Notify.CoalesceWindow)

	cfg.Metrics.Enabled = envBool("BACKOFFICE_METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.EnableLatencyHistograms = envBool("BACKOFFICE_METRICS_LATENCY", cfg.Metrics.EnableLatencyHistograms)

	return cfg
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("API BaseURL must be an absolute http(s) URL")
	}
	if c.API.Timeout < 0 {
		return errors.New("API Timeout must be >= 0")
	}

	switch c.Session.Storage {
	case StorageMemory:
	case StorageFile:
		if strings.TrimSpace(c.Session.FilePath) == "" {
			return errors.New("Session FilePath is required for file storage")
		}
	case StorageRedis:
		if strings.TrimSpace(c.Session.Key) == "" {
			return errors.New("Session Key is required for redis storage")
		}
		if c.Session.TTL < 0 {
			return errors.New("Session TTL must be >= 0")
		}
	default:
		return errors.New("unsupported Session Storage " + string(c.Session.Storage))
	}

	for _, p := range []string{c.Navigation.LoginPath, c.Navigation.DefaultLanding} {
		if p != "" && !strings.HasPrefix(p, "/") {
			return errors.New("Navigation paths must be absolute")
		}
	}
	if c.Navigation.MaxRedirects < 0 {
		return errors.New("Navigation MaxRedirects must be >= 0")
	}

	if c.Notify.Enabled && c.Notify.BufferSize <= 0 {
		return errors.New("Notify BufferSize must be > 0 when enabled")
	}
	if c.Notify.CoalesceWindow < 0 {
		return errors.New("Notify CoalesceWindow must be >= 0")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}
