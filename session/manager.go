package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrNotAuthenticated is returned by operations that need a signed-in, non-guest session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Manager mediates all reads and writes of the session. It is the only holder of
// session state; the guard and every store receive the same Manager.
type Manager struct {
	storage   Storage
	logger    *slog.Logger
	onCorrupt func(error)

	mu      sync.RWMutex
	current Session
	// persisted is set once a snapshot has been written or read, so a later
	// missing snapshot means it expired or was removed.
	persisted bool
}

// Option configures a [Manager].
type Option func(*Manager)

// WithLogger sets the logger used for storage failures.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithCorruptHook registers fn to be called whenever rehydration fails closed.
func WithCorruptHook(fn func(error)) Option {
	return func(m *Manager) {
		m.onCorrupt = fn
	}
}

// NewManager returns a signed-out Manager over storage. It performs no I/O; call
// [Manager.Rehydrate] to load a previously persisted session.
func NewManager(storage Storage, opts ...Option) *Manager {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	m := &Manager{
		storage: storage,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns a copy of the in-memory session.
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Clone()
}

// Token returns the bearer credential, or "" when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Token
}

// Set replaces the session and persists the snapshot. The in-memory session only
// changes once the snapshot has been written.
func (m *Manager) Set(ctx context.Context, s Session) error {
	s = s.Clone()
	data, err := EncodeSnapshot(s)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.storage.Save(ctx, data); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	m.current = s
	m.persisted = true
	return nil
}

// Clear signs out. Clearing an already signed-out session still rewrites the
// snapshot, so other views sharing the storage observe the sign-out.
func (m *Manager) Clear(ctx context.Context) error {
	return m.Set(ctx, Session{})
}

// Rehydrate overwrites the in-memory session with the stored snapshot and returns
// the result. When no snapshot was ever seen the in-memory session is kept; a
// snapshot that disappears after one was written or read (a Redis TTL, another
// view deleting the file) signs the manager out. Any read or decode failure
// signs the manager out in memory and returns the zero Session.
func (m *Manager) Rehydrate(ctx context.Context) Session {
	data, err := m.storage.Load(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.persisted {
			m.persisted = false
			m.current = Session{}
			m.logger.Info("session snapshot expired; signed out")
		}
		return m.current.Clone()
	}

	var s Session
	if err == nil {
		s, err = DecodeSnapshot(data)
	}

	m.mu.Lock()
	if err != nil {
		m.current = Session{}
	} else {
		m.current = s
		m.persisted = true
	}
	out := m.current.Clone()
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("session rehydrate failed closed", "error", err)
		if m.onCorrupt != nil {
			m.onCorrupt(err)
		}
	}
	return out
}
