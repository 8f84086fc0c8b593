package stores

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/MrEthical07/backoffice/api"
	"github.com/MrEthical07/backoffice/internal/backendtest"
	"github.com/MrEthical07/backoffice/metrics"
	"github.com/MrEthical07/backoffice/notify"
	"github.com/MrEthical07/backoffice/session"
)

type recordingSink struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (s *recordingSink) Emit(_ context.Context, n notify.Notice) {
	s.mu.Lock()
	s.notices = append(s.notices, n)
	s.mu.Unlock()
}

func (s *recordingSink) last(t *testing.T) notify.Notice {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.notices) == 0 {
		t.Fatal("expected a notice")
	}
	return s.notices[len(s.notices)-1]
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notices)
}

type fixture struct {
	backend  *backendtest.Backend
	server   *httptest.Server
	storage  *session.MemoryStorage
	sessions *session.Manager
	metrics  *metrics.Metrics
	notices  *recordingSink
	deps     Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend, err := backendtest.New()
	if err != nil {
		t.Fatalf("backendtest.New: %v", err)
	}
	server := backend.Start()
	t.Cleanup(server.Close)

	return newFixtureFor(t, backend, server)
}

func newFixtureFor(t *testing.T, backend *backendtest.Backend, server *httptest.Server) *fixture {
	t.Helper()

	storage := session.NewMemoryStorage()
	sessions := session.NewManager(storage)
	m := metrics.New(metrics.Config{Enabled: true})

	client, err := api.NewClient(api.Config{BaseURL: server.URL}, sessions, api.WithObserver(m.ObserveRequest))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	notices := &recordingSink{}
	return &fixture{
		backend:  backend,
		server:   server,
		storage:  storage,
		sessions: sessions,
		metrics:  m,
		notices:  notices,
		deps: Deps{
			API:      client,
			Sessions: sessions,
			Notices:  notices,
			Metrics:  m,
		},
	}
}

func (f *fixture) signIn(t *testing.T, username, password string) {
	t.Helper()
	if err := NewAuth(f.deps).Login(context.Background(), Credentials{Username: username, Password: password}); err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
}

func (f *fixture) signInAdmin(t *testing.T) {
	t.Helper()
	f.signIn(t, backendtest.AdminUsername, backendtest.AdminPassword)
}
