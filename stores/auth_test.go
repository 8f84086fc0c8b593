package stores

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/backoffice/api"
	"github.com/MrEthical07/backoffice/internal/backendtest"
	"github.com/MrEthical07/backoffice/jwt"
	"github.com/MrEthical07/backoffice/metrics"
	"github.com/MrEthical07/backoffice/notify"
	"github.com/MrEthical07/backoffice/session"
)

func TestLoginStoresDecodedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := NewAuth(f.deps)

	if err := auth.Login(ctx, Credentials{Username: backendtest.AdminUsername, Password: backendtest.AdminPassword}); err != nil {
		t.Fatalf("login: %v", err)
	}

	s := auth.Session()
	if s.User == nil || s.User.Name != "Administrator" || s.User.Username != "admin" || s.User.Role != "admin" {
		t.Fatalf("unexpected user %+v", s.User)
	}
	if s.Token == "" || s.Guest() {
		t.Fatalf("expected a real token, got %q", s.Token)
	}

	data, err := f.storage.Load(ctx)
	if err != nil {
		t.Fatalf("snapshot not persisted: %v", err)
	}
	stored, err := session.DecodeSnapshot(data)
	if err != nil || !stored.Equal(s) {
		t.Fatalf("stored snapshot %+v (err %v), want %+v", stored, err, s)
	}

	if got := f.metrics.Value(metrics.LoginSuccess); got != 1 {
		t.Fatalf("LoginSuccess = %d, want 1", got)
	}
	n := f.notices.last(t)
	if n.Level != notify.LevelSuccess || n.Message != "Login successful" {
		t.Fatalf("unexpected notice %+v", n)
	}
	if auth.LastError() != "" {
		t.Fatalf("LastError = %q after success", auth.LastError())
	}
}

func TestLoginFailureKeepsPreviousSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := NewAuth(f.deps)

	f.signIn(t, backendtest.StaffUsername, backendtest.StaffPassword)
	before := f.sessions.Current()

	err := auth.Login(ctx, Credentials{Username: backendtest.AdminUsername, Password: "wrong-password"})
	var se *api.StatusError
	if !errors.As(err, &se) || !se.Unauthorized() {
		t.Fatalf("expected unauthorized StatusError, got %v", err)
	}
	if !f.sessions.Current().Equal(before) {
		t.Fatal("failed login must keep the previous session")
	}
	if auth.LastError() != "Invalid username or password" {
		t.Fatalf("LastError = %q", auth.LastError())
	}
	n := f.notices.last(t)
	if n.Level != notify.LevelError || n.Message != "Login failed: Invalid username or password" {
		t.Fatalf("unexpected notice %+v", n)
	}
	if got := f.metrics.Value(metrics.LoginFailure); got != 1 {
		t.Fatalf("LoginFailure = %d, want 1", got)
	}
}

func TestLoginTransportFailure(t *testing.T) {
	f := newFixture(t)
	f.server.Close()

	err := NewAuth(f.deps).Login(context.Background(), Credentials{Username: "admin", Password: "admin-password"})
	if !api.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if f.sessions.Current().Authenticated() {
		t.Fatal("session must stay empty")
	}
}

func TestLoginMalformedTokenKeepsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"token":"not-a-jwt"},"message":"ok","status":200}`))
	}))
	t.Cleanup(srv.Close)
	f := newFixtureFor(t, nil, srv)

	err := NewAuth(f.deps).Login(context.Background(), Credentials{Username: "a", Password: "b"})
	if !errors.Is(err, jwt.ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
	if f.sessions.Current().Authenticated() {
		t.Fatal("malformed token must not create a session")
	}
}

func TestGuestLoginAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := NewAuth(f.deps)

	if err := auth.LoginAsGuest(ctx); err != nil {
		t.Fatalf("guest login: %v", err)
	}
	s := auth.Session()
	if !s.Authenticated() || !s.Guest() || s.Role() != "guest" {
		t.Fatalf("unexpected guest session %+v", s)
	}
	if len(f.backend.Requests()) != 0 {
		t.Fatal("guest login must not contact the backend")
	}

	for i := 0; i < 2; i++ {
		if err := auth.Logout(ctx); err != nil {
			t.Fatalf("logout %d: %v", i, err)
		}
	}
	if auth.Session().Authenticated() {
		t.Fatal("logout must clear the session")
	}
	data, err := f.storage.Load(ctx)
	if err != nil {
		t.Fatalf("logout must rewrite the snapshot: %v", err)
	}
	if stored, err := session.DecodeSnapshot(data); err != nil || stored.Authenticated() {
		t.Fatalf("stored snapshot after logout = %+v (err %v)", stored, err)
	}
	if got := f.metrics.Value(metrics.Logout); got != 2 {
		t.Fatalf("Logout = %d, want 2", got)
	}
}

type toggledStorage struct {
	*session.MemoryStorage
	saveErr error
}

func (s *toggledStorage) Save(ctx context.Context, data []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.MemoryStorage.Save(ctx, data)
}

func TestLocalActionsTrackLastError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	storage := &toggledStorage{MemoryStorage: session.NewMemoryStorage(), saveErr: errors.New("disk full")}
	deps := f.deps
	deps.Sessions = session.NewManager(storage)
	auth := NewAuth(deps)

	if err := auth.LoginAsGuest(ctx); err == nil {
		t.Fatal("expected guest login to fail when the snapshot cannot be written")
	}
	if !strings.Contains(auth.LastError(), "disk full") {
		t.Fatalf("LastError after guest failure = %q", auth.LastError())
	}

	storage.saveErr = nil
	if err := auth.LoginAsGuest(ctx); err != nil {
		t.Fatalf("guest login: %v", err)
	}
	if auth.LastError() != "" {
		t.Fatalf("LastError not cleared: %q", auth.LastError())
	}

	storage.saveErr = errors.New("read-only")
	if err := auth.Logout(ctx); err == nil {
		t.Fatal("expected logout to fail")
	}
	if !strings.Contains(auth.LastError(), "read-only") {
		t.Fatalf("LastError after logout failure = %q", auth.LastError())
	}
	if !auth.Session().Guest() {
		t.Fatal("failed logout must keep the session")
	}
}

func TestRegisterRequiresSignedInUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := NewAuth(f.deps)
	u := NewUser{Name: "New", Username: "new", Role: "staff", Password: "new-password-1"}

	if err := auth.Register(ctx, u); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("signed out: expected ErrNotAuthenticated, got %v", err)
	}
	if err := auth.LoginAsGuest(ctx); err != nil {
		t.Fatalf("guest login: %v", err)
	}
	if err := auth.Register(ctx, u); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("guest: expected ErrNotAuthenticated, got %v", err)
	}
	if n := len(f.backend.RequestsTo(http.MethodPost, "/user/add")); n != 0 {
		t.Fatalf("expected no registration request, got %d", n)
	}
}

func TestRegisterCreatesUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.signInAdmin(t)
	auth := NewAuth(f.deps)

	u := NewUser{Name: "Rina", Username: "rina", Role: "finance", Password: "rina-password"}
	if err := auth.Register(ctx, u); err != nil {
		t.Fatalf("register: %v", err)
	}
	n := f.notices.last(t)
	if n.Message != "Added user rina" || n.Metadata["username"] != "rina" {
		t.Fatalf("unexpected notice %+v", n)
	}

	reqs := f.backend.RequestsTo(http.MethodPost, "/user/add")
	if len(reqs) != 1 || reqs[0].Authorization != "Bearer "+f.sessions.Token() {
		t.Fatalf("registration must carry the bearer token: %+v", reqs)
	}

	err := auth.Register(ctx, u)
	var se *api.StatusError
	if !errors.As(err, &se) || se.HTTPStatus != http.StatusConflict {
		t.Fatalf("duplicate: expected 409, got %v", err)
	}
	if f.notices.last(t).Level != notify.LevelError {
		t.Fatal("duplicate registration must emit an error notice")
	}
	if f.metrics.Value(metrics.RegisterSuccess) != 1 || f.metrics.Value(metrics.RegisterFailure) != 1 {
		t.Fatal("register metrics not recorded")
	}

	f.signIn(t, "rina", "rina-password")
	if f.sessions.Current().Role() != "finance" {
		t.Fatalf("new user role = %q", f.sessions.Current().Role())
	}
}

func TestRolesExcludeGuest(t *testing.T) {
	f := newFixture(t)
	f.signInAdmin(t)
	auth := NewAuth(f.deps)

	roles, err := auth.Roles(context.Background())
	if err != nil {
		t.Fatalf("roles: %v", err)
	}
	if len(roles) == 0 {
		t.Fatal("expected roles")
	}
	for _, r := range roles {
		if r.Name == "guest" {
			t.Fatal("guest must not be assignable")
		}
	}
	if len(auth.CachedRoles()) != len(roles) {
		t.Fatal("roles must be cached")
	}
}

func TestSecondActionRejectedWhileInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	auth := NewAuth(f.deps)

	entered, release := f.backend.Hold(http.MethodPost, "/auth/login")
	defer release()

	done := make(chan error, 1)
	go func() {
		done <- auth.Login(ctx, Credentials{Username: backendtest.AdminUsername, Password: backendtest.AdminPassword})
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("first login never reached the backend")
	}

	if !auth.State().Loading {
		t.Fatal("store must report loading while a request is outstanding")
	}
	err := auth.Login(ctx, Credentials{Username: backendtest.StaffUsername, Password: backendtest.StaffPassword})
	if !errors.Is(err, ErrActionInProgress) {
		t.Fatalf("expected ErrActionInProgress, got %v", err)
	}
	if got := f.metrics.Value(metrics.ActionRejectedInFlight); got != 1 {
		t.Fatalf("ActionRejectedInFlight = %d, want 1", got)
	}

	release()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("first login: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first login did not finish")
	}

	if f.sessions.Current().Role() != "admin" {
		t.Fatalf("expected the first login to win, got role %q", f.sessions.Current().Role())
	}
	if auth.State().Loading {
		t.Fatal("loading flag must clear")
	}
	if n := len(f.backend.RequestsTo(http.MethodPost, "/auth/login")); n != 1 {
		t.Fatalf("expected exactly one login request, got %d", n)
	}
}
