package stores

import (
	"context"
	"net/http"

	"github.com/MrEthical07/backoffice/api"
	"github.com/MrEthical07/backoffice/jwt"
	"github.com/MrEthical07/backoffice/metrics"
	"github.com/MrEthical07/backoffice/notify"
	"github.com/MrEthical07/backoffice/session"
)

// Auth signs users in and out and registers new users.
type Auth struct {
	base
	decoder *jwt.Decoder
	roles   []RoleInfo
}

func NewAuth(deps Deps) *Auth {
	a := &Auth{decoder: jwt.NewDecoder()}
	a.init("auth", deps)
	return a
}

// Session returns the current in-memory session.
func (a *Auth) Session() session.Session {
	return a.deps.Sessions.Current()
}

// Login exchanges credentials for a token, decodes its claims without verifying
// the signature, and stores the resulting session. On any failure the previous
// session is kept.
func (a *Auth) Login(ctx context.Context, c Credentials) error {
	return a.run("login", func() error {
		err := a.login(ctx, c)
		if err != nil {
			a.deps.Metrics.Inc(metrics.LoginFailure)
		} else {
			a.deps.Metrics.Inc(metrics.LoginSuccess)
		}
		a.report(ctx, "login", err, "Login successful", "Login failed")
		return err
	})
}

func (a *Auth) login(ctx context.Context, c Credentials) error {
	env, err := api.Call[LoginResponse](ctx, a.deps.API, api.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   c,
	})
	if err != nil {
		return err
	}

	id, err := a.decoder.Decode(env.Data.Token)
	if err != nil {
		return err
	}

	return a.deps.Sessions.Set(ctx, session.Session{
		User: &session.User{
			Name:     id.Name,
			Username: id.Subject,
			Role:     id.Role,
		},
		Token: env.Data.Token,
	})
}

// LoginAsGuest replaces any session with the guest session without contacting
// the backend. It only fails when the snapshot cannot be persisted.
func (a *Auth) LoginAsGuest(ctx context.Context) error {
	return a.track("login_guest", func() error {
		err := a.deps.Sessions.Set(ctx, session.GuestSession())
		if err == nil {
			a.deps.Metrics.Inc(metrics.GuestLogin)
		}
		a.report(ctx, "login_guest", err, "Login successful", "Login failed")
		return err
	})
}

// Logout clears the session. Calling it while signed out is harmless.
func (a *Auth) Logout(ctx context.Context) error {
	return a.track("logout", func() error {
		err := a.deps.Sessions.Clear(ctx)
		if err == nil {
			a.deps.Metrics.Inc(metrics.Logout)
		}
		a.report(ctx, "logout", err, "Logout successful", "Logout failed")
		return err
	})
}

// Register creates a user. It needs a signed-in, non-guest session and fails with
// session.ErrNotAuthenticated before any request otherwise.
func (a *Auth) Register(ctx context.Context, u NewUser) error {
	return a.run("register", func() error {
		var created RegisteredUser
		err := a.register(ctx, u, &created)
		if err != nil {
			a.deps.Metrics.Inc(metrics.RegisterFailure)
			a.report(ctx, "register", err, "", "Failed to add user")
			return err
		}
		a.deps.Metrics.Inc(metrics.RegisterSuccess)
		a.deps.Notices.Emit(ctx, notify.Success("register", "Added user "+created.Username).With("username", created.Username))
		return nil
	})
}

func (a *Auth) register(ctx context.Context, u NewUser, out *RegisteredUser) error {
	s := a.deps.Sessions.Current()
	if !s.Authenticated() || s.Guest() {
		return session.ErrNotAuthenticated
	}

	env, err := api.Call[RegisteredUser](ctx, a.deps.API, api.Request{
		Method: http.MethodPost,
		Path:   "/user/add",
		Body:   u,
		Auth:   true,
	})
	if err != nil {
		return err
	}
	*out = env.Data
	return nil
}

// Roles fetches the roles a new user may be given.
func (a *Auth) Roles(ctx context.Context) ([]RoleInfo, error) {
	var out []RoleInfo
	err := a.run("roles", func() error {
		var env api.Envelope[[]RoleInfo]
		if err := a.call(ctx, api.Request{Method: http.MethodGet, Path: "/role/all"}, &env); err != nil {
			a.report(ctx, "roles", err, "", "Failed to list roles")
			return err
		}
		a.mu.Lock()
		a.roles = env.Data
		a.mu.Unlock()
		out = append([]RoleInfo(nil), env.Data...)
		return nil
	})
	return out, err
}

// CachedRoles returns the roles from the last successful [Auth.Roles] call.
func (a *Auth) CachedRoles() []RoleInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]RoleInfo(nil), a.roles...)
}
