package stores

import (
	"context"
	"net/http"

	"github.com/MrEthical07/backoffice/api"
)

// Accounts reads bank accounts.
type Accounts struct {
	base
	accounts []Account
	current  *Account
}

func NewAccounts(deps Deps) *Accounts {
	s := &Accounts{}
	s.init("accounts", deps)
	return s
}

func (s *Accounts) List(ctx context.Context) ([]Account, error) {
	var out []Account
	err := s.run("accounts.list", func() error {
		data, err := fetch[[]Account](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/account/all"})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.accounts = data
		s.mu.Unlock()
		out = append([]Account(nil), data...)
		return nil
	})
	return out, err
}

func (s *Accounts) Get(ctx context.Context, id string) (Account, error) {
	var out Account
	err := s.run("accounts.get", func() error {
		data, err := fetch[Account](ctx, &s.base, api.Request{Method: http.MethodGet, Path: idPath("/account/%s", id)})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.current = &data
		s.mu.Unlock()
		out = data
		return nil
	})
	return out, err
}

// Accounts returns the last listed accounts.
func (s *Accounts) Accounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Account(nil), s.accounts...)
}

// Current returns the last fetched account.
func (s *Accounts) Current() (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Account{}, false
	}
	return *s.current, true
}
