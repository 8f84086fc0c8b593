package stores

import (
	"context"
	"net/http"

	"github.com/MrEthical07/backoffice/api"
)

// Clients manages customer records.
type Clients struct {
	base
	clients []Client
	current *Client
}

func NewClients(deps Deps) *Clients {
	s := &Clients{}
	s.init("clients", deps)
	return s
}

func (s *Clients) List(ctx context.Context) ([]Client, error) {
	var out []Client
	err := s.run("clients.list", func() error {
		var err error
		out, err = s.list(ctx)
		return err
	})
	return out, err
}

func (s *Clients) list(ctx context.Context) ([]Client, error) {
	data, err := fetch[[]Client](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/client/viewall"})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.clients = data
	s.mu.Unlock()
	return append([]Client(nil), data...), nil
}

// Get fetches one client through the configured backend.
func (s *Clients) Get(ctx context.Context, id string) (Client, error) {
	var out Client
	err := s.run("clients.get", func() error {
		data, err := fetch[Client](ctx, &s.base, api.Request{Method: http.MethodGet, Path: idPath("/client/%s", id)})
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

// Update saves c and refreshes the cached list.
func (s *Clients) Update(ctx context.Context, c ClientRequest) (Client, error) {
	var out Client
	err := s.run("clients.update", func() error {
		data, err := fetch[Client](ctx, &s.base, api.Request{Method: http.MethodPut, Path: "/client/update", Body: c})
		if err == nil {
			out = data
			_, err = s.list(ctx)
		}
		s.report(ctx, "clients.update", err, "Updated client "+data.ID, "Failed to update client")
		return err
	})
	return out, err
}

func (s *Clients) Clients() []Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Client(nil), s.clients...)
}

func (s *Clients) Current() (Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Client{}, false
	}
	return *s.current, true
}
