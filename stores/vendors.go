package stores

import (
	"context"
	"net/http"

	"github.com/MrEthical07/backoffice/api"
)

// Vendors manages supplier records.
type Vendors struct {
	base
	vendors []Vendor
	current *Vendor
}

func NewVendors(deps Deps) *Vendors {
	s := &Vendors{}
	s.init("vendors", deps)
	return s
}

func (s *Vendors) List(ctx context.Context) ([]Vendor, error) {
	var out []Vendor
	err := s.run("vendors.list", func() error {
		var err error
		out, err = s.list(ctx)
		return err
	})
	return out, err
}

func (s *Vendors) list(ctx context.Context) ([]Vendor, error) {
	data, err := fetch[[]Vendor](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/vendor/viewall"})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.vendors = data
	s.mu.Unlock()
	return append([]Vendor(nil), data...), nil
}

func (s *Vendors) Get(ctx context.Context, id string) (Vendor, error) {
	var out Vendor
	err := s.run("vendors.get", func() error {
		data, err := fetch[Vendor](ctx, &s.base, api.Request{Method: http.MethodGet, Path: idPath("/vendor/%s", id)})
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

func (s *Vendors) Add(ctx context.Context, v VendorRequest) (Vendor, error) {
	var out Vendor
	err := s.run("vendors.add", func() error {
		data, err := fetch[Vendor](ctx, &s.base, api.Request{Method: http.MethodPost, Path: "/vendor/add", Body: v})
		s.report(ctx, "vendors.add", err, "Added vendor "+data.ID, "Failed to add vendor")
		out = data
		return err
	})
	return out, err
}

// Update saves v and refreshes the cached list.
func (s *Vendors) Update(ctx context.Context, v VendorRequest) (Vendor, error) {
	var out Vendor
	err := s.run("vendors.update", func() error {
		data, err := fetch[Vendor](ctx, &s.base, api.Request{Method: http.MethodPut, Path: "/vendor/update", Body: v})
		if err == nil {
			out = data
			_, err = s.list(ctx)
		}
		s.report(ctx, "vendors.update", err, "Updated vendor "+data.ID, "Failed to update vendor")
		return err
	})
	return out, err
}

// Delete marks the vendor deleted and drops it from the cached list.
func (s *Vendors) Delete(ctx context.Context, id string) error {
	return s.run("vendors.delete", func() error {
		err := s.call(ctx, api.Request{Method: http.MethodPut, Path: idPath("/vendor/%s/delete", id)}, nil)
		s.report(ctx, "vendors.delete", err, "Deleted vendor "+id, "Failed to delete vendor")
		if err != nil {
			return err
		}
		s.mu.Lock()
		kept := s.vendors[:0:0]
		for _, v := range s.vendors {
			if v.ID != id {
				kept = append(kept, v)
			}
		}
		s.vendors = kept
		s.mu.Unlock()
		return nil
	})
}

func (s *Vendors) Vendors() []Vendor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Vendor(nil), s.vendors...)
}

func (s *Vendors) Current() (Vendor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Vendor{}, false
	}
	return *s.current, true
}
