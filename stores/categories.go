package stores

import (
	"context"
	"net/http"

	"github.com/MrEthical07/backoffice/api"
)

// Categories manages item categories.
type Categories struct {
	base
	categories []Category
}

func NewCategories(deps Deps) *Categories {
	s := &Categories{}
	s.init("categories", deps)
	return s
}

func (s *Categories) Create(ctx context.Context, req CategoryRequest) error {
	return s.run("categories.create", func() error {
		err := s.call(ctx, api.Request{Method: http.MethodPost, Path: "/category/add", Body: req}, nil)
		s.report(ctx, "categories.create", err, "Category created", "Failed to create category")
		return err
	})
}

func (s *Categories) List(ctx context.Context) ([]Category, error) {
	var out []Category
	err := s.run("categories.list", func() error {
		data, err := fetch[[]Category](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/category/all"})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.categories = data
		s.mu.Unlock()
		out = append([]Category(nil), data...)
		return nil
	})
	return out, err
}

func (s *Categories) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Category(nil), s.categories...)
}
