package stores

import (
	"context"
	"net/http"
	"strconv"

	"github.com/MrEthical07/backoffice/api"
)

// Items manages inventory items and their statuses.
type Items struct {
	base
	items      []Item
	categories []Named
	statuses   []ItemStatus
}

func NewItems(deps Deps) *Items {
	s := &Items{}
	s.init("items", deps)
	return s
}

func (s *Items) Create(ctx context.Context, req ItemRequest) error {
	return s.run("items.create", func() error {
		err := s.call(ctx, api.Request{Method: http.MethodPost, Path: "/item/create", Body: req}, nil)
		s.report(ctx, "items.create", err, "Item created", "Failed to create item")
		return err
	})
}

func (s *Items) List(ctx context.Context) ([]Item, error) {
	var out []Item
	err := s.run("items.list", func() error {
		data, err := fetch[[]Item](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/item/all"})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.items = data
		s.mu.Unlock()
		out = append([]Item(nil), data...)
		return nil
	})
	return out, err
}

// Categories lists the categories an item may belong to.
func (s *Items) Categories(ctx context.Context) ([]Named, error) {
	var out []Named
	err := s.run("items.categories", func() error {
		data, err := fetch[[]Named](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/category/all"})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.categories = data
		s.mu.Unlock()
		out = append([]Named(nil), data...)
		return nil
	})
	return out, err
}

func (s *Items) Statuses(ctx context.Context) ([]ItemStatus, error) {
	var out []ItemStatus
	err := s.run("items.statuses", func() error {
		data, err := fetch[[]ItemStatus](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/item/status/all"})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.statuses = data
		s.mu.Unlock()
		out = append([]ItemStatus(nil), data...)
		return nil
	})
	return out, err
}

type itemStatusUpdate struct {
	ItemID   int64 `json:"itemId"`
	StatusID int64 `json:"idItemStatus"`
}

func (s *Items) UpdateStatus(ctx context.Context, itemID, statusID int64) error {
	return s.run("items.update_status", func() error {
		err := s.call(ctx, api.Request{
			Method: http.MethodPut,
			Path:   "/item/update-status",
			Body:   itemStatusUpdate{ItemID: itemID, StatusID: statusID},
		}, nil)
		s.report(ctx, "items.update_status", err, "Updated status of item "+strconv.FormatInt(itemID, 10), "Failed to update item status")
		return err
	})
}

func (s *Items) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Item(nil), s.items...)
}

func (s *Items) CachedCategories() []Named {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Named(nil), s.categories...)
}

func (s *Items) CachedStatuses() []ItemStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ItemStatus(nil), s.statuses...)
}
