package stores

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MrEthical07/backoffice/api"
	"github.com/MrEthical07/backoffice/artifact"
)

// PurchaseOrders manages purchase orders and their generated PDFs.
type PurchaseOrders struct {
	base
	orders   []PurchaseOrder
	selected *PurchaseOrder
}

func NewPurchaseOrders(deps Deps) *PurchaseOrders {
	s := &PurchaseOrders{}
	s.init("purchase_orders", deps)
	return s
}

// Create stores a purchase order. The backend answers with the generated PDF,
// which is returned when present.
func (s *PurchaseOrders) Create(ctx context.Context, po PurchaseOrder) (artifact.Artifact, error) {
	var out artifact.Artifact
	err := s.run("purchase_orders.create", func() error {
		doc, err := fetch[Document](ctx, &s.base, api.Request{Method: http.MethodPost, Path: "/purchase-order/create", Body: po})
		if err == nil && doc.PDF != "" {
			out, err = toArtifact(doc, "purchase_order.pdf")
		}
		s.report(ctx, "purchase_orders.create", err, "Purchase order created", "Failed to create purchase order")
		return err
	})
	return out, err
}

func (s *PurchaseOrders) List(ctx context.Context) ([]PurchaseOrder, error) {
	var out []PurchaseOrder
	err := s.run("purchase_orders.list", func() error {
		data, err := fetch[[]PurchaseOrder](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/purchase-order/all"})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.orders = data
		s.mu.Unlock()
		out = append([]PurchaseOrder(nil), data...)
		return nil
	})
	return out, err
}

// Get fetches one purchase order. The previous selection is cleared first.
func (s *PurchaseOrders) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	var out PurchaseOrder
	err := s.run("purchase_orders.get", func() error {
		s.mu.Lock()
		s.selected = nil
		s.mu.Unlock()

		data, err := fetch[PurchaseOrder](ctx, &s.base, api.Request{Method: http.MethodGet, Path: idPath("/purchase-order/%s", id)})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.selected = &data
		s.mu.Unlock()
		out = data
		return nil
	})
	return out, err
}

// Delete marks the order deleted and drops it from the cached list.
func (s *PurchaseOrders) Delete(ctx context.Context, id int64) error {
	return s.run("purchase_orders.delete", func() error {
		err := s.call(ctx, api.Request{Method: http.MethodDelete, Path: idPath("/purchase-order/%s", id)}, nil)
		s.report(ctx, "purchase_orders.delete", err, fmt.Sprintf("Deleted purchase order %d", id), "Failed to delete purchase order")
		if err != nil {
			return err
		}
		s.mu.Lock()
		kept := s.orders[:0:0]
		for _, po := range s.orders {
			if po.ID != id {
				kept = append(kept, po)
			}
		}
		s.orders = kept
		s.mu.Unlock()
		return nil
	})
}

// Download regenerates the PDF of an existing order.
func (s *PurchaseOrders) Download(ctx context.Context, id int64) (artifact.Artifact, error) {
	var out artifact.Artifact
	err := s.run("purchase_orders.download", func() error {
		doc, err := fetch[Document](ctx, &s.base, api.Request{Method: http.MethodGet, Path: idPath("/purchase-order/%s/download", id)})
		if err == nil {
			out, err = toArtifact(doc, fmt.Sprintf("purchase_order_%d.pdf", id))
		}
		s.report(ctx, "purchase_orders.download", err, "Purchase order downloaded", "Failed to download purchase order")
		return err
	})
	return out, err
}

func (s *PurchaseOrders) Orders() []PurchaseOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]PurchaseOrder(nil), s.orders...)
}

func (s *PurchaseOrders) Selected() (PurchaseOrder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return PurchaseOrder{}, false
	}
	return *s.selected, true
}
