package stores

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/MrEthical07/backoffice/api"
	"github.com/MrEthical07/backoffice/internal/backendtest"
	"github.com/MrEthical07/backoffice/notify"
)

func TestStoresRequireBearer(t *testing.T) {
	f := newFixture(t)

	_, err := NewAccounts(f.deps).List(context.Background())
	var se *api.StatusError
	if !errors.As(err, &se) || !se.Unauthorized() {
		t.Fatalf("expected 401, got %v", err)
	}
	if reqs := f.backend.RequestsTo(http.MethodGet, "/account/all"); len(reqs) != 1 || reqs[0].Authorization != "" {
		t.Fatalf("signed-out request must not carry a bearer: %+v", reqs)
	}
}

func TestAccounts(t *testing.T) {
	f := newFixture(t)
	f.signInAdmin(t)
	ctx := context.Background()
	s := NewAccounts(f.deps)

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || len(s.Accounts()) != 2 {
		t.Fatalf("expected two seeded accounts, got %d", len(list))
	}

	acc, err := s.Get(ctx, list[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if acc.Bank != "Mandiri" || acc.LastUpdated.IsZero() {
		t.Fatalf("unexpected account %+v", acc)
	}
	if cur, ok := s.Current(); !ok || cur.ID != acc.ID {
		t.Fatal("Get must select the account")
	}

	_, err = s.Get(ctx, "missing")
	var se *api.StatusError
	if !errors.As(err, &se) || se.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
	if s.LastError() != "Account not found" {
		t.Fatalf("LastError = %q", s.LastError())
	}
}

func TestClientUpdateRefreshesList(t *testing.T) {
	f := newFixture(t)
	f.signInAdmin(t)
	ctx := context.Background()
	s := NewClients(f.deps)

	list, err := s.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v (%d clients)", err, len(list))
	}
	c := list[0]

	updated, err := s.Update(ctx, ClientRequest{
		ID: c.ID, Name: "Acme Live", Contact: c.Contact, Email: c.Email,
		Address: c.Address, Industry: c.Industry, Description: c.Description,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Acme Live" || updated.UpdatedBy != backendtest.AdminUsername {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if got := s.Clients(); len(got) != 1 || got[0].Name != "Acme Live" {
		t.Fatalf("cached list not refreshed: %+v", got)
	}
	if n := f.notices.last(t); n.Level != notify.LevelSuccess {
		t.Fatalf("unexpected notice %+v", n)
	}

	if _, err := s.Update(ctx, ClientRequest{ID: "missing", Name: "x"}); err == nil {
		t.Fatal("expected error for unknown client")
	}
	if f.notices.last(t).Level != notify.LevelError {
		t.Fatal("failed update must emit an error notice")
	}
}

func TestVendorLifecycle(t *testing.T) {
	f := newFixture(t)
	f.signInAdmin(t)
	ctx := context.Background()
	s := NewVendors(f.deps)

	added, err := s.Add(ctx, VendorRequest{Name: "Light Co", Service: "Lighting"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.ID == "" || added.CreatedBy != backendtest.AdminUsername {
		t.Fatalf("unexpected vendor %+v", added)
	}

	if _, err := s.Update(ctx, VendorRequest{ID: added.ID, Name: "Light & Co", Service: "Lighting"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.Vendors(); len(got) != 2 {
		t.Fatalf("expected two vendors after refresh, got %d", len(got))
	}

	v, err := s.Get(ctx, added.ID)
	if err != nil || v.Name != "Light & Co" {
		t.Fatalf("get: %+v, %v", v, err)
	}

	if err := s.Delete(ctx, added.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	for _, v := range s.Vendors() {
		if v.ID == added.ID {
			t.Fatal("deleted vendor still cached")
		}
	}
	if _, err := s.Get(ctx, added.ID); err == nil {
		t.Fatal("deleted vendor still served")
	}

	if _, err := s.Add(ctx, VendorRequest{}); err == nil {
		t.Fatal("expected validation failure")
	}
	if s.LastError() != "Name is required" {
		t.Fatalf("LastError = %q", s.LastError())
	}
}

func TestUpdateReportsFailedRefresh(t *testing.T) {
	tests := []struct {
		name   string
		update func(ctx context.Context, f *fixture) error
	}{
		{
			name: "vendors",
			update: func(ctx context.Context, f *fixture) error {
				s := NewVendors(f.deps)
				added, err := s.Add(ctx, VendorRequest{Name: "Light Co", Service: "Lighting"})
				if err != nil {
					t.Fatalf("add: %v", err)
				}
				f.backend.Fail(http.MethodGet, "/vendor/viewall", backendtest.Failure{HTTPStatus: http.StatusInternalServerError, Message: "list unavailable"})
				_, err = s.Update(ctx, VendorRequest{ID: added.ID, Name: "Light & Co", Service: "Lighting"})
				return err
			},
		},
		{
			name: "clients",
			update: func(ctx context.Context, f *fixture) error {
				s := NewClients(f.deps)
				list, err := s.List(ctx)
				if err != nil || len(list) == 0 {
					t.Fatalf("list: %v", err)
				}
				c := list[0]
				f.backend.Fail(http.MethodGet, "/client/viewall", backendtest.Failure{HTTPStatus: http.StatusInternalServerError, Message: "list unavailable"})
				_, err = s.Update(ctx, ClientRequest{
					ID: c.ID, Name: "Acme Live", Contact: c.Contact, Email: c.Email,
					Address: c.Address, Industry: c.Industry, Description: c.Description,
				})
				return err
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.signInAdmin(t)
			before := f.notices.count()

			if err := tt.update(context.Background(), f); err == nil {
				t.Fatal("expected the failed refresh to fail the update")
			}
			n := f.notices.last(t)
			if n.Level != notify.LevelError {
				t.Fatalf("last notice = %+v, want an error", n)
			}
			for _, got := range f.notices.notices[before:] {
				if got.Level == notify.LevelSuccess && strings.HasPrefix(got.Message, "Updated") {
					t.Fatalf("success notice emitted before the refresh failed: %+v", got)
				}
			}
		})
	}
}

func TestItemsAndStatuses(t *testing.T) {
	f := newFixture(t)
	f.signInAdmin(t)
	ctx := context.Background()
	s := NewItems(f.deps)

	cats, err := s.Categories(ctx)
	if err != nil || len(cats) == 0 {
		t.Fatalf("categories: %v (%d)", err, len(cats))
	}
	if err := s.Create(ctx, ItemRequest{Title: "Speaker", Unit: "pcs", PricePerUnit: 150000, Category: cats[0].Name}); err != nil {
		t.Fatalf("create: %v", err)
	}
	items, err := s.List(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("list: %v (%d)", err, len(items))
	}
	if items[0].Status != "Available" {
		t.Fatalf("new item status = %q", items[0].Status)
	}

	statuses, err := s.Statuses(ctx)
	if err != nil {
		t.Fatalf("statuses: %v", err)
	}
	var maintenance ItemStatus
	for _, st := range statuses {
		if st.Name == "Maintenance" {
			maintenance = st
		}
	}
	if maintenance.ID == 0 {
		t.Fatalf("seeded statuses missing: %+v", statuses)
	}

	if err := s.UpdateStatus(ctx, items[0].ID, maintenance.ID); err != nil {
		t.Fatalf("update status: %v", err)
	}
	items, err = s.List(ctx)
	if err != nil || items[0].Status != "Maintenance" {
		t.Fatalf("status not applied: %+v, %v", items, err)
	}
	if len(s.CachedStatuses()) != len(statuses) || len(s.CachedCategories()) != len(cats) {
		t.Fatal("lookups must be cached")
	}
}

func TestCategories(t *testing.T) {
	f := newFixture(t)
	f.signInAdmin(t)
	ctx := context.Background()
	s := NewCategories(f.deps)

	if err := s.Create(ctx, CategoryRequest{Name: "Rigging"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	last := list[len(list)-1]
	if last.Name != "Rigging" || last.ID == 0 || last.CreatedAt.IsZero() {
		t.Fatalf("unexpected category %+v", last)
	}
}

func TestTransactions(t *testing.T) {
	f := newFixture(t)
	f.signInAdmin(t)
	ctx := context.Background()
	s := NewTransactions(f.deps)

	accounts, err := NewAccounts(f.deps).List(ctx)
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}

	if err := s.Add(ctx, "transfer", TransactionRequest{Amount: 1}); !errors.Is(err, api.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if n := len(f.backend.RequestsTo(http.MethodPost, "/transaction/transfer/add")); n != 0 {
		t.Fatal("invalid kind must not reach the backend")
	}

	if err := s.Add(ctx, Income, TransactionRequest{Amount: 500000, Account: accounts[0].ID, Description: "Ticketing"}); err != nil {
		t.Fatalf("income: %v", err)
	}
	if err := s.Add(ctx, Expense, TransactionRequest{Amount: 200000, Account: accounts[0].ID, Description: "Catering"}); err != nil {
		t.Fatalf("expense: %v", err)
	}

	balances, err := s.Balances(ctx)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	var bca float64
	for _, b := range balances {
		if b.Bank == accounts[0].Bank {
			bca = b.Balance
		}
	}
	if want := accounts[0].Balance + 300000; bca != want {
		t.Fatalf("balance = %v, want %v", bca, want)
	}

	flow, err := s.CashFlow(ctx)
	if err != nil || len(flow) != 1 {
		t.Fatalf("cash flow: %+v, %v", flow, err)
	}
	if flow[0].Income != 500000 || flow[0].Expense != 200000 {
		t.Fatalf("unexpected cash flow %+v", flow[0])
	}

	if _, err := s.Get(ctx, "missing"); err == nil {
		t.Fatal("missing transaction must fail")
	}
	if _, ok := s.Current(); ok {
		t.Fatal("failed lookup must not select a transaction")
	}

	s.Clear()
	if len(s.CachedBalances()) != 0 || len(s.CachedCashFlow()) != 0 {
		t.Fatal("Clear must drop cached summaries")
	}
}
