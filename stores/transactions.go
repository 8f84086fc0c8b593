package stores

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MrEthical07/backoffice/api"
)

// Transactions records income and expenses and reads ledger summaries.
type Transactions struct {
	base
	categories []Named
	current    *Transaction
	balances   []BankBalance
	cashFlow   []CashFlowPoint
}

func NewTransactions(deps Deps) *Transactions {
	s := &Transactions{}
	s.init("transactions", deps)
	return s
}

func (s *Transactions) Categories(ctx context.Context) ([]Named, error) {
	var out []Named
	err := s.run("transactions.categories", func() error {
		data, err := fetch[[]Named](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/transaction/category/all"})
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

// Add records a transaction on the kind side of the ledger.
func (s *Transactions) Add(ctx context.Context, kind TransactionKind, req TransactionRequest) error {
	if kind != Income && kind != Expense {
		return fmt.Errorf("%w: transaction kind %q", api.ErrInvalidRequest, kind)
	}
	return s.run("transactions.add", func() error {
		err := s.call(ctx, api.Request{Method: http.MethodPost, Path: "/transaction/" + string(kind) + "/add", Body: req}, nil)
		s.report(ctx, "transactions.add", err, "Transaction recorded", "Failed to record transaction")
		return err
	})
}

type transactionID struct {
	ID string `json:"id"`
}

// Get fetches one transaction. Failures are returned, never swallowed.
func (s *Transactions) Get(ctx context.Context, id string) (Transaction, error) {
	var out Transaction
	err := s.run("transactions.get", func() error {
		data, err := fetch[Transaction](ctx, &s.base, api.Request{Method: http.MethodPost, Path: "/transaction/detail", Body: transactionID{ID: id}})
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

func (s *Transactions) Balances(ctx context.Context) ([]BankBalance, error) {
	var out []BankBalance
	err := s.run("transactions.balances", func() error {
		data, err := fetch[[]BankBalance](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/transaction/balance-per-bank"})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.balances = data
		s.mu.Unlock()
		out = append([]BankBalance(nil), data...)
		return nil
	})
	return out, err
}

func (s *Transactions) CashFlow(ctx context.Context) ([]CashFlowPoint, error) {
	var out []CashFlowPoint
	err := s.run("transactions.cash_flow", func() error {
		data, err := fetch[[]CashFlowPoint](ctx, &s.base, api.Request{Method: http.MethodGet, Path: "/transaction/cash-flow/chart-data"})
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.cashFlow = data
		s.mu.Unlock()
		out = append([]CashFlowPoint(nil), data...)
		return nil
	})
	return out, err
}

// Clear drops the cached summaries, the selected transaction and the last error.
func (s *Transactions) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances = nil
	s.cashFlow = nil
	s.current = nil
	s.lastErr = ""
}

func (s *Transactions) CachedBalances() []BankBalance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]BankBalance(nil), s.balances...)
}

func (s *Transactions) CachedCashFlow() []CashFlowPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]CashFlowPoint(nil), s.cashFlow...)
}

func (s *Transactions) Current() (Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Transaction{}, false
	}
	return *s.current, true
}
