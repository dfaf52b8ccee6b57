// Package order is the client-side store for placed orders.
package order

import (
	"context"
	"net/http"
	"sync"

	"buyit-client/internal/gateway"
	"buyit-client/internal/state"
)

// API is the slice of the gateway the orders store needs.
type API interface {
	Send(ctx context.Context, method, path string, body, out any) error
}

type Store struct {
	api API

	mu        sync.Mutex
	items     []Order
	lastOrder *Order
	status    state.Status
	err       string
}

func NewStore(api API) *Store {
	return &Store{api: api}
}

// Snapshot returns a copy of the current orders state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Status: s.status, Error: s.err}
	snap.Items = make([]Order, len(s.items))
	copy(snap.Items, s.items)
	if s.lastOrder != nil {
		o := *s.lastOrder
		snap.LastOrder = &o
	}
	return snap
}

// Place submits one order-placement request. On success the returned
// order is recorded as LastOrder; the items list is not touched until
// the next FetchMine.
func (s *Store) Place(ctx context.Context, addr Address, method PaymentMethod) (*Order, error) {
	s.begin()

	var placed Order
	body := map[string]any{"shippingAddress": addr, "paymentMethod": method}
	if err := s.api.Send(ctx, http.MethodPost, "/api/orders", body, &placed); err != nil {
		s.fail(err)
		return nil, err
	}

	s.mu.Lock()
	s.lastOrder = &placed
	s.status = state.Succeeded
	s.err = ""
	s.mu.Unlock()
	return &placed, nil
}

// FetchMine loads the current user's orders.
func (s *Store) FetchMine(ctx context.Context) error {
	s.begin()

	var items []Order
	if err := s.api.Send(ctx, http.MethodGet, "/api/orders", nil, &items); err != nil {
		s.fail(err)
		return err
	}

	s.mu.Lock()
	s.items = items
	s.status = state.Succeeded
	s.err = ""
	s.mu.Unlock()
	return nil
}

func (s *Store) begin() {
	s.mu.Lock()
	s.status = state.Loading
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) fail(err error) {
	s.mu.Lock()
	s.status = state.Failed
	s.err = gateway.Message(err)
	s.mu.Unlock()
}
