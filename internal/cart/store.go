// Package cart is the client-side cart store. The server owns the
// cart: every mutation sends a delta and the response's full item list
// replaces local state wholesale (authoritative replace). The client
// never merges, patches, or stores computed totals.
package cart

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"buyit-client/internal/gateway"
	"buyit-client/internal/logger"
	"buyit-client/internal/persist"
	"buyit-client/internal/state"

	"go.uber.org/zap"
)

const snapshotKey = "cart"

// API is the slice of the gateway the cart store needs.
type API interface {
	Send(ctx context.Context, method, path string, body, out any) error
}

// SnapshotStore persists the item list across restarts. Nil disables
// persistence (the whitelist is enforced by what gets wired here).
type SnapshotStore interface {
	Save(key string, v any) error
	Load(key string, v any) error
}

type Store struct {
	api   API
	snaps SnapshotStore

	mu     sync.Mutex
	items  []Line
	status state.Status
	err    string

	// Outbound mutations race at the network layer. Each request takes
	// a sequence number at dispatch; a response is applied only when no
	// response from a later dispatch has been applied already, so a
	// slow early response can never overwrite a newer server state.
	nextSeq    uint64
	appliedSeq uint64
}

func NewStore(api API, snaps SnapshotStore) *Store {
	return &Store{api: api, snaps: snaps}
}

// Snapshot returns a copy of the current cart state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Line, len(s.items))
	copy(items, s.items)
	return Snapshot{Items: items, Status: s.status, Error: s.err}
}

// Rehydrate paints the cart from the persisted snapshot. Status stays
// idle: the snapshot is a boot-time hint, superseded by the next Fetch
// (stale-while-revalidate).
func (s *Store) Rehydrate() error {
	if s.snaps == nil {
		return nil
	}
	var items []Line
	if err := s.snaps.Load(snapshotKey, &items); err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// Fetch replaces the cart with the server's current snapshot. Failure
// leaves the previous items untouched.
func (s *Store) Fetch(ctx context.Context) error {
	return s.roundTrip(ctx, http.MethodGet, "/api/cart", nil)
}

// Add puts quantity units of a product into the cart. The server
// consolidates repeated adds of the same product into one line; the
// client only reflects whatever list comes back.
func (s *Store) Add(ctx context.Context, productID string, quantity int) error {
	if quantity < 1 {
		s.failLocal(ErrInvalidQuantity)
		return ErrInvalidQuantity
	}
	if err := s.stockGuard(productID, quantity); err != nil {
		s.failLocal(err)
		return err
	}
	return s.postDelta(ctx, productID, quantity)
}

// UpdateQuantity sets a line to an absolute quantity by sending the
// delta from the locally known value. The server decides what happens
// at zero (remove vs clamp); the client imposes no floor of its own.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	delta := quantity - s.quantityOf(productID)
	if delta == 0 {
		return nil
	}
	return s.postDelta(ctx, productID, delta)
}

// Increase bumps a line by one.
func (s *Store) Increase(ctx context.Context, productID string) error {
	return s.postDelta(ctx, productID, 1)
}

// Decrease lowers a line by one; at zero the server removes the line.
func (s *Store) Decrease(ctx context.Context, productID string) error {
	return s.postDelta(ctx, productID, -1)
}

// Remove deletes a single line.
func (s *Store) Remove(ctx context.Context, productID string) error {
	return s.roundTrip(ctx, http.MethodDelete, "/api/cart/"+productID, nil)
}

// Clear removes every line, one request per product (the API has no
// bulk endpoint). Stops at the first failure; the last response
// applied is still an authoritative server state.
func (s *Store) Clear(ctx context.Context) error {
	for _, l := range s.Snapshot().Items {
		if err := s.Remove(ctx, l.Product.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) postDelta(ctx context.Context, productID string, delta int) error {
	body := map[string]any{"productId": productID, "quantity": delta}
	return s.roundTrip(ctx, http.MethodPost, "/api/cart", body)
}

func (s *Store) roundTrip(ctx context.Context, method, path string, body any) error {
	seq := s.claimSeq()

	s.mu.Lock()
	s.status = state.Loading
	s.err = ""
	s.mu.Unlock()

	var payload struct {
		Cart []Line `json:"cart"`
	}
	if err := s.api.Send(ctx, method, path, body, &payload); err != nil {
		s.mu.Lock()
		s.status = state.Failed
		s.err = gateway.Message(err)
		s.mu.Unlock()
		return err
	}

	if payload.Cart == nil {
		payload.Cart = []Line{}
	}
	s.apply(ctx, seq, payload.Cart)
	return nil
}

func (s *Store) claimSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return s.nextSeq
}

func (s *Store) apply(ctx context.Context, seq uint64, items []Line) {
	s.mu.Lock()
	if seq < s.appliedSeq {
		s.mu.Unlock()
		logger.FromCtx(ctx).Debug("discarding stale cart response",
			zap.Uint64("seq", seq),
			zap.Uint64("applied_seq", s.appliedSeq),
		)
		return
	}
	s.appliedSeq = seq
	s.items = items
	s.status = state.Succeeded
	s.err = ""
	s.mu.Unlock()

	if s.snaps != nil {
		if err := s.snaps.Save(snapshotKey, items); err != nil {
			logger.FromCtx(ctx).Warn("failed to persist cart snapshot", zap.Error(err))
		}
	}
}

// failLocal records a client-side rejection without any network round
// trip; items stay untouched.
func (s *Store) failLocal(err error) {
	s.mu.Lock()
	s.status = state.Failed
	s.err = err.Error()
	s.mu.Unlock()
}

func (s *Store) quantityOf(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.items {
		if l.Product.ID == productID {
			return l.Quantity
		}
	}
	return 0
}

// stockGuard rejects an add that the locally known product snapshot
// already shows to be impossible. Only applies when the product is in
// the cart; the server enforces the real limit either way.
func (s *Store) stockGuard(productID string, add int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.items {
		if l.Product.ID == productID && l.Quantity+add > l.Product.Stock {
			return ErrInsufficientStock
		}
	}
	return nil
}
