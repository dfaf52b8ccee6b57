// Package checkout drives the multi-step order placement flow:
// cart review, address and payment capture, submission, confirmation,
// redirect. It coordinates the cart and orders stores but owns no
// server state of its own; a failed submission leaves both untouched.
package checkout

import (
	"context"
	"sync"
	"time"

	"buyit-client/internal/cart"
	"buyit-client/internal/gateway"
	"buyit-client/internal/logger"
	"buyit-client/internal/order"

	"go.uber.org/zap"
)

type Phase int

const (
	Reviewing Phase = iota
	AddressCapture
	Submitting
	Confirmed
)

func (p Phase) String() string {
	switch p {
	case Reviewing:
		return "reviewing"
	case AddressCapture:
		return "addressCapture"
	case Submitting:
		return "submitting"
	case Confirmed:
		return "confirmed"
	}
	return "unknown"
}

// CartStore is the slice of the cart store the flow needs.
type CartStore interface {
	Snapshot() cart.Snapshot
	Fetch(ctx context.Context) error
}

// OrderPlacer is the slice of the orders store the flow needs.
type OrderPlacer interface {
	Place(ctx context.Context, addr order.Address, method order.PaymentMethod) (*order.Order, error)
}

type Flow struct {
	cart   CartStore
	orders OrderPlacer

	mu            sync.Mutex
	phase         Phase
	err           string
	redirectAfter time.Duration
	onRedirect    func()
	timer         *time.Timer
}

func NewFlow(cartStore CartStore, orders OrderPlacer, redirectAfter time.Duration) *Flow {
	return &Flow{cart: cartStore, orders: orders, redirectAfter: redirectAfter}
}

// OnRedirect registers the navigation hook fired after the
// confirmation view has had its moment.
func (f *Flow) OnRedirect(fn func()) {
	f.mu.Lock()
	f.onRedirect = fn
	f.mu.Unlock()
}

func (f *Flow) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *Flow) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Begin moves Reviewing -> AddressCapture. An empty cart cannot enter
// address capture.
func (f *Flow) Begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != Reviewing {
		return ErrWrongPhase
	}
	if len(f.cart.Snapshot().Items) == 0 {
		f.err = ErrEmptyCart.Error()
		return ErrEmptyCart
	}
	f.phase = AddressCapture
	f.err = ""
	return nil
}

// Cancel backs out of address capture to the review step.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == AddressCapture {
		f.phase = Reviewing
		f.err = ""
	}
}

// Submit validates the captured address and payment method, places the
// order, re-fetches the (now empty) cart, and schedules the redirect.
// On failure the flow returns to AddressCapture with the error
// surfaced; cart and order state stay as they were.
func (f *Flow) Submit(ctx context.Context, addr order.Address, method order.PaymentMethod) (*order.Order, error) {
	f.mu.Lock()
	if f.phase != AddressCapture {
		f.mu.Unlock()
		return nil, ErrWrongPhase
	}
	if err := validate(addr, method); err != nil {
		f.err = err.Error()
		f.mu.Unlock()
		return nil, err
	}
	f.phase = Submitting
	f.err = ""
	f.mu.Unlock()

	placed, err := f.orders.Place(ctx, addr, method)
	if err != nil {
		f.mu.Lock()
		f.phase = AddressCapture
		f.err = gateway.Message(err)
		f.mu.Unlock()
		return nil, err
	}

	// the server cleared the cart as part of placement; refresh our
	// copy. A failure here is cosmetic, the order is already placed.
	if err := f.cart.Fetch(ctx); err != nil {
		logger.FromCtx(ctx).Warn("cart refresh after placement failed", zap.Error(err))
	}

	f.mu.Lock()
	f.phase = Confirmed
	fn := f.onRedirect
	if fn != nil {
		f.timer = time.AfterFunc(f.redirectAfter, fn)
	}
	f.mu.Unlock()

	return placed, nil
}

// Reset returns a confirmed flow to Reviewing for the next purchase
// and drops any pending redirect.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.phase = Reviewing
	f.err = ""
}

func validate(addr order.Address, method order.PaymentMethod) error {
	fields := []struct {
		name, value string
	}{
		{"street", addr.Street},
		{"city", addr.City},
		{"state", addr.State},
		{"zipCode", addr.ZipCode},
	}
	for _, fl := range fields {
		if fl.value == "" {
			return &ValidationError{Field: fl.name, Reason: "required"}
		}
	}
	if !method.Valid() {
		return &ValidationError{Field: "paymentMethod", Reason: "must be creditCard, paypal or cashOnDelivery"}
	}
	return nil
}
