package cart

import "buyit-client/internal/state"

// ProductSnapshot is the product data the server embeds in each cart
// line. It is display data only; price and stock are re-evaluated
// server-side on every mutation.
type ProductSnapshot struct {
	ID    string  `json:"_id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
	Image string  `json:"image,omitempty"`
}

// Line is one product+quantity pairing. Quantity is always >= 1; the
// server removes a line rather than persisting it at zero.
type Line struct {
	Product  ProductSnapshot `json:"product"`
	Quantity int             `json:"quantity"`
}

// Snapshot is a copy of the cart state safe to hand to the UI.
type Snapshot struct {
	Items  []Line
	Status state.Status
	Error  string
}

// Subtotal is derived at read time, never stored: the server's item
// list is the only persisted truth.
func (s Snapshot) Subtotal() float64 {
	var total float64
	for _, l := range s.Items {
		total += l.Product.Price * float64(l.Quantity)
	}
	return total
}
