package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// -- Client-side stock guard (server stays the final arbiter) --
	ErrInsufficientStock = errors.New("requested quantity exceeds available stock")
)
