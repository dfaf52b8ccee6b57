package checkout

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart  = errors.New("cart has no items to check out")
	ErrWrongPhase = errors.New("operation not allowed in current checkout phase")
)

// ValidationError is a client-side field rejection, raised before any
// request is sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
