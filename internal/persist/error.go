package persist

import "errors"

var (
	ErrNotFound = errors.New("no persisted snapshot for key")
)
