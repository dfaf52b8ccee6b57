package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// -- Transport failures --
	ErrNetwork = errors.New("network error: no response received")
	ErrTimeout = errors.New("request timed out")

	// -- Authentication --
	ErrUnauthorized = errors.New("unauthorized")
)

// HTTPError is a 4xx/5xx response. Message carries the server's rejection
// text when the body had one, otherwise the generic status text.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Message extracts the human-readable text the UI should show for a
// failed call: the server's own message for HTTP rejections, the
// taxonomy text otherwise.
func Message(err error) string {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Message
	}
	if errors.Is(err, ErrTimeout) {
		return ErrTimeout.Error()
	}
	if errors.Is(err, ErrNetwork) {
		return ErrNetwork.Error()
	}
	return err.Error()
}
