package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"buyit-client/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Outbound budget: high enough for a frontend-heavy client, low enough
// that a runaway UI loop cannot hammer the API.
const (
	limitOutbound = rate.Limit(20)
	burstOutbound = 40
)

// Client wraps outbound calls to the storefront API. It attaches the
// bearer token when one is set and normalizes transport and HTTP
// failures into the package's error taxonomy. No retries happen here;
// retry policy, if any, belongs to the caller.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter

	mu    sync.RWMutex
	token string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limitOutbound, burstOutbound),
	}
}

// SetAuthToken sets the default Authorization header for every
// subsequent request. An empty token removes the header. This is the
// only mutator of the default header and it is idempotent.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the currently configured bearer token, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Send issues one JSON request. body is marshalled when non-nil; the
// response body is decoded into out when non-nil. 4xx/5xx responses
// come back as *HTTPError with the server's message surfaced.
func (c *Client) Send(ctx context.Context, method, path string, body, out any) error {
	reqID := uuid.New().String()
	ctx = logger.WithRequestID(ctx, reqID)
	log := logger.FromCtx(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		return classifyTransport(err)
	}

	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		err = classifyTransport(err)
		log.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransport(err)
	}

	log.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 400 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(raw, resp.StatusCode),
			Body:       raw,
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return err
		}
	}
	return nil
}

// classifyTransport maps a transport-level failure onto the error
// taxonomy: timeouts become ErrTimeout, everything else ErrNetwork.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return errors.Join(ErrNetwork, err)
}

// serverMessage pulls the human-readable message out of an error body.
func serverMessage(raw []byte, status int) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return http.StatusText(status)
}
