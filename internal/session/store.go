// Package session is the auth session store: it holds the current user
// and bearer token, drives login/register/me against the API, and owns
// token persistence. No cart or order mutation happens without it
// having set the gateway's auth header first.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"buyit-client/internal/gateway"
	"buyit-client/internal/logger"
	"buyit-client/internal/state"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// API is the slice of the gateway the session store needs.
type API interface {
	Send(ctx context.Context, method, path string, body, out any) error
	SetAuthToken(token string)
}

// TokenStore persists the bearer token across restarts.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	Clear() error
}

type Store struct {
	api    API
	tokens TokenStore

	mu     sync.Mutex
	user   *User
	token  string
	status state.Status
	err    string
}

func NewStore(api API, tokens TokenStore) *Store {
	return &Store{api: api, tokens: tokens}
}

// Snapshot returns a copy of the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{Token: s.token, Status: s.status, Error: s.err}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Rehydrate loads a previously persisted token and configures the
// gateway with it. The user stays nil until Me confirms the token.
func (s *Store) Rehydrate() error {
	token, err := s.tokens.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.api.SetAuthToken(token)
	return nil
}

// Register creates an account and opens a session with the returned
// user and token.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	s.begin()

	var payload struct {
		User  *User  `json:"user"`
		Token string `json:"token"`
	}
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := s.api.Send(ctx, http.MethodPost, "/api/register", body, &payload); err != nil {
		s.fail(err)
		return err
	}

	s.open(ctx, payload.User, payload.Token)
	return nil
}

// Login authenticates and opens a session. The server's login payload
// has historically been inconsistent: the user is either under "user"
// or is the payload itself. Both shapes are accepted; the legacy one
// is logged so it can be hunted down server-side.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.begin()

	var raw json.RawMessage
	body := map[string]string{"email": email, "password": password}
	if err := s.api.Send(ctx, http.MethodPost, "/api/login", body, &raw); err != nil {
		s.fail(err)
		return err
	}

	var payload struct {
		User  *User  `json:"user"`
		Token string `json:"token"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		s.fail(err)
		return err
	}
	if payload.User == nil {
		var bare User
		if err := json.Unmarshal(raw, &bare); err != nil || bare.Email == "" {
			s.fail(ErrNotAuthenticated)
			return ErrNotAuthenticated
		}
		logger.FromCtx(ctx).Warn("login returned legacy flat payload",
			zap.String("email", bare.Email),
		)
		payload.User = &bare
	}

	s.open(ctx, payload.User, payload.Token)
	return nil
}

// Me refetches the current user for the stored token. Failure records
// the error but keeps the session; the route guard decides what to do
// with an unauthenticated user.
func (s *Store) Me(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		s.recordErr(ErrNotAuthenticated)
		return ErrNotAuthenticated
	}
	if expired(token) {
		s.recordErr(ErrTokenExpired)
		return ErrTokenExpired
	}

	var payload struct {
		User *User `json:"user"`
	}
	if err := s.api.Send(ctx, http.MethodGet, "/api/me", nil, &payload); err != nil {
		s.recordErr(err)
		return err
	}

	s.mu.Lock()
	s.user = payload.User
	s.status = state.Succeeded
	s.err = ""
	s.mu.Unlock()
	return nil
}

// Logout clears the session locally: user, token, error, persisted
// token, gateway header. It never touches the network and works from
// any state.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.status = state.Idle
	s.err = ""
	s.mu.Unlock()

	if err := s.tokens.Clear(); err != nil {
		logger.L().Warn("failed to erase persisted token", zap.Error(err))
	}
	s.api.SetAuthToken("")
}

func (s *Store) begin() {
	s.mu.Lock()
	s.status = state.Loading
	s.err = ""
	s.mu.Unlock()
}

func (s *Store) open(ctx context.Context, user *User, token string) {
	s.mu.Lock()
	s.user = user
	s.token = token
	s.status = state.Succeeded
	s.err = ""
	s.mu.Unlock()

	s.api.SetAuthToken(token)
	if err := s.tokens.Save(token); err != nil {
		logger.FromCtx(ctx).Warn("failed to persist token", zap.Error(err))
	}
}

// fail ends an auth attempt: status failed, session cleared.
func (s *Store) fail(err error) {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.status = state.Failed
	s.err = gateway.Message(err)
	s.mu.Unlock()
}

// recordErr keeps the session but surfaces the error (Me contract).
func (s *Store) recordErr(err error) {
	s.mu.Lock()
	s.err = gateway.Message(err)
	s.mu.Unlock()
}

// expired reports whether a JWT bearer token is already past its exp
// claim. Opaque tokens are passed through; the server stays the
// final validator either way.
func expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
