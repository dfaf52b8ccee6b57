package persist

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore holds the bearer token in a single file, separate from the
// snapshot store. Session freshness is re-validated on every load, so
// only the token itself is worth keeping.
type TokenStore struct {
	path string
}

func NewTokenStore(dir string) (*TokenStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &TokenStore{path: filepath.Join(dir, "token")}, nil
}

func (t *TokenStore) Save(token string) error {
	return os.WriteFile(t.path, []byte(token), 0o600)
}

// Load returns the persisted token, or "" when none is stored.
func (t *TokenStore) Load() (string, error) {
	b, err := os.ReadFile(t.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (t *TokenStore) Clear() error {
	err := os.Remove(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
