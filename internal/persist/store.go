// Package persist is the durable client-side storage for state that
// must survive restarts: namespaced JSON snapshots (the cart slice)
// and a single scalar slot for the bearer token. Snapshots are only a
// boot-time hint; a fresh server fetch supersedes them right after
// rehydration.
package persist

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Store writes JSON snapshots under <dir>/<namespace>/<key>.json.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a torn snapshot behind.
type Store struct {
	root string
}

func NewStore(dir, namespace string) (*Store, error) {
	root := filepath.Join(dir, namespace)
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) Save(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	final := s.path(key)
	tmp, err := os.CreateTemp(s.root, key+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), final)
}

func (s *Store) Load(key string, v any) error {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(b, v)
}

func (s *Store) Delete(key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Store) path(key string) string {
	return filepath.Join(s.root, key+".json")
}
