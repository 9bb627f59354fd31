package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pfassina/rendercards/internal/naming"
)

// Store handles session state persistence.
type Store struct {
	path string
}

// NewStore creates a store that persists to state.json in dir, normally the
// config directory.
func NewStore(dir string) *Store {
	return &Store{
		path: filepath.Join(dir, "state.json"),
	}
}

// ForUser returns a store kept apart from every other user's, under
// users/<name> next to s. A name that normalizes to nothing shares s.
func (s *Store) ForUser(user string) *Store {
	name, err := naming.Normalize(user)
	if err != nil {
		return s
	}
	return NewStore(filepath.Join(filepath.Dir(s.path), "users", name))
}

// Path is the file the store reads and writes.
func (s *Store) Path() string { return s.path }

// Load reads the session state from disk. A missing file yields Default.
func (s *Store) Load() (State, error) {
	state := Default()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, err
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return Default(), err
	}

	return state, nil
}

// Save writes the session state to disk. The file is replaced whole, so a
// concurrent Load sees either the old state or the new one.
func (s *Store) Save(state State) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
