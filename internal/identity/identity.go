// Package identity persists the player identity sent during registration,
// so a server can recognize the same player across reconnects. It lives in
// ~/.local/state/retrowars/identity.json (respecting XDG_STATE_HOME).
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	// identityVersion is bumped when the schema changes, so Load can apply
	// migrations in the future.
	identityVersion = 1

	identityFileName = "identity.json"
	appDirName       = "retrowars"
)

// Identity is the persisted record.
type Identity struct {
	Version  int    `json:"version"`
	PlayerID string `json:"playerId"`
}

// Store handles loading and saving the identity file.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at the given directory. Pass an empty
// string to use the default XDG state path.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = defaultStateDir()
	}
	return &Store{dir: dir}
}

// Path returns the full path to the identity file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, identityFileName)
}

// Load returns the persisted identity, minting and saving a fresh one on
// first run. A file that parses but carries no player id is treated as
// first run too.
func (s *Store) Load() (*Identity, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return s.mint()
		}
		return nil, fmt.Errorf("reading identity: %w", err)
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("parsing identity: %w", err)
	}
	if id.PlayerID == "" {
		return s.mint()
	}
	return &id, nil
}

func (s *Store) mint() (*Identity, error) {
	id := &Identity{Version: identityVersion, PlayerID: uuid.NewString()}
	if err := s.Save(id); err != nil {
		return nil, err
	}
	return id, nil
}

// Save writes the identity using an atomic temp-file-then-rename pattern.
// The directory is created if it does not already exist.
func (s *Store) Save(id *Identity) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating identity dir: %w", err)
	}

	id.Version = identityVersion

	data, err := json.MarshalIndent(id, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling identity: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, ".identity-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("renaming identity file: %w", err)
	}
	committed = true

	return nil
}

// defaultStateDir returns ~/.local/state/retrowars, respecting
// XDG_STATE_HOME if set.
func defaultStateDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appDirName)
}
