// Package settings persists the handful of values that must survive a
// restart. Today that is the last volume the user picked, restored at startup
// and pushed to a freshly started remote player.
package settings

import (
	"encoding/gob"
	"errors"
	"os"
	"path/filepath"
	"time"
)

const (
	stateVersion  = 1
	stateDirName  = "ytmirror"
	stateFileName = "state.bin"
)

var ErrNotFound = errors.New("no saved state")

type state struct {
	Version   uint8
	Volume    int
	HasVolume bool
	SavedAt   int64
}

// Store reads and writes the durable state file.
type Store struct {
	path string
}

// NewStore places the state file under the XDG config directory.
func NewStore() (*Store, error) {
	dir, err := stateDirectory()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{path: filepath.Join(dir, stateFileName)}, nil
}

// NewStoreAt uses an explicit file path. Tests use this with a temp dir.
func NewStoreAt(path string) *Store {
	return &Store{path: path}
}

func stateDirectory() (string, error) {
	// xdg config home takes priority
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig != "" {
		return filepath.Join(xdgConfig, stateDirName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", stateDirName), nil
}

// LoadVolume returns the persisted volume, or ErrNotFound when nothing has
// been saved yet (including after a version bump of the state format).
func (s *Store) LoadVolume() (int, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	defer file.Close()

	var st state
	if err := gob.NewDecoder(file).Decode(&st); err != nil {
		return 0, ErrNotFound
	}
	if st.Version != stateVersion || !st.HasVolume {
		return 0, ErrNotFound
	}

	return st.Volume, nil
}

// SaveVolume writes the volume durably. The write goes to a temp file first
// and is renamed into place so a crash never leaves a torn state file.
func (s *Store) SaveVolume(volume int) error {
	st := state{
		Version:   stateVersion,
		Volume:    volume,
		HasVolume: true,
		SavedAt:   time.Now().Unix(),
	}

	tmpPath := s.path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	if err := gob.NewEncoder(file).Encode(&st); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, s.path)
}
