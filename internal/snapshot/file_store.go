package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// FileStore persists sealed snapshots as one JSON file per session.
// Writes go to a temp file that is renamed into place, so a crash never
// leaves a half-written save.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating save dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the save directory.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the save file path of a session.
func (s *FileStore) Path(sessionID string) (string, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return "", fmt.Errorf("invalid session id %q: %w", sessionID, err)
	}
	return filepath.Join(s.dir, id.String()+".json"), nil
}

// Save writes snap atomically.
func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}
	path, err := s.Path(snap.SessionID)
	if err != nil {
		return err
	}
	data, err := Seal(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.dir, path, data)
}

// Load reads and verifies the save of sessionID.
func (s *FileStore) Load(ctx context.Context, sessionID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	path, err := s.Path(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	data, err := os.ReadFile(path)
	s.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, fmt.Errorf("%w: session %s", ErrNotFound, sessionID)
		}
		return Snapshot{}, fmt.Errorf("reading save %s: %w", path, err)
	}
	return Open(data)
}

// ReadFile opens a sealed save file outside of any store.
func ReadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading save %s: %w", path, err)
	}
	return Open(data)
}

// WriteFile seals snap into path atomically.
func WriteFile(path string, snap Snapshot) error {
	data, err := Seal(snap)
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Dir(path), path, data)
}

func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp save: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp save: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp save: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming save into place: %w", err)
	}
	return nil
}
