package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/consulta/internal/shared/infrastructure/security"
)

const (
	sessionFileName = "session.json"
	sessionFileMode = 0o600
)

// FileStore persists one session as JSON.
type FileStore struct {
	path string
}

// NewFileStore stores the session at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns ~/.consulta/session.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".consulta", sessionFileName), nil
}

// Path returns the file location.
func (s *FileStore) Path() string { return s.path }

// Load returns the stored session, or nil when there is none.
func (s *FileStore) Load() (*Session, error) {
	data, err := security.SafeReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Save replaces the stored session.
func (s *FileStore) Save(sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return security.WriteFileAtomic(s.path, data, sessionFileMode)
}

// Delete removes the stored session. Deleting a missing file is not an error.
func (s *FileStore) Delete() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
