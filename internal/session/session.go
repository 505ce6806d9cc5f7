// Package session persists the logged-in session between process runs. It
// stores the flat attribute form of the session, the same shape a platform
// credential store would hold.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/devidclub/devid-go/pkg/models"
)

// FileStore reads and writes the session attributes as a JSON file with
// owner-only permissions.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the session to disk, creating parent directories as needed.
func (s *FileStore) Save(user *models.LoggedInUser) error {
	data, err := json.MarshalIndent(user.Attributes(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Load reads the persisted session. A missing file yields (nil, nil): no
// session, no error.
func (s *FileStore) Load() (*models.LoggedInUser, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var attrs map[string]string
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	user, err := models.LoggedInUserFromAttributes(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return user, nil
}

// Delete removes the persisted session; a missing file is not an error.
func (s *FileStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
