package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps raw uploads on local disk under root/<owner>/<uuid><ext>.
// Paths returned are relative to root so the root can move between
// deployments.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root failed: %w", err)
	}
	return &LocalStore{root: root}, nil
}

// Save writes the file under the owner's directory with a random object
// name and returns the relative storage path.
func (s *LocalStore) Save(ownerID, filename string, data []byte) (string, error) {
	if ownerID == "" {
		return "", fmt.Errorf("owner id is required")
	}

	objectName := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	rel := filepath.Join(ownerID, objectName)

	// The owner id comes from an external identity provider; it goes
	// through the same root-escape check as stored paths.
	abs, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("create owner dir failed: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return "", fmt.Errorf("write file failed: %w", err)
	}
	return rel, nil
}

func (s *LocalStore) Read(path string) ([]byte, error) {
	abs, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read file failed: %w", err)
	}
	return data, nil
}

func (s *LocalStore) Remove(path string) error {
	abs, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file failed: %w", err)
	}
	return nil
}

// resolve rejects paths that would escape the storage root.
func (s *LocalStore) resolve(path string) (string, error) {
	abs := filepath.Join(s.root, filepath.Clean(path))
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", err
	}
	fullAbs, err := filepath.Abs(abs)
	if err != nil {
		return "", err
	}
	if fullAbs != rootAbs && !strings.HasPrefix(fullAbs, rootAbs+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes storage root", path)
	}
	return abs, nil
}
