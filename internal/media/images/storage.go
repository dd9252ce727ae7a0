// Package images provides item image upload, validation, and object storage.
package images

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// ErrObjectNotFound is returned when no object is stored under a key.
var ErrObjectNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that are empty, absolute or escape the root.
var ErrInvalidKey = errors.New("invalid object key")

// Storage keeps objects on the local filesystem under a root directory and
// serves them from publicBase + "/objects/" + key.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath   string
	publicBase string
	mu         sync.RWMutex // Protects file operations
}

// NewStorage creates a new Storage rooted at {basePath}/objects.
// publicBase is the externally reachable origin of the record service,
// e.g. http://localhost:8745.
func NewStorage(basePath, publicBase string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	storagePath := filepath.Join(basePath, "objects")
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create objects directory: %w", err)
	}

	return &Storage{
		basePath:   storagePath,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

// Put writes data under key, replacing any existing object.
// contentType is not persisted; it is re-detected when the object is served.
func (s *Storage) Put(ctx context.Context, key string, data []byte, _ string) error {
	if len(data) == 0 {
		return fmt.Errorf("object data cannot be empty")
	}
	p, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("failed to write object file: %w", err)
	}
	return nil
}

// Get retrieves the object stored under key.
func (s *Storage) Get(key string) ([]byte, error) {
	p, err := s.Path(key)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to read object file: %w", err)
	}
	return data, nil
}

// Exists checks if an object is stored under key.
func (s *Storage) Exists(key string) bool {
	p, err := s.Path(key)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

// Delete removes the object under key. Deleting a missing object is not an error.
func (s *Storage) Delete(key string) error {
	p, err := s.Path(key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete object file: %w", err)
	}
	return nil
}

// Hash computes the SHA256 of an object, hex-encoded, for ETag validation.
func (s *Storage) Hash(key string) (string, error) {
	data, err := s.Get(key)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum), nil
}

// PublicURL returns the URL the object under key is served from.
func (s *Storage) PublicURL(key string) string {
	return PublicURL(s.publicBase, key)
}

// Root returns the directory objects are stored under.
func (s *Storage) Root() string {
	return s.basePath
}

// Path returns the filesystem path for key after checking it stays under the root.
func (s *Storage) Path(key string) (string, error) {
	clean, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(clean)), nil
}

// CleanKey normalizes a slash-separated object key and rejects keys that
// are empty, absolute or climb out of the root.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return clean, nil
}

// PublicURL joins a service origin and an object key.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/objects/" + strings.TrimLeft(key, "/")
}
