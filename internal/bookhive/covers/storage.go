// Package covers stores uploaded book cover images on disk and computes the
// placeholder hashes the catalog records carry.
package covers

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Storage manages cover files under a single covers directory.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex
}

// NewStorage creates cover storage rooted at {basePath}/covers.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	storagePath := filepath.Join(basePath, "covers")
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return nil, fmt.Errorf("create covers directory: %w", err)
	}

	return &Storage{basePath: storagePath}, nil
}

// Save stores cover data for a book. Filename format: {id}.jpg.
func (s *Storage) Save(bookID int64, data []byte) error {
	if bookID <= 0 {
		return fmt.Errorf("book id must be positive")
	}
	if len(data) == 0 {
		return fmt.Errorf("image data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.Path(bookID), data, 0o644); err != nil {
		return fmt.Errorf("write cover file: %w", err)
	}
	return nil
}

// Get retrieves cover data for a book. A missing cover wraps fs.ErrNotExist
// so callers can map it to a not-found response.
func (s *Storage) Get(bookID int64) ([]byte, error) {
	if bookID <= 0 {
		return nil, fmt.Errorf("book id must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.Path(bookID))
	if err != nil {
		return nil, fmt.Errorf("read cover for book %d: %w", bookID, err)
	}
	return data, nil
}

// Exists reports whether a cover is stored for the book.
func (s *Storage) Exists(bookID int64) bool {
	if bookID <= 0 {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(bookID))
	return err == nil
}

// Delete removes a book's cover. Deleting an absent cover is not an error.
func (s *Storage) Delete(bookID int64) error {
	if bookID <= 0 {
		return fmt.Errorf("book id must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(bookID)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("delete cover file: %w", err)
	}
	return nil
}

// Hash computes the SHA256 of a stored cover, hex-encoded for use as an ETag.
func (s *Storage) Hash(bookID int64) (string, error) {
	data, err := s.Get(bookID)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum), nil
}

// Path returns the filesystem path for a book's cover.
func (s *Storage) Path(bookID int64) string {
	return filepath.Join(s.basePath, strconv.FormatInt(bookID, 10)+".jpg")
}
