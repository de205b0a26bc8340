// upload.go
package openapi2tool

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// UploadGateway persists spec or manifest bytes and returns a durable URL.
// The converter never decides storage location, ACLs, or credentials; those
// belong to the gateway implementation, configured explicitly by the caller.
type UploadGateway interface {
	Store(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// FileStore is an UploadGateway backed by a local directory. The base
// directory is explicit configuration, never read from process-wide state.
type FileStore struct {
	BaseDir string
}

// NewFileStore returns a FileStore rooted at baseDir.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{BaseDir: baseDir}
}

// Store writes data under the base directory and returns a file:// URL.
// Paths escaping the base directory are rejected.
func (s *FileStore) Store(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Clean("/" + path)
	if clean == "/" {
		return "", fmt.Errorf("empty storage path")
	}
	dest := filepath.Join(s.BaseDir, clean)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating storage directory: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", dest, err)
	}
	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dest, err)
	}
	return "file://" + abs, nil
}

// MemoryObject is one blob held by a MemoryStore.
type MemoryObject struct {
	Data        []byte
	ContentType string
}

// MemoryStore is an in-memory UploadGateway, used in tests and as the HTTP
// service default when no store directory is configured. It is safe for
// concurrent use.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]MemoryObject
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]MemoryObject{}}
}

// Store keeps data in memory and returns a mem:// URL.
func (s *MemoryStore) Store(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := strings.TrimPrefix(path, "/")
	copied := make([]byte, len(data))
	copy(copied, data)
	s.mu.Lock()
	s.objects[key] = MemoryObject{Data: copied, ContentType: contentType}
	s.mu.Unlock()
	return "mem://" + key, nil
}

// Get returns the stored object for path, if any.
func (s *MemoryStore) Get(path string) (MemoryObject, bool) {
	key := strings.TrimPrefix(path, "/")
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[key]
	return obj, ok
}
