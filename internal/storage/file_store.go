package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the fixed URL prefix the upload directory is served under.
const URLPrefix = "/uploads"

// FileStore saves uploaded files to a single flat directory on disk.
type FileStore struct {
	basePath string
}

// NewFileStore creates the base directory if missing.
func NewFileStore(basePath string) (*FileStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// Dir returns the directory attachments are written to, for static serving.
func (f *FileStore) Dir() string {
	return f.basePath
}

// Save writes the blob under a generated collision-free name preserving the
// original extension, and returns its /uploads reference.
func (f *FileStore) Save(_ context.Context, filename string, r io.Reader, _ int64, _ string) (string, error) {
	name := uuid.NewString() + safeExtension(filename)
	target := filepath.Join(f.basePath, name)

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		// Leave no partial file behind.
		os.Remove(target)
		return "", fmt.Errorf("write file: %w", err)
	}
	return URLPrefix + "/" + name, nil
}

func safeExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	// Reject anything that is not a plain ".xyz" suffix.
	if ext == "" || ext == "." || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}
