package storage

import (
	"context"
	"io"
)

// BlobStore persists uploaded attachments. Save returns a resolvable
// reference for the stored blob: a /uploads path for the disk backend, a
// presigned URL for the object-storage backend.
type BlobStore interface {
	Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
}
