package object

import (
	"context"
)

// DeleteStatus reports the outcome of a blob deletion. "Already absent"
// is modeled as an explicit variant rather than an error: the
// reconciler treats it as success and proceeds with the relational
// delete.
type DeleteStatus int

const (
	// Deleted indicates the blob existed and was removed.
	Deleted DeleteStatus = iota
	// AlreadyAbsent indicates there was nothing to remove.
	AlreadyAbsent
)

// Storage defines the interface for blob storage operations.
// Implementations: local filesystem (default), MinIO.
type Storage interface {
	// SaveFile writes the blob content at the given path, creating
	// parent directories or buckets as needed.
	SaveFile(ctx context.Context, path string, content []byte) error
	// ReadFile returns the blob content at the given path.
	ReadFile(ctx context.Context, path string) ([]byte, error)
	// DeleteFile removes the blob at the given path. A missing blob is
	// not an error; it reports AlreadyAbsent.
	DeleteFile(ctx context.Context, path string) (DeleteStatus, error)
}
