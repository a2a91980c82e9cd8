package vectordb

import (
	"context"
)

// DropStatus reports the outcome of a collection drop. Dropping a
// collection that is already gone is success, not failure: the
// reconciler must still remove the relational record that pointed at
// it.
type DropStatus int

const (
	// Dropped indicates the collection existed and was removed.
	Dropped DropStatus = iota
	// AlreadyAbsent indicates there was no such collection.
	AlreadyAbsent
)

// VectorDatabase implements the necessary use cases to interact with a
// vector database. File embeddings live in a "file-<file id>"
// collection; knowledge base embeddings live in a collection named by
// the knowledge base ID.
type VectorDatabase interface {
	// CreateCollection creates a named collection. Creating an existing
	// collection is a no-op.
	CreateCollection(ctx context.Context, name string) error
	// HasCollection checks if a collection exists.
	HasCollection(ctx context.Context, name string) (bool, error)
	// DropCollection removes a named collection and its stored vectors.
	DropCollection(ctx context.Context, name string) (DropStatus, error)
	// ListCollections enumerates the logical collection names.
	ListCollections(ctx context.Context) ([]string, error)
	// Compact reclaims storage after deletions. Failures are tolerable;
	// callers log and move on.
	Compact(ctx context.Context) error
	// Close releases the backend connection or file handles.
	Close() error
}

// CatalogEntry maps a collection's internal storage directory to its
// logical name.
type CatalogEntry struct {
	DirName    string
	Collection string
}

// PhysicalCatalog is implemented by backends whose on-disk layout is a
// directory per collection under a local root, where the directory
// name is an internal identifier resolvable only through the backend's
// own metadata catalog. The physical sweeper consults it to decide
// which directories are live; backends without a local layout (remote
// engines) simply don't implement it and the sweep is skipped.
type PhysicalCatalog interface {
	// Root returns the storage root holding the collection directories.
	Root() string
	// Collections returns the catalog's directory-to-name entries.
	Collections(ctx context.Context) ([]CatalogEntry, error)
}
