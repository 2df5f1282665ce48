package database

import (
	"context"
	"errors"
)

var (
	// ErrStoreUnavailable marks failures to reach the storage medium
	// (directory cannot be created, file locked, server down).
	ErrStoreUnavailable = errors.New("descriptor store unavailable")

	// ErrCorruptRecord marks a stored row that cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt descriptor record")
)

// Store is the durable label -> descriptor mapping shared by enrollment and recognition.
// Every method is a single atomic operation on the medium; there is no caching.
type Store interface {
	// EnsureSchema creates the underlying table if it does not exist. File
	// backed stores may defer this until the first Append.
	EnsureSchema(ctx context.Context) error
	// Append inserts a new record and returns its id. Calling it twice creates two records.
	Append(ctx context.Context, label string, d Descriptor) (int64, error)
	// DeleteByLabel removes every record with exactly this label and returns how many were removed.
	// Removing a label that does not exist is not an error.
	DeleteByLabel(ctx context.Context, label string) (int64, error)
	// ScanAll returns every record in insertion order
	ScanAll(ctx context.Context) ([]Record, error)
	// Close releases the connection
	Close() error
}

// LabelLister is implemented by stores that can summarize their labels.
type LabelLister interface {
	// Labels returns every label with the number of records enrolled under it
	Labels(ctx context.Context) ([]LabelCount, error)
	// Count returns the total number of records
	Count(ctx context.Context) (int, error)
}
