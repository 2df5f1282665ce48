// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/kozaktomas/fras/internal/database"
)

// MockStore is an in-memory implementation of database.Store
type MockStore struct {
	mu      sync.RWMutex
	records []database.Record
	nextID  int64
	closed  bool

	// Error injection
	EnsureSchemaError error
	AppendError       error
	DeleteError       error
	ScanError         error

	// Call counters
	AppendCalls int
	ScanCalls   int
}

// NewMockStore creates a new empty mock store
func NewMockStore() *MockStore {
	return &MockStore{nextID: 1}
}

// EnsureSchema is a no-op unless an error is injected
func (m *MockStore) EnsureSchema(ctx context.Context) error {
	return m.EnsureSchemaError
}

// Append stores a copy of the descriptor under label
func (m *MockStore) Append(ctx context.Context, label string, d database.Descriptor) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls++
	if m.AppendError != nil {
		return 0, m.AppendError
	}
	id := m.nextID
	m.nextID++
	m.records = append(m.records, database.Record{ID: id, Label: label, Descriptor: slices.Clone(d)})
	return id, nil
}

// DeleteByLabel removes all records with the given label
func (m *MockStore) DeleteByLabel(ctx context.Context, label string) (int64, error) {
	if m.DeleteError != nil {
		return 0, m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.records)
	m.records = slices.DeleteFunc(m.records, func(r database.Record) bool { return r.Label == label })
	return int64(before - len(m.records)), nil
}

// ScanAll returns a snapshot of all records in insertion order
func (m *MockStore) ScanAll(ctx context.Context) ([]database.Record, error) {
	m.mu.Lock()
	m.ScanCalls++
	m.mu.Unlock()
	if m.ScanError != nil {
		return nil, m.ScanError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.Record, len(m.records))
	for i, r := range m.records {
		out[i] = database.Record{ID: r.ID, Label: r.Label, Descriptor: slices.Clone(r.Descriptor)}
	}
	return out, nil
}

// Labels returns label counts in first-enrollment order
func (m *MockStore) Labels(ctx context.Context) ([]database.LabelCount, error) {
	if m.ScanError != nil {
		return nil, m.ScanError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.LabelCount
	index := make(map[string]int)
	for _, r := range m.records {
		if i, ok := index[r.Label]; ok {
			out[i].Count++
			continue
		}
		index[r.Label] = len(out)
		out = append(out, database.LabelCount{Label: r.Label, Count: 1})
	}
	return out, nil
}

// Count returns the number of stored records
func (m *MockStore) Count(ctx context.Context) (int, error) {
	if m.ScanError != nil {
		return 0, m.ScanError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// Close marks the store as closed
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called
func (m *MockStore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

var (
	_ database.Store       = (*MockStore)(nil)
	_ database.LabelLister = (*MockStore)(nil)
)
