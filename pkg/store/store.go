// Package store loads families from the backends kintree reads from.
//
// Every backend implements [Store]. The in-process backends live here:
//   - [Memory]: a fixed list of families, used by tests and the CLI
//   - [File]: a JSON or TOML snapshot on disk
//
// Database backends live in the mongo and dynamo subpackages. Two wrappers
// compose with any backend: [Scoped] restricts access to the families a
// viewer belongs to and [Cached] keeps loaded families in a [cache.Cache].
//
// Stores return families that callers may not mutate. Tree computations
// clone what they touch, so sharing is safe.
package store

import (
	"context"
	"sync"

	"github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// Store provides families by id.
type Store interface {
	// Family returns the family with the given id or an error with code
	// errors.ErrCodeFamilyNotFound.
	Family(ctx context.Context, id string) (*family.Family, error)

	// Families returns every family in the store in a stable order.
	Families(ctx context.Context) ([]*family.Family, error)

	// Close releases the backend's resources.
	Close() error
}

// NotFound returns the error stores report for a missing or inaccessible
// family. Both cases share one message so callers cannot probe for ids.
func NotFound(id string) error {
	return errors.New(errors.ErrCodeFamilyNotFound, "family %q not found or access denied", id)
}

// Memory is a Store over a fixed list of families.
type Memory struct {
	mu       sync.RWMutex
	families []*family.Family
	byID     map[string]*family.Family
}

// NewMemory returns a Memory store holding families. Nil entries are
// skipped; a later family with a duplicate id replaces the earlier one.
func NewMemory(families ...*family.Family) *Memory {
	m := &Memory{byID: make(map[string]*family.Family, len(families))}
	for _, f := range families {
		m.put(f)
	}
	return m
}

func (m *Memory) put(f *family.Family) {
	if f == nil {
		return
	}
	if _, ok := m.byID[f.ID]; ok {
		for i, old := range m.families {
			if old.ID == f.ID {
				m.families[i] = f
			}
		}
	} else {
		m.families = append(m.families, f)
	}
	m.byID[f.ID] = f
}

// Put adds or replaces a family.
func (m *Memory) Put(f *family.Family) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(f)
}

// Family returns the family with the given id.
func (m *Memory) Family(ctx context.Context, id string) (*family.Family, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.byID[id]
	if !ok {
		return nil, NotFound(id)
	}
	return f, nil
}

// Families returns the families in insertion order.
func (m *Memory) Families(ctx context.Context) ([]*family.Family, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*family.Family, len(m.families))
	copy(out, m.families)
	return out, nil
}

// Close does nothing.
func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
