package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/rulekit/verdict"
)

// Memory is an in-process Repository. It serves as a cache in front of
// a file store and as a drop-in stand-in for the disk-backed
// repositories in tests. Rules are immutable, so handing the same
// pointer to multiple readers is safe.
type Memory struct {
	mu    sync.RWMutex
	rules map[string]*verdict.Rule
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{rules: map[string]*verdict.Rule{}}
}

// Put stores the rule under its id, replacing any previous version.
func (m *Memory) Put(ctx context.Context, r *verdict.Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r == nil || r.ID() == "" {
		return fmt.Errorf("rule id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[r.ID()] = r
	return nil
}

// Get fetches a rule by id.
func (m *Memory) Get(ctx context.Context, id string) (*verdict.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rules[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

// Delete removes a rule by id. Deleting an absent id is not an error.
func (m *Memory) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rules, id)
	return nil
}

// List returns all stored rules ordered by name, then id.
func (m *Memory) List(ctx context.Context) ([]*verdict.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rules := make([]*verdict.Rule, 0, len(m.rules))
	for _, r := range m.rules {
		rules = append(rules, r)
	}
	SortRules(rules)
	return rules, nil
}

// ContainsRule reports whether the id belongs to a stored rule or to a
// rule nested anywhere inside one.
func (m *Memory) ContainsRule(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rules {
		if r.Find(id) != nil {
			return true
		}
	}
	return false
}

// Close is a no-op; it exists to satisfy Repository.
func (m *Memory) Close() error { return nil }

var _ Repository = (*Memory)(nil)
