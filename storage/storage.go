// Package storage persists rules in their plain form.
//
// File stores hold one rule per file (or, for JSON, a list of rules)
// and are created per path: NewJSONFile, NewYAMLFile, NewGobFile. Keyed
// stores implement Repository and hold many rules addressed by rule id:
// Memory here, plus the bolt and sqlite subpackages for on-disk
// collections.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rulekit/verdict"
)

// ErrNotFound reports a rule id absent from a Repository.
var ErrNotFound = errors.New("rule not found")

// Store loads and saves a single rule at a fixed location.
type Store interface {
	Load() (*verdict.Rule, error)
	Store(r *verdict.Rule) error
}

// Repository is a keyed rule collection addressed by rule id.
type Repository interface {
	Put(ctx context.Context, r *verdict.Rule) error
	Get(ctx context.Context, id string) (*verdict.Rule, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*verdict.Rule, error)
	Close() error
}

// SortRules orders rules by name, then id. List implementations return
// rules in this order.
func SortRules(rules []*verdict.Rule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Name() != rules[j].Name() {
			return rules[i].Name() < rules[j].Name()
		}
		return rules[i].ID() < rules[j].ID()
	})
}

// checkExt validates a path's extension for a format. Mismatches report
// verdict.ErrInvalidRule, the same error callers already check for
// unusable rules.
func checkExt(path string, exts ...string) error {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported file type %q, want %s", verdict.ErrInvalidRule, ext, strings.Join(exts, " or "))
}
