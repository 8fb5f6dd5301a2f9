// Package bolt provides a bbolt-backed rule repository.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/rulekit/verdict"
	"github.com/rulekit/verdict/storage"
)

const rulesBucket = "rules"

// Store keeps rules in a single-file bbolt database, as JSON payloads
// keyed by rule id.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the database file at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put persists a rule keyed by its id, replacing any previous version.
func (s *Store) Put(ctx context.Context, r *verdict.Rule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if r == nil || r.ID() == "" {
		return fmt.Errorf("rule id is required")
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal rule: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(rulesBucket))
		if bucket == nil {
			return fmt.Errorf("rules bucket is missing")
		}
		return bucket.Put([]byte(r.ID()), payload)
	})
}

// Get fetches a rule by id.
func (s *Store) Get(ctx context.Context, id string) (*verdict.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("rule id is required")
	}

	var rule verdict.Rule
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(rulesBucket))
		if bucket == nil {
			return fmt.Errorf("rules bucket is missing")
		}
		payload := bucket.Get([]byte(id))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &rule); err != nil {
			return fmt.Errorf("unmarshal rule: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &rule, nil
}

// Delete removes a rule by id. Deleting an absent id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("rule id is required")
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(rulesBucket))
		if bucket == nil {
			return fmt.Errorf("rules bucket is missing")
		}
		return bucket.Delete([]byte(id))
	})
}

// List returns all stored rules ordered by name, then id.
func (s *Store) List(ctx context.Context) ([]*verdict.Rule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var rules []*verdict.Rule
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(rulesBucket))
		if bucket == nil {
			return fmt.Errorf("rules bucket is missing")
		}
		return bucket.ForEach(func(k, v []byte) error {
			var rule verdict.Rule
			if err := json.Unmarshal(v, &rule); err != nil {
				return fmt.Errorf("unmarshal rule %q: %w", k, err)
			}
			rules = append(rules, &rule)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	storage.SortRules(rules)
	return rules, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(rulesBucket))
		if err != nil {
			return fmt.Errorf("create rules bucket: %w", err)
		}
		return nil
	})
}

var _ storage.Repository = (*Store)(nil)
