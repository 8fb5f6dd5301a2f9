package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rulekit/verdict"
)

// JSONFile reads and writes rules as indented JSON at a fixed path.
type JSONFile struct {
	path string
}

// NewJSONFile returns a JSON file store for path. Only .json paths are
// accepted.
func NewJSONFile(path string) (*JSONFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := checkExt(path, ".json"); err != nil {
		return nil, err
	}
	return &JSONFile{path: filepath.Clean(path)}, nil
}

// Load reads and parses the rule stored at the path.
func (f *JSONFile) Load() (*verdict.Rule, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode rule file: %w", err)
	}
	return verdict.Parse(m)
}

// Store writes the rule's plain form, indented four spaces.
func (f *JSONFile) Store(r *verdict.Rule) error {
	m, err := r.ToMap()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "    ")
	if err != nil {
		return fmt.Errorf("encode rule: %w", err)
	}
	return os.WriteFile(f.path, append(data, '\n'), 0o644)
}

// LoadList reads a JSON array of rules.
func (f *JSONFile) LoadList() ([]*verdict.Rule, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode rule list: %w", err)
	}
	rules := make([]*verdict.Rule, len(items))
	for i, m := range items {
		r, err := verdict.Parse(m)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules[i] = r
	}
	return rules, nil
}

// StoreList writes the rules as one JSON array.
func (f *JSONFile) StoreList(rules []*verdict.Rule) error {
	items := make([]map[string]any, len(rules))
	for i, r := range rules {
		m, err := r.ToMap()
		if err != nil {
			return fmt.Errorf("rule %d: %w", i, err)
		}
		items[i] = m
	}
	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return fmt.Errorf("encode rule list: %w", err)
	}
	return os.WriteFile(f.path, append(data, '\n'), 0o644)
}

var _ Store = (*JSONFile)(nil)
