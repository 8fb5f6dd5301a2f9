package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rulekit/verdict"
)

func init() {
	// The plain form travels through a gob interface slot, so its
	// composite types must be registered. Scalars already are.
	gob.Register(map[string]any{})
	gob.Register([]any{})
}

// GobFile reads and writes one rule as a gob blob at a fixed path. The
// payload is the same plain form the JSON and YAML stores use, encoded
// in binary for cheap machine-to-machine handoff.
type GobFile struct {
	path string
}

// NewGobFile returns a gob file store for path. Only .gob paths are
// accepted.
func NewGobFile(path string) (*GobFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := checkExt(path, ".gob"); err != nil {
		return nil, err
	}
	return &GobFile{path: filepath.Clean(path)}, nil
}

// Load reads and parses the rule stored at the path.
func (f *GobFile) Load() (*verdict.Rule, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	var m map[string]any
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode rule file: %w", err)
	}
	return verdict.Parse(m)
}

// Store writes the rule's plain form as gob.
func (f *GobFile) Store(r *verdict.Rule) error {
	m, err := r.ToMap()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("encode rule: %w", err)
	}
	return os.WriteFile(f.path, buf.Bytes(), 0o644)
}

var _ Store = (*GobFile)(nil)
