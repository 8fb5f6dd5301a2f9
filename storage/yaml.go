package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rulekit/verdict"
)

// YAMLFile reads and writes one rule as YAML at a fixed path.
type YAMLFile struct {
	path string
}

// NewYAMLFile returns a YAML file store for path. Only .yaml and .yml
// paths are accepted.
func NewYAMLFile(path string) (*YAMLFile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if err := checkExt(path, ".yaml", ".yml"); err != nil {
		return nil, err
	}
	return &YAMLFile{path: filepath.Clean(path)}, nil
}

// Load reads and parses the rule stored at the path.
func (f *YAMLFile) Load() (*verdict.Rule, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode rule file: %w", err)
	}
	untime(m)
	return verdict.Parse(m)
}

// untime undoes the YAML decoder's implicit timestamp resolution. The
// plain form carries created stamps and string values that can look
// like timestamps; they must stay strings.
func untime(m map[string]any) {
	for k, v := range m {
		switch t := v.(type) {
		case time.Time:
			m[k] = t.Format(time.RFC3339Nano)
		case map[string]any:
			untime(t)
		case []any:
			for i, e := range t {
				switch it := e.(type) {
				case time.Time:
					t[i] = it.Format(time.RFC3339Nano)
				case map[string]any:
					untime(it)
				}
			}
		}
	}
}

// Store writes the rule's plain form as YAML.
func (f *YAMLFile) Store(r *verdict.Rule) error {
	m, err := r.ToMap()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode rule: %w", err)
	}
	return os.WriteFile(f.path, data, 0o644)
}

var _ Store = (*YAMLFile)(nil)
