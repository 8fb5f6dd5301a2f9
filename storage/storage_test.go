package storage_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rulekit/verdict"
	"github.com/rulekit/verdict/storage"
)

// sample builds a rule with every value shape the codecs must carry:
// ints, floats, strings, bools, lists, variables and a nested rule.
func sample(name string) *verdict.Rule {
	return verdict.NewRule(name).
		If(verdict.NewCondition("number", verdict.In, []int{1, 2, 3}).
			And(verdict.NewCondition("threshold", verdict.Gte, 1.5))).
		Then(verdict.NewRule("inner").
			If(verdict.NewCondition("flag", verdict.Eq, true)).
			Then(verdict.NewResult("status", "on").Set("echo", verdict.Var("number")))).
		Else(verdict.NewResult("status", "skipped"))
}

func TestJSONFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rule.json")
	f, err := storage.NewJSONFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orig := sample("stored")
	if err := f.Store(orig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := f.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !orig.Equal(loaded) {
		t.Error("loaded rule differs from the stored one")
	}
	if loaded.ID() != orig.ID() || loaded.Meta().Created != orig.Meta().Created {
		t.Error("identity not preserved across the file")
	}
}

func TestJSONFileList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	f, err := storage.NewJSONFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rules := []*verdict.Rule{sample("first"), sample("second")}
	if err := f.StoreList(rules); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := f.LoadList()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d rules, want 2", len(loaded))
	}
	for i := range rules {
		if !rules[i].Equal(loaded[i]) {
			t.Errorf("rule %d differs after the round trip", i)
		}
	}
}

func TestYAMLFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rule.yaml")
	f, err := storage.NewYAMLFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orig := sample("stored")
	if err := f.Store(orig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := f.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !orig.Equal(loaded) {
		t.Error("loaded rule differs from the stored one")
	}
}

func TestGobFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rule.gob")
	f, err := storage.NewGobFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orig := sample("stored")
	if err := f.Store(orig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := f.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !orig.Equal(loaded) {
		t.Error("loaded rule differs from the stored one")
	}
}

func TestFileExtensionChecked(t *testing.T) {
	cases := []struct {
		name string
		open func(string) error
		path string
	}{
		{"json", func(p string) error { _, err := storage.NewJSONFile(p); return err }, "rule.yaml"},
		{"yaml", func(p string) error { _, err := storage.NewYAMLFile(p); return err }, "rule.json"},
		{"gob", func(p string) error { _, err := storage.NewGobFile(p); return err }, "rule.txt"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := c.open(c.path); !errors.Is(err, verdict.ErrInvalidRule) {
				t.Errorf("err = %v, want ErrInvalidRule", err)
			}
		})
	}
}

func TestFileEmptyPath(t *testing.T) {
	if _, err := storage.NewJSONFile("   "); err == nil {
		t.Error("expected an error for a blank path")
	}
}

func TestFileLoadMissing(t *testing.T) {
	f, err := storage.NewJSONFile(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.Load(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want a not-exist error", err)
	}
}

// Stored JSON ends in a newline so files behave under cat and diff.
func TestJSONFileTrailingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rule.json")
	f, err := storage.NewJSONFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Store(sample("stored")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(b) == 0 || b[len(b)-1] != '\n' {
		t.Error("stored file does not end in a newline")
	}
}

func TestSortRules(t *testing.T) {
	b := sample("beta")
	a1 := sample("alpha")
	a2 := sample("alpha")
	rules := []*verdict.Rule{b, a2, a1}

	storage.SortRules(rules)

	if rules[0].Name() != "alpha" || rules[1].Name() != "alpha" || rules[2].Name() != "beta" {
		t.Fatalf("order by name broken: %v, %v, %v", rules[0].Name(), rules[1].Name(), rules[2].Name())
	}
	if rules[0].ID() > rules[1].ID() {
		t.Error("equal names must order by id")
	}
}
