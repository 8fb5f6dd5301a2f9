package bolt_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rulekit/verdict"
	"github.com/rulekit/verdict/storage"
	"github.com/rulekit/verdict/storage/bolt"
)

func sample(name string) *verdict.Rule {
	return verdict.NewRule(name).
		If(verdict.NewCondition("temperature", verdict.Gt, verdict.Var("limit"))).
		Then(verdict.NewResult("message", "It is hot!")).
		Else(verdict.NewRule("humidity check").
			If(verdict.NewCondition("humidity", verdict.Lt, 50)).
			Then(verdict.NewResult("message", "It is dry!")))
}

func open(t *testing.T, path string) *bolt.Store {
	t.Helper()
	s, err := bolt.Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := open(t, filepath.Join(t.TempDir(), "rules.db"))

	orig := sample("stored")
	if err := s.Put(ctx, orig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Get(ctx, orig.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !orig.Equal(got) {
		t.Error("fetched rule differs from the stored one")
	}
}

func TestBoltNotFound(t *testing.T) {
	ctx := context.Background()
	s := open(t, filepath.Join(t.TempDir(), "rules.db"))

	if _, err := s.Get(ctx, "absent"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	// Deleting an absent id is fine.
	if err := s.Delete(ctx, "absent"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBoltDelete(t *testing.T) {
	ctx := context.Background()
	s := open(t, filepath.Join(t.TempDir(), "rules.db"))

	r := sample("stored")
	if err := s.Put(ctx, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Delete(ctx, r.ID()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get(ctx, r.ID()); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestBoltList(t *testing.T) {
	ctx := context.Background()
	s := open(t, filepath.Join(t.TempDir(), "rules.db"))

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := s.Put(ctx, sample(name)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	rules, err := s.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if len(rules) != len(want) {
		t.Fatalf("listed %d rules, want %d", len(rules), len(want))
	}
	for i := range want {
		if rules[i].Name() != want[i] {
			t.Errorf("rules[%d] = %q, want %q", i, rules[i].Name(), want[i])
		}
	}
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rules.db")

	orig := sample("stored")
	s, err := bolt.Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Put(ctx, orig); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s = open(t, path)
	got, err := s.Get(ctx, orig.ID())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !orig.Equal(got) {
		t.Error("rule did not survive the reopen")
	}
}

func TestBoltCanceledContext(t *testing.T) {
	s := open(t, filepath.Join(t.TempDir(), "rules.db"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Put(ctx, sample("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if _, err := s.List(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBoltBadPath(t *testing.T) {
	if _, err := bolt.Open(""); err == nil {
		t.Error("expected an error for a blank path")
	}
}
