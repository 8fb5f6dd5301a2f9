package verdict_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rulekit/verdict"
)

func TestResultKeysKeepDeclarationOrder(t *testing.T) {
	r := verdict.NewResult("b", 1).Set("a", 2).Set("c", 3)
	want := []string{"b", "a", "c"}
	if got := r.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestResultSetExistingKeyKeepsPosition(t *testing.T) {
	r := verdict.NewResult("a", 1).Set("b", 2).Set("a", 10)
	if got := r.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys() = %v, want [a b]", got)
	}
	v, ok := r.Get("a")
	if !ok || !v.Equal(verdict.Int(10)) {
		t.Errorf("Get(a) = %s, want 10", v)
	}
}

func TestResultSetLeavesReceiverIntact(t *testing.T) {
	base := verdict.NewResult("a", 1)
	_ = base.Set("b", 2)
	if base.Len() != 1 {
		t.Errorf("Set modified the receiver: %v", base.Keys())
	}
}

func TestResultAndRightWins(t *testing.T) {
	left := verdict.NewResult("a", 1).Set("b", 2)
	right := verdict.NewResult("b", 20).Set("c", 30)
	merged := left.And(right)

	if got := merged.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Keys() = %v, want [a b c]", got)
	}
	v, _ := merged.Get("b")
	if !v.Equal(verdict.Int(20)) {
		t.Errorf("Get(b) = %s, want 20", v)
	}

	// Both operands survive the merge.
	if left.Len() != 2 || right.Len() != 2 {
		t.Error("And modified an operand")
	}
	v, _ = left.Get("b")
	if !v.Equal(verdict.Int(2)) {
		t.Errorf("left b = %s, want 2", v)
	}
}

func TestResultRequiredParams(t *testing.T) {
	r := verdict.NewResult("greeting", "hello").
		Set("who", verdict.Var("user")).
		Set("again", verdict.Var("user")).
		Set("temp", verdict.Var("temperature"))
	want := []string{"temperature", "user"}
	if got := r.RequiredParams(); !reflect.DeepEqual(got, want) {
		t.Errorf("RequiredParams() = %v, want %v", got, want)
	}
}

func TestResultEqualIgnoresOrder(t *testing.T) {
	a := verdict.NewResult("x", 1).Set("y", "two")
	b := verdict.NewResult("y", "two").Set("x", 1)
	if !a.Equal(b) {
		t.Error("expected results with the same mapping to be equal")
	}
	c := verdict.NewResult("x", 1).Set("y", "three")
	if a.Equal(c) {
		t.Error("expected differing values to break equality")
	}
}

func TestResultToMap(t *testing.T) {
	r := verdict.NewResult("message", "hi").Set("count", 2)
	m, err := r.ToMap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inner, ok := m["result"].(map[string]any)
	if !ok || len(inner) != 2 {
		t.Fatalf("unexpected plain form: %v", m)
	}
	count, ok := inner["count"].(map[string]any)
	if !ok || count["type"] != "int" || count["value"] != int64(2) {
		t.Errorf("unexpected count entry: %v", inner["count"])
	}
}

func TestResultEmptyKeyRejected(t *testing.T) {
	r := verdict.NewResult("", 1)
	if _, err := r.ToMap(); !errors.Is(err, verdict.ErrInvalidRule) {
		t.Errorf("expected ErrInvalidRule, got %v", err)
	}
}

func TestResultString(t *testing.T) {
	r := verdict.NewResult("message", "hot").Set("limit", verdict.Var("max"))
	want := `{message: "hot", limit: $max}`
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
