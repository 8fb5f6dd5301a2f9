package verdict_test

import (
	"errors"
	"testing"

	"github.com/rulekit/verdict"
)

func TestConditionString(t *testing.T) {
	hot := verdict.NewCondition("temperature", verdict.Gt, 30)
	if got := hot.String(); got != "temperature > 30" {
		t.Errorf("String() = %q", got)
	}
	dry := verdict.NewCondition("humidity", verdict.Lt, 50)
	both := hot.And(dry.Or(verdict.NewCondition("name", verdict.Eq, "x")))
	want := `(temperature > 30 and (humidity < 50 or name = "x"))`
	if got := both.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestConditionRequiredParams(t *testing.T) {
	c := verdict.NewCondition("b", verdict.Gt, 1).
		And(verdict.NewCondition("a", verdict.Lt, 2).
			Or(verdict.NewCondition("b", verdict.Eq, 3)))
	got := c.RequiredParams()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("RequiredParams() = %v, want [a b]", got)
	}

	// A variable reference on the value side is resolved at evaluation
	// time but not advertised as required.
	ref := verdict.NewCondition("threshold", verdict.Gt, verdict.Var("limit"))
	got = ref.RequiredParams()
	if len(got) != 1 || got[0] != "threshold" {
		t.Errorf("RequiredParams() = %v, want [threshold]", got)
	}
}

func TestConditionToMap(t *testing.T) {
	leaf := verdict.NewCondition("temperature", verdict.Gt, 30)
	m, err := leaf.ToMap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inner, ok := m["condition"].(map[string]any)
	if !ok {
		t.Fatalf("expected condition key, got %v", m)
	}
	if inner["variable"] != "temperature" || inner["operator"] != ">" {
		t.Errorf("unexpected leaf: %v", inner)
	}
	if _, ok := inner["metadata"].(map[string]any); !ok {
		t.Error("expected leaf metadata")
	}

	composite := leaf.And(verdict.NewCondition("humidity", verdict.Lt, 50))
	m, err = composite.ToMap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	children, ok := m["and"].([]any)
	if !ok || len(children) != 2 {
		t.Fatalf("expected two and children, got %v", m)
	}
	if _, ok := m["metadata"]; ok {
		t.Error("composites must not serialize metadata")
	}
}

func TestConditionEqual(t *testing.T) {
	c := verdict.NewCondition("temperature", verdict.Gt, 30)
	if !c.Equal(c) {
		t.Error("expected a condition to equal itself")
	}

	// Leaves carry identity, so an independently built twin is a
	// different condition even with the same expression.
	twin := verdict.NewCondition("temperature", verdict.Gt, 30)
	if c.Equal(twin) {
		t.Error("expected independently built leaves to differ")
	}

	dry := verdict.NewCondition("humidity", verdict.Lt, 50)
	if !c.And(dry).Equal(c.And(dry)) {
		t.Error("expected composites over the same leaves to be equal")
	}
	if c.And(dry).Equal(c.Or(dry)) {
		t.Error("expected and to differ from or")
	}
}

func TestConditionErrors(t *testing.T) {
	if _, err := verdict.NewCondition("", verdict.Eq, 1).ToMap(); !errors.Is(err, verdict.ErrInvalidRule) {
		t.Errorf("expected ErrInvalidRule, got %v", err)
	}
	if _, err := verdict.NewCondition("x", verdict.Eq, struct{}{}).ToMap(); !errors.Is(err, verdict.ErrMalformedValue) {
		t.Errorf("expected ErrMalformedValue, got %v", err)
	}
	if _, err := verdict.NewCondition("x", verdict.Operator("like"), 1).ToMap(); !errors.Is(err, verdict.ErrUnsupportedOperator) {
		t.Errorf("expected ErrUnsupportedOperator, got %v", err)
	}
}

func TestConditionCombineLeavesOperandsIntact(t *testing.T) {
	a := verdict.NewCondition("a", verdict.Eq, 1)
	b := verdict.NewCondition("b", verdict.Eq, 2)
	_ = a.And(b)

	m, err := a.ToMap()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m["condition"]; !ok {
		t.Errorf("combining turned the leaf into %v", m)
	}
}
