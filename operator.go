package verdict

import (
	"fmt"
	"strings"
)

// Operator is a comparison from the fixed set a leaf condition may use.
type Operator string

const (
	Eq       Operator = "="
	Neq      Operator = "!="
	Gt       Operator = ">"
	Lt       Operator = "<"
	Gte      Operator = ">="
	Lte      Operator = "<="
	In       Operator = "in"
	NotIn    Operator = "not in"
	Contains Operator = "contains"
)

// ParseOperator parses an operator from its string form. The legacy
// spelling "==" is accepted as an alias for "=" so rule files written
// by older tooling still load; serialization always emits "=".
func ParseOperator(s string) (Operator, error) {
	switch Operator(s) {
	case Eq, Neq, Gt, Lt, Gte, Lte, In, NotIn, Contains:
		return Operator(s), nil
	}
	if s == "==" {
		return Eq, nil
	}
	return "", fmt.Errorf("%w: unknown operator %q", ErrUnsupportedOperator, s)
}

// apply compares two resolved operands. Both sides must already have
// variable references substituted; apply never consults a context.
func (op Operator) apply(left, right Value) (bool, error) {
	switch op {
	case Eq:
		return looseEqual(left, right), nil
	case Neq:
		return !looseEqual(left, right), nil
	case Gt, Lt, Gte, Lte:
		c, err := order(left, right)
		if err != nil {
			return false, err
		}
		switch op {
		case Gt:
			return c > 0, nil
		case Lt:
			return c < 0, nil
		case Gte:
			return c >= 0, nil
		default:
			return c <= 0, nil
		}
	case In:
		ok, err := member(right, left)
		if err != nil {
			return false, fmt.Errorf("in: %w", err)
		}
		return ok, nil
	case NotIn:
		ok, err := member(right, left)
		if err != nil {
			return false, fmt.Errorf("not in: %w", err)
		}
		return !ok, nil
	case Contains:
		ok, err := member(left, right)
		if err != nil {
			return false, fmt.Errorf("contains: %w", err)
		}
		return ok, nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnsupportedOperator, op)
}

// looseEqual is the comparison behind = and !=. Unlike Value.Equal it
// unifies int and float, so a rule written with 30 matches a context
// carrying 30.0. Values of unrelated kinds are unequal, never an error.
func looseEqual(left, right Value) bool {
	if lf, lok := numeric(left); lok {
		if rf, rok := numeric(right); rok {
			return lf == rf
		}
		return false
	}
	if left.kind == KindList && right.kind == KindList {
		if len(left.list) != len(right.list) {
			return false
		}
		for i := range left.list {
			if !looseEqual(left.list[i], right.list[i]) {
				return false
			}
		}
		return true
	}
	return left.Equal(right)
}

// numeric extracts a float64 from an int or float value.
func numeric(v Value) (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.n), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// order returns -1, 0 or 1 for the ordering operators. Numbers order
// against numbers and strings against strings; every other pairing is
// not mutually ordered.
func order(left, right Value) (int, error) {
	if lf, lok := numeric(left); lok {
		if rf, rok := numeric(right); rok {
			switch {
			case lf < rf:
				return -1, nil
			case lf > rf:
				return 1, nil
			default:
				return 0, nil
			}
		}
	}
	if left.kind == KindStr && right.kind == KindStr {
		return strings.Compare(left.s, right.s), nil
	}
	return 0, fmt.Errorf("%w: cannot order %s and %s", ErrUnsupportedOperator, left.Kind(), right.Kind())
}

// member reports whether container holds item: list membership by loose
// equality, or substring when both sides are strings.
func member(container, item Value) (bool, error) {
	switch container.kind {
	case KindList:
		for i := range container.list {
			if looseEqual(container.list[i], item) {
				return true, nil
			}
		}
		return false, nil
	case KindStr:
		if item.kind != KindStr {
			return false, fmt.Errorf("%w: string membership requires a string operand, got %s", ErrUnsupportedOperator, item.Kind())
		}
		return strings.Contains(container.s, item.s), nil
	}
	return false, fmt.Errorf("%w: requires a list or string container, got %s", ErrUnsupportedOperator, container.Kind())
}
