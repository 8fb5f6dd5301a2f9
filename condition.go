package verdict

import (
	"fmt"
	"sort"
	"strings"
)

// Condition is a boolean expression over context variables: either a
// leaf comparing one variable against a value, or an and/or composite
// over two or more child conditions.
//
// Conditions are immutable. The And and Or combinators return a new
// composite owning the two operands; the operands themselves are
// untouched and may be reused in other conditions.
type Condition struct {
	meta     Metadata
	variable string
	operator Operator
	value    Value
	children []*Condition
}

// NewCondition returns a leaf condition comparing the named context
// variable against the value. The value may be a Value or any raw Go
// value accepted by Val, including Var for comparisons against another
// context variable.
func NewCondition(variable string, op Operator, value any) *Condition {
	return &Condition{
		meta:     newMetadata(typeCondition),
		variable: variable,
		operator: op,
		value:    Val(value),
	}
}

// And returns a composite that is true iff both c and other are true.
// The composite owns exactly the two operands; chaining produces nested
// pairs, never a flattened n-ary node.
func (c *Condition) And(other *Condition) *Condition {
	return &Condition{meta: newMetadata(typeAnd), children: []*Condition{c, other}}
}

// Or returns a composite that is true iff c or other is true.
func (c *Condition) Or(other *Condition) *Condition {
	return &Condition{meta: newMetadata(typeOr), children: []*Condition{c, other}}
}

func (c *Condition) isLeaf() bool { return c.meta.Type == typeCondition }

// RequiredParams returns the sorted set of context keys the condition
// reads: the union of every leaf's variable.
func (c *Condition) RequiredParams() []string {
	set := map[string]struct{}{}
	c.collectParams(set)
	return sortedKeys(set)
}

func (c *Condition) collectParams(set map[string]struct{}) {
	if c == nil {
		return
	}
	if c.isLeaf() {
		if c.variable != "" {
			set[c.variable] = struct{}{}
		}
		return
	}
	for _, child := range c.children {
		child.collectParams(set)
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// validate checks the condition tree structurally, without touching any
// context. A leaf needs a variable, a known operator and a well-formed
// value; a composite needs at least two children.
func (c *Condition) validate() error {
	if c == nil {
		return nil
	}
	switch c.meta.Type {
	case typeCondition:
		if c.variable == "" {
			return fmt.Errorf("%w: condition has no variable", ErrInvalidRule)
		}
		if _, err := ParseOperator(string(c.operator)); err != nil {
			return err
		}
		if err := c.value.check(); err != nil {
			return fmt.Errorf("condition on %q: %w", c.variable, err)
		}
		return nil
	case typeAnd, typeOr:
		if len(c.children) < 2 {
			return fmt.Errorf("%w: composite condition needs at least two children", ErrInvalidRule)
		}
		for _, child := range c.children {
			if child == nil {
				return fmt.Errorf("%w: nil child condition", ErrInvalidRule)
			}
			if err := child.validate(); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: unknown condition type %q", ErrInvalidRule, c.meta.Type)
}

// ToMap returns the plain form: a leaf serializes under a "condition"
// key with its metadata, a composite under "and" or "or" as a sequence
// of recursively converted children.
func (c *Condition) ToMap() (map[string]any, error) {
	return c.toMap(true)
}

func (c *Condition) toMap(withMeta bool) (map[string]any, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	switch c.meta.Type {
	case typeCondition:
		vm, err := c.value.ToMap()
		if err != nil {
			return nil, err
		}
		leaf := map[string]any{
			"variable": c.variable,
			"operator": string(c.operator),
			"value":    vm,
		}
		if withMeta {
			leaf["metadata"] = c.meta.toMap(c.RequiredParams())
		}
		return map[string]any{"condition": leaf}, nil
	default:
		items := make([]any, len(c.children))
		for i, child := range c.children {
			cm, err := child.toMap(withMeta)
			if err != nil {
				return nil, err
			}
			items[i] = cm
		}
		key := "and"
		if c.meta.Type == typeOr {
			key = "or"
		}
		return map[string]any{key: items}, nil
	}
}

// Equal reports structural equality. Leaves compare variable, operator,
// value and the metadata identity the plain form carries; composites
// compare type and children element-wise. Composite metadata is minted
// fresh on every combination and never serialized, so it is excluded.
func (c *Condition) Equal(other *Condition) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.meta.Type != other.meta.Type {
		return false
	}
	if c.isLeaf() {
		return c.variable == other.variable &&
			c.operator == other.operator &&
			c.value.Equal(other.value) &&
			c.meta.ID == other.meta.ID &&
			c.meta.Created == other.meta.Created &&
			c.meta.Version == other.meta.Version
	}
	if len(c.children) != len(other.children) {
		return false
	}
	for i := range c.children {
		if !c.children[i].Equal(other.children[i]) {
			return false
		}
	}
	return true
}

// String renders the condition as an expression, composites
// parenthesized: (temperature > 30 and humidity < 50).
func (c *Condition) String() string {
	if c == nil {
		return ""
	}
	if c.isLeaf() {
		return fmt.Sprintf("%s %s %s", c.variable, c.operator, c.value)
	}
	sep := " and "
	if c.meta.Type == typeOr {
		sep = " or "
	}
	parts := make([]string, len(c.children))
	for i, child := range c.children {
		parts[i] = child.String()
	}
	return "(" + strings.Join(parts, sep) + ")"
}
