package verdict

import (
	"fmt"
	"sort"
)

// Parse builds a Rule from its plain nested-mapping form, the shape
// produced by Rule.ToMap and by the storage codecs. Identity found in
// metadata blocks (id, created, version, name, parent_id) is preserved
// so a stored rule parses back equal to the original; absent metadata
// is minted fresh. The required-context-parameters list on the wire is
// ignored and derived from the tree instead.
//
// Structural problems report ErrMalformedRule: a missing then branch,
// "and" and "or" sharing a level, a leaf condition missing its
// variable, operator or value, or an outcome that is neither a result
// nor a rule. Unknown operators report ErrUnsupportedOperator and bad
// value blocks ErrMalformedValue.
func Parse(m map[string]any) (*Rule, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: rule is not a mapping", ErrMalformedRule)
	}
	r := &Rule{meta: newMetadata(typeRule)}
	if err := applyMeta(&r.meta, m, typeRule); err != nil {
		return nil, err
	}
	if raw, ok := m["if"]; ok && raw != nil {
		cm, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: if must be a mapping, got %T", ErrMalformedRule, raw)
		}
		cond, err := parseCondition(cm)
		if err != nil {
			return nil, err
		}
		r.condition = cond
	}
	raw, ok := m["then"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: rule %q has no then branch", ErrMalformedRule, r.meta.Name)
	}
	then, err := parseAction(raw)
	if err != nil {
		return nil, fmt.Errorf("then: %w", err)
	}
	r.then = then
	if raw, ok := m["else"]; ok && raw != nil {
		els, err := parseAction(raw)
		if err != nil {
			return nil, fmt.Errorf("else: %w", err)
		}
		r.els = els
	}
	return r, nil
}

// applyMeta copies the identity fields of a metadata block, when one is
// present, over the freshly minted defaults.
func applyMeta(meta *Metadata, m map[string]any, componentType string) error {
	raw, ok := m["metadata"]
	if !ok || raw == nil {
		return nil
	}
	md, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: metadata must be a mapping, got %T", ErrMalformedRule, raw)
	}
	if s, ok := md["version"].(string); ok && s != "" {
		meta.Version = s
	}
	if s, ok := md["id"].(string); ok && s != "" {
		meta.ID = s
	}
	if s, ok := md["created"].(string); ok && s != "" {
		meta.Created = s
	}
	if componentType == typeRule {
		if s, ok := md["name"].(string); ok {
			meta.Name = s
		}
		if s, ok := md["parent_id"].(string); ok {
			meta.ParentID = s
		}
	}
	meta.Type = componentType
	return nil
}

func parseCondition(m map[string]any) (*Condition, error) {
	rawAnd, hasAnd := m["and"]
	rawOr, hasOr := m["or"]
	switch {
	case hasAnd && hasOr:
		return nil, fmt.Errorf("%w: condition mixes and with or at the same level", ErrMalformedRule)
	case hasAnd:
		return parseComposite(typeAnd, "and", rawAnd)
	case hasOr:
		return parseComposite(typeOr, "or", rawOr)
	}
	raw, ok := m["condition"]
	if !ok {
		return nil, fmt.Errorf(`%w: condition needs a "condition", "and" or "or" key`, ErrMalformedRule)
	}
	leaf, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: condition must be a mapping, got %T", ErrMalformedRule, raw)
	}
	return parseLeaf(leaf)
}

func parseComposite(componentType, key string, raw any) (*Condition, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a sequence of conditions, got %T", ErrMalformedRule, key, raw)
	}
	if len(items) < 2 {
		return nil, fmt.Errorf("%w: %s expects at least two conditions, got %d", ErrMalformedRule, key, len(items))
	}
	children := make([]*Condition, len(items))
	for i, item := range items {
		cm, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s child %d must be a mapping, got %T", ErrMalformedRule, key, i, item)
		}
		child, err := parseCondition(cm)
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return &Condition{meta: newMetadata(componentType), children: children}, nil
}

func parseLeaf(m map[string]any) (*Condition, error) {
	c := &Condition{meta: newMetadata(typeCondition)}
	if err := applyMeta(&c.meta, m, typeCondition); err != nil {
		return nil, err
	}
	rawVar, ok := m["variable"]
	if !ok || rawVar == nil {
		return nil, fmt.Errorf("%w: condition is missing a variable", ErrMalformedRule)
	}
	name, ok := rawVar.(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("%w: condition variable must be a non-empty string, got %v", ErrMalformedRule, rawVar)
	}
	c.variable = name
	rawOp, ok := m["operator"]
	if !ok || rawOp == nil {
		return nil, fmt.Errorf("%w: condition %q is missing an operator", ErrMalformedRule, name)
	}
	opStr, ok := rawOp.(string)
	if !ok {
		return nil, fmt.Errorf("%w: operator must be a string, got %T", ErrMalformedRule, rawOp)
	}
	op, err := ParseOperator(opStr)
	if err != nil {
		return nil, err
	}
	c.operator = op
	rawVal, ok := m["value"]
	if !ok || rawVal == nil {
		return nil, fmt.Errorf("%w: condition %q is missing a value", ErrMalformedRule, name)
	}
	vm, ok := rawVal.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: value must be a type/value mapping, got %T", ErrMalformedValue, rawVal)
	}
	val, err := valueFromMap(vm)
	if err != nil {
		return nil, err
	}
	c.value = val
	return c, nil
}

// parseAction dispatches an outcome mapping on shape: a "result" key
// makes it a Result, rule keys make it a nested Rule.
func parseAction(raw any) (Action, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: outcome must be a mapping, got %T", ErrMalformedRule, raw)
	}
	if rr, ok := m["result"]; ok {
		return parseResult(rr)
	}
	if hasAny(m, "then", "if", "metadata") {
		return Parse(m)
	}
	return nil, fmt.Errorf("%w: outcome is neither a result nor a rule", ErrMalformedRule)
}

func hasAny(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func parseResult(raw any) (*Result, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: result must be a mapping, got %T", ErrMalformedRule, raw)
	}
	if len(m) == 0 {
		return nil, fmt.Errorf("%w: result has no entries", ErrMalformedRule)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Decoded mappings carry no order, so parsed results resolve in
	// lexicographic key order.
	sort.Strings(keys)
	res := &Result{meta: newMetadata(typeResult), entries: make([]resultEntry, 0, len(m))}
	for _, k := range keys {
		vm, ok := m[k].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: result entry %q must be a type/value mapping, got %T", ErrMalformedValue, k, m[k])
		}
		v, err := valueFromMap(vm)
		if err != nil {
			return nil, fmt.Errorf("result entry %q: %w", k, err)
		}
		res.entries = append(res.entries, resultEntry{key: k, value: v})
	}
	return res, nil
}
