package verdict

import (
	"fmt"
)

// Engine evaluates rule trees against contexts. It is state-free: no
// rule is registered with it, nothing is cached, and the same engine
// may evaluate any number of rules from any number of goroutines.
type Engine struct {
	opts EngineOptions
}

// Initialize a new engine.
func NewEngine(opts ...EngineOption) *Engine {
	engine := Engine{}
	applyEngineOptions(&engine.opts, opts...)
	return &engine
}

// See the functional definitions below for the meaning.
type EngineOptions struct {
	CollectDiagnostics bool
}

type EngineOption func(f *EngineOptions)

// Given an array of EngineOption functions, apply their effect
// on the EngineOptions struct.
func applyEngineOptions(o *EngineOptions, opts ...EngineOption) {
	for _, opt := range opts {
		opt(o)
	}
}

// Collect step-by-step diagnostic information during evaluation and
// attach it to the decision as a Trace.
// Default: off
func CollectDiagnostics(b bool) EngineOption {
	return func(f *EngineOptions) {
		f.CollectDiagnostics = b
	}
}

// evalState accumulates per-evaluation bookkeeping across the
// recursion.
type evalState struct {
	trace      *Trace
	conditions int
}

// Evaluate runs the rule against the context and returns the terminal
// decision. Evaluation is recursive and state-free: a rule's condition
// picks the then or else branch, a Result branch is materialized, a
// Rule branch recurses. Neither the rule nor the context is modified.
//
// A rule with no condition is treated as true. A false condition with
// no else branch terminates with Matched false and no output. All
// resolution failures abort the evaluation; there is no partial result.
func (e *Engine) Evaluate(r *Rule, ctx Context) (*Decision, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	st := &evalState{}
	if e.opts.CollectDiagnostics {
		st.trace = &Trace{}
	}

	d, err := e.eval(r, ctx, st)
	if err != nil {
		return nil, err
	}
	d.ConditionsEvaluated = st.conditions
	d.Trace = st.trace
	return d, nil
}

// Recursively evaluate the rule and its nested rules.
func (e *Engine) eval(r *Rule, ctx Context, st *evalState) (*Decision, error) {
	matched := true
	if r.condition != nil {
		ok, err := e.evalCondition(r.condition, ctx, st)
		if err != nil {
			return nil, err
		}
		matched = ok
	} else {
		st.trace.add(stepCondition, "(none)", "true", SourceLiteral, "rule has no condition")
	}

	branch := r.then
	label := "then"
	if !matched {
		branch = r.els
		label = "else"
		if branch == nil {
			st.trace.add(stepDefault, "no else branch", "false", SourceLiteral, "")
			return &Decision{
				Matched:  false,
				RuleID:   r.meta.ID,
				RuleName: r.meta.Name,
			}, nil
		}
	}

	switch t := branch.(type) {
	case *Result:
		st.trace.add(stepBranch, label, "result", SourceLiteral, "")
		out, err := e.materialize(t, ctx, st)
		if err != nil {
			return nil, err
		}
		return &Decision{
			Matched:  true,
			Output:   out,
			RuleID:   r.meta.ID,
			RuleName: r.meta.Name,
		}, nil
	case *Rule:
		st.trace.add(stepBranch, label, fmt.Sprintf("rule %q", t.meta.Name), SourceLiteral, "")
		return e.eval(t, ctx, st)
	}
	return nil, fmt.Errorf("%w: unknown action type %T", ErrInvalidRule, branch)
}

// evalCondition evaluates a condition tree. Composites check children
// in stored order and stop at the first decisive child, so later
// children are neither evaluated nor able to fail.
func (e *Engine) evalCondition(c *Condition, ctx Context, st *evalState) (bool, error) {
	switch c.meta.Type {
	case typeCondition:
		return e.evalLeaf(c, ctx, st)
	case typeAnd:
		for i, child := range c.children {
			ok, err := e.evalCondition(child, ctx, st)
			if err != nil {
				return false, err
			}
			if !ok {
				st.trace.add(stepAnd, "and", "false", SourceEvaluated, shortCircuit(i, len(c.children)))
				return false, nil
			}
		}
		st.trace.add(stepAnd, "and", "true", SourceEvaluated, "")
		return true, nil
	case typeOr:
		for i, child := range c.children {
			ok, err := e.evalCondition(child, ctx, st)
			if err != nil {
				return false, err
			}
			if ok {
				st.trace.add(stepOr, "or", "true", SourceEvaluated, shortCircuit(i, len(c.children)))
				return true, nil
			}
		}
		st.trace.add(stepOr, "or", "false", SourceEvaluated, "")
		return false, nil
	}
	return false, fmt.Errorf("%w: unknown condition type %q", ErrInvalidRule, c.meta.Type)
}

func shortCircuit(decided, total int) string {
	if decided == total-1 {
		return ""
	}
	return fmt.Sprintf("short-circuit after child %d of %d", decided+1, total)
}

// evalLeaf resolves both operands of a leaf and applies its operator.
// The left side is the variable looked up in the context; the right
// side is the stored value, with variable references re-looked-up.
func (e *Engine) evalLeaf(c *Condition, ctx Context, st *evalState) (bool, error) {
	st.conditions++

	raw, ok := ctx[c.variable]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrMissingContextParameter, c.variable)
	}
	left := Val(raw)
	if err := left.check(); err != nil {
		return false, fmt.Errorf("context parameter %q: %w", c.variable, err)
	}

	right, err := resolveValue(c.value, func(name string) (any, bool) {
		v, ok := ctx[name]
		return v, ok
	})
	if err != nil {
		return false, err
	}

	verdict, err := c.operator.apply(left, right)
	if err != nil {
		return false, fmt.Errorf("condition %q: %w", c.String(), err)
	}
	st.trace.add(stepCondition, c.String(), fmt.Sprintf("%t", verdict), SourceEvaluated,
		fmt.Sprintf("%s %s %s", left, c.operator, right))
	return verdict, nil
}

// resolveValue substitutes variable references using the lookup,
// recursing into lists. Values without references pass through
// untouched.
func resolveValue(v Value, look func(name string) (any, bool)) (Value, error) {
	switch v.kind {
	case KindVariable:
		raw, ok := look(v.s)
		if !ok {
			return Value{}, fmt.Errorf("%w: %q", ErrMissingContextParameter, v.s)
		}
		rv := Val(raw)
		if err := rv.check(); err != nil {
			return Value{}, fmt.Errorf("context parameter %q: %w", v.s, err)
		}
		return rv, nil
	case KindList:
		needsResolve := false
		for i := range v.list {
			if v.list[i].kind == KindVariable || v.list[i].kind == KindList {
				needsResolve = true
				break
			}
		}
		if !needsResolve {
			return v, nil
		}
		items := make([]Value, len(v.list))
		for i := range v.list {
			rv, err := resolveValue(v.list[i], look)
			if err != nil {
				return Value{}, err
			}
			items[i] = rv
		}
		return Value{kind: KindList, list: items}, nil
	default:
		return v, nil
	}
}

// materialize produces the plain output mapping of a result. Entries
// resolve in declaration order against a local scope of the keys
// already materialized from this same result, falling back to the
// context, so a later entry may reference an earlier entry's resolved
// value under its output key.
func (e *Engine) materialize(res *Result, ctx Context, st *evalState) (map[string]any, error) {
	local := make(map[string]any, len(res.entries))
	out := make(map[string]any, len(res.entries))

	for _, entry := range res.entries {
		src := SourceLiteral
		if entry.value.kind == KindVariable {
			if _, ok := local[entry.value.s]; ok {
				src = SourceLocal
			} else {
				src = SourceContext
			}
		}

		v, err := resolveValue(entry.value, func(name string) (any, bool) {
			if lv, ok := local[name]; ok {
				return lv, true
			}
			cv, ok := ctx[name]
			return cv, ok
		})
		if err != nil {
			return nil, fmt.Errorf("result entry %q: %w", entry.key, err)
		}

		native := v.Native()
		local[entry.key] = native
		out[entry.key] = native
		st.trace.add(stepResult, fmt.Sprintf("%s = %s", entry.key, entry.value), v.String(), src, "")
	}
	return out, nil
}
