// Package verdict represents decision rules as plain data and evaluates
// them against caller-supplied context.
//
// A rule is a tree. At the top is an optional condition; below it a
// "then" outcome, taken when the condition holds, and an optional
// "else" outcome, taken when it does not. An outcome is either a
// result, an ordered set of typed values handed back to the caller, or
// another rule, nested to any depth. Conditions compare a named context
// variable against a typed value and combine with And and Or.
//
// Typical use is as follows:
//
//  1. Build a rule with NewRule, If, Then and Else, or load one with Parse
//  2. Create an engine
//  3. Evaluate the rule against a Context map
//  4. Inspect the returned Decision
//
// Building Rules
//
// Rule values are immutable: If, Then and Else return a modified copy
// and never touch the receiver. Two goroutines can therefore evaluate
// and derive from the same rule without coordination. Conditions and
// results are built the same way, and combining them with And keeps
// both inputs intact.
//
// Rules carry metadata: a format version, a generated id, a creation
// timestamp and, for rules nested through Then or Else, the id of the
// parent rule. Metadata survives a round trip through ToMap and Parse,
// so a rule loaded from storage compares Equal to the rule that was
// saved.
//
// Evaluating
//
// Evaluate walks the tree top down. A rule without a condition matches
// unconditionally. A rule whose condition is false and which has no
// else branch produces a Decision with Matched false and no output.
// And stops at the first false child and Or at the first true one, so
// variables needed only by skipped children may be absent from the
// context. A variable that IS needed and absent fails the evaluation
// with ErrMissingContextParameter; use ValidateContext to check the
// whole tree up front instead.
//
// Result values resolve in the order the result declares its keys.
// Each variable reference looks first at the keys already produced by
// the same result, then at the context. Given the context {"b": 2},
// the result
//
//   {a: 1, copy_of_a: $a, b_from_context: $b}
//
// produces {a: 1, copy_of_a: 1, b_from_context: 2}, because copy_of_a
// finds a locally before it would consult the context.
//
// Plain Form
//
// ToMap renders a rule as nested maps and slices of plain Go values,
// and Parse is its inverse. The storage subpackages encode this form as
// JSON, YAML or gob and persist it to files, bbolt buckets or SQLite
// tables. The same form is what rule editors and other systems are
// expected to produce; see Parse for the structural rules a mapping
// must follow.
package verdict
