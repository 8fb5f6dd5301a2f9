package verdict

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// A Rule ties an optional condition to a then outcome and an optional
// else outcome. Each outcome is either a Result or another Rule, so
// rules nest into decision trees of any depth.
//
// Rules are immutable: If, Then and Else return a modified copy and
// leave the receiver untouched. Keep the returned rule:
//
//	rule := verdict.NewRule("hot").
//		If(verdict.NewCondition("temperature", verdict.Gt, 30)).
//		Then(verdict.NewResult("message", "It is hot!"))
//
// Because a built tree is never mutated, concurrent evaluations of the
// same rule with different contexts are safe without locking.
type Rule struct {
	meta      Metadata
	condition *Condition
	then      Action
	els       Action
}

// Action is the outcome slot of a rule branch. Exactly two types
// implement it: *Result (a terminal outcome) and *Rule (a nested rule).
// The engine switches on the concrete type.
type Action interface {
	isAction()
}

func (*Result) isAction() {}
func (*Rule) isAction()   {}

// NewRule initializes a named rule with fresh metadata. The rule is
// not evaluable until Then has been called.
func NewRule(name string) *Rule {
	m := newMetadata(typeRule)
	m.Name = name
	return &Rule{meta: m}
}

// If returns a copy of r with the condition set. A rule with no
// condition evaluates as always true.
func (r *Rule) If(c *Condition) *Rule {
	n := *r
	n.condition = c
	return &n
}

// Then returns a copy of r with the then outcome set. A nested rule is
// stored as a copy stamped with r's id as its parent.
func (r *Rule) Then(a Action) *Rule {
	n := *r
	n.then = adopt(a, r.meta.ID)
	return &n
}

// Else returns a copy of r with the else outcome set. Without an else,
// a false condition terminates the evaluation with boolean false.
func (r *Rule) Else(a Action) *Rule {
	n := *r
	n.els = adopt(a, r.meta.ID)
	return &n
}

// adopt stamps a nested rule's parent id. Results carry no parent.
func adopt(a Action, parentID string) Action {
	if child, ok := a.(*Rule); ok && child != nil {
		n := *child
		n.meta.ParentID = parentID
		return &n
	}
	return a
}

// Name returns the rule's name.
func (r *Rule) Name() string { return r.meta.Name }

// ID returns the rule's unique id.
func (r *Rule) ID() string { return r.meta.ID }

// Meta returns a copy of the rule's metadata.
func (r *Rule) Meta() Metadata { return r.meta }

// Condition returns the rule's condition, nil when absent.
func (r *Rule) Condition() *Condition { return r.condition }

// ThenAction returns the then outcome, nil when not yet set.
func (r *Rule) ThenAction() Action { return r.then }

// ElseAction returns the else outcome, nil when absent.
func (r *Rule) ElseAction() Action { return r.els }

// RequiredParams returns the sorted set of context keys the rule needs
// transitively: its condition's variables and the variable-tagged
// result entries of every reachable branch.
func (r *Rule) RequiredParams() []string {
	set := map[string]struct{}{}
	r.collectParams(set)
	return sortedKeys(set)
}

func (r *Rule) collectParams(set map[string]struct{}) {
	if r == nil {
		return
	}
	r.condition.collectParams(set)
	actionCollectParams(r.then, set)
	actionCollectParams(r.els, set)
}

func actionCollectParams(a Action, set map[string]struct{}) {
	switch t := a.(type) {
	case *Result:
		t.collectParams(set)
	case *Rule:
		t.collectParams(set)
	}
}

// validate checks that the rule tree is structurally evaluable: a then
// branch everywhere, well-formed conditions and results throughout.
func (r *Rule) validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil rule", ErrInvalidRule)
	}
	if r.then == nil {
		return fmt.Errorf("%w: rule %q has no then branch", ErrInvalidRule, r.meta.Name)
	}
	if err := r.condition.validate(); err != nil {
		return fmt.Errorf("rule %q: %w", r.meta.Name, err)
	}
	if err := actionValidate(r.then); err != nil {
		return fmt.Errorf("rule %q then: %w", r.meta.Name, err)
	}
	if err := actionValidate(r.els); err != nil {
		return fmt.Errorf("rule %q else: %w", r.meta.Name, err)
	}
	return nil
}

func actionValidate(a Action) error {
	switch t := a.(type) {
	case *Result:
		return t.validate()
	case *Rule:
		return t.validate()
	case nil:
		return nil
	}
	return fmt.Errorf("%w: unknown action type %T", ErrInvalidRule, a)
}

// ToMap returns the plain nested-mapping form of the rule, the sole
// integration surface for storage adapters. Absent branches are
// omitted. Parse is the inverse.
func (r *Rule) ToMap() (map[string]any, error) {
	return r.toMap(true)
}

// CompactMap is ToMap without the metadata blocks. The compact form
// parses back into an equivalent rule with freshly minted identity, so
// it suits fixtures and documentation rather than round-tripping.
func (r *Rule) CompactMap() (map[string]any, error) {
	return r.toMap(false)
}

func (r *Rule) toMap(withMeta bool) (map[string]any, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	out := map[string]any{}
	if withMeta {
		out["metadata"] = r.meta.toMap(r.RequiredParams())
	} else if r.meta.Name != "" {
		out["metadata"] = map[string]any{"name": r.meta.Name}
	}
	if r.condition != nil {
		cm, err := r.condition.toMap(withMeta)
		if err != nil {
			return nil, err
		}
		out["if"] = cm
	}
	tm, err := actionToMap(r.then, withMeta)
	if err != nil {
		return nil, err
	}
	out["then"] = tm
	if r.els != nil {
		em, err := actionToMap(r.els, withMeta)
		if err != nil {
			return nil, err
		}
		out["else"] = em
	}
	return out, nil
}

func actionToMap(a Action, withMeta bool) (map[string]any, error) {
	switch t := a.(type) {
	case *Result:
		return t.ToMap()
	case *Rule:
		return t.toMap(withMeta)
	}
	return nil, fmt.Errorf("%w: unknown action type %T", ErrInvalidRule, a)
}

// MarshalJSON renders the rule's plain form as JSON.
func (r *Rule) MarshalJSON() ([]byte, error) {
	m, err := r.ToMap()
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// UnmarshalJSON parses a rule from its JSON plain form.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := Parse(m)
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

// Equal reports structural equality including the identity metadata the
// plain form carries (id, created, parent_id, name, version), so a rule
// equals its parsed serialization.
func (r *Rule) Equal(other *Rule) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.meta.ID != other.meta.ID ||
		r.meta.Created != other.meta.Created ||
		r.meta.Version != other.meta.Version ||
		r.meta.Name != other.meta.Name ||
		r.meta.ParentID != other.meta.ParentID {
		return false
	}
	if !r.condition.Equal(other.condition) {
		return false
	}
	return actionEqual(r.then, other.then) && actionEqual(r.els, other.els)
}

func actionEqual(a, b Action) bool {
	switch t := a.(type) {
	case nil:
		return b == nil
	case *Result:
		o, ok := b.(*Result)
		return ok && t.Equal(o)
	case *Rule:
		o, ok := b.(*Rule)
		return ok && t.Equal(o)
	}
	return false
}

// Walk applies f to the rule and every nested rule, depth-first, then
// branch before else branch. Walking stops at the first error.
func (r *Rule) Walk(f func(r *Rule) error) error {
	if r == nil {
		return nil
	}
	if err := f(r); err != nil {
		return err
	}
	for _, a := range []Action{r.then, r.els} {
		if child, ok := a.(*Rule); ok {
			if err := child.Walk(f); err != nil {
				return err
			}
		}
	}
	return nil
}

// Find returns the rule with the id in the rule or any of its nested
// rules, or nil.
func (r *Rule) Find(id string) *Rule {
	var found *Rule
	_ = r.Walk(func(n *Rule) error {
		if found == nil && n.meta.ID == id {
			found = n
		}
		return nil
	})
	return found
}

// String returns a table of the rule and its nested rules with their
// conditions and outcomes.
func (r *Rule) String() string {
	tw := table.NewWriter()
	tw.SetTitle("\nVERDICT RULES\n")
	tw.AppendHeader(table.Row{"\nRule", "\nCondition", "\nThen", "\nElse", "Required\nParams"})

	maxWidthOfConditionColumn := 40
	rows, maxCondLength := r.rulesToRows(0)
	for _, row := range rows {
		tw.AppendRow(row)
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1},
		{Number: 2, WidthMax: maxWidthOfConditionColumn},
		{Number: 3, WidthMax: 30},
		{Number: 4, WidthMax: 30},
		{Number: 5},
	})

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	// Only add the row separator if the condition is wide enough to wrap.
	if maxCondLength > maxWidthOfConditionColumn {
		style.Options.SeparateRows = true
	}
	tw.SetStyle(style)
	return tw.Render()
}

func (r *Rule) rulesToRows(n int) ([]table.Row, int) {
	rows := []table.Row{}
	indent := strings.Repeat("  ", n)

	cond := r.condition.String()
	row := table.Row{
		fmt.Sprintf("%s%s", indent, r.meta.Name),
		cond,
		actionCell(r.then),
		actionCell(r.els),
		strings.Join(r.RequiredParams(), ", "),
	}
	rows = append(rows, row)
	maxCondLength := len(cond)

	for _, a := range []Action{r.then, r.els} {
		if child, ok := a.(*Rule); ok {
			cr, maxLen := child.rulesToRows(n + 1)
			if maxLen > maxCondLength {
				maxCondLength = maxLen
			}
			rows = append(rows, cr...)
		}
	}
	return rows, maxCondLength
}

func actionCell(a Action) string {
	switch t := a.(type) {
	case *Result:
		return t.String()
	case *Rule:
		return fmt.Sprintf("rule: %s", t.meta.Name)
	}
	return ""
}

// Tree returns a tree representation of the rule hierarchy showing rule
// names, with nested rules labeled by the branch that reaches them.
// Recursion is limited to a maximum depth of 20 levels.
//
// Example output:
//
//	weather
//	├── then: heat warning
//	└── else: humidity check
//	    └── then: dry alert
func (r *Rule) Tree() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(r.meta.Name)
	sb.WriteString("\n")
	r.buildTree(&sb, "", 0)
	return sb.String()
}

// buildTree recursively builds the tree representation with proper
// indentation and tree characters (├──, └──, │).
// depth limits recursion to a maximum of 20 levels.
func (r *Rule) buildTree(sb *strings.Builder, prefix string, depth int) {
	if depth >= 20 {
		return
	}
	type branch struct {
		label string
		rule  *Rule
	}
	branches := []branch{}
	if child, ok := r.then.(*Rule); ok {
		branches = append(branches, branch{"then", child})
	}
	if child, ok := r.els.(*Rule); ok {
		branches = append(branches, branch{"else", child})
	}

	for i, b := range branches {
		isLast := i == len(branches)-1
		var connector, childPrefix string
		if isLast {
			connector = "└── "
			childPrefix = "    "
		} else {
			connector = "├── "
			childPrefix = "│   "
		}

		sb.WriteString(prefix)
		sb.WriteString(connector)
		sb.WriteString(b.label)
		sb.WriteString(": ")
		sb.WriteString(b.rule.meta.Name)
		sb.WriteString("\n")
		b.rule.buildTree(sb, prefix+childPrefix, depth+1)
	}
}
