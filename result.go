package verdict

import (
	"fmt"
	"strings"
)

// Result is a terminal outcome: an ordered mapping of output keys to
// typed values. Entries tagged as variable references are resolved
// against the evaluation context when the engine materializes the
// result; everything else is returned literally.
//
// Results are immutable. Set and And return new Results; the receiver
// is never modified.
type Result struct {
	meta    Metadata
	entries []resultEntry
}

type resultEntry struct {
	key   string
	value Value
}

// NewResult returns a result holding one entry. The value may be a
// Value or any raw Go value accepted by Val; use Var to emit a context
// variable's value under the key.
func NewResult(key string, value any) *Result {
	return &Result{
		meta:    newMetadata(typeResult),
		entries: []resultEntry{{key: key, value: Val(value)}},
	}
}

// Set returns a copy of r with the entry added. An existing key keeps
// its position and gets the new value; a new key is appended, and
// resolves after every entry declared before it.
func (r *Result) Set(key string, value any) *Result {
	n := &Result{meta: r.meta, entries: mergeEntries(r.entries, resultEntry{key: key, value: Val(value)})}
	return n
}

// And merges two results into a new one. Entries of other overwrite
// same-key entries of r in place (last write wins, position kept);
// new keys are appended in other's declaration order.
func (r *Result) And(other *Result) *Result {
	n := &Result{meta: newMetadata(typeResult), entries: r.entries}
	for _, e := range other.entries {
		n.entries = mergeEntries(n.entries, e)
	}
	return n
}

// mergeEntries returns a fresh slice with e merged in: replacing an
// existing key's value in place, or appended.
func mergeEntries(entries []resultEntry, e resultEntry) []resultEntry {
	out := make([]resultEntry, len(entries), len(entries)+1)
	copy(out, entries)
	for i := range out {
		if out[i].key == e.key {
			out[i].value = e.value
			return out
		}
	}
	return append(out, e)
}

// Len returns the number of entries.
func (r *Result) Len() int { return len(r.entries) }

// Keys returns the output keys in declaration order. The order is the
// resolution order: a variable entry may reference any key earlier in
// this list and will see its resolved value.
func (r *Result) Keys() []string {
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.key
	}
	return keys
}

// Get returns the value stored under the key.
func (r *Result) Get(key string) (Value, bool) {
	for _, e := range r.entries {
		if e.key == key {
			return e.value, true
		}
	}
	return Value{}, false
}

// RequiredParams returns the sorted set of context keys the result may
// read: the names of its variable-tagged entries. A same-result key
// declared earlier shadows the context at resolution time, but the
// name still counts as required.
func (r *Result) RequiredParams() []string {
	set := map[string]struct{}{}
	r.collectParams(set)
	return sortedKeys(set)
}

func (r *Result) collectParams(set map[string]struct{}) {
	if r == nil {
		return
	}
	for _, e := range r.entries {
		if e.value.kind == KindVariable {
			set[e.value.s] = struct{}{}
		}
	}
}

func (r *Result) validate() error {
	if r == nil {
		return nil
	}
	if len(r.entries) == 0 {
		return fmt.Errorf("%w: result has no entries", ErrInvalidRule)
	}
	for _, e := range r.entries {
		if e.key == "" {
			return fmt.Errorf("%w: result entry has no key", ErrInvalidRule)
		}
		if err := e.value.check(); err != nil {
			return fmt.Errorf("result entry %q: %w", e.key, err)
		}
	}
	return nil
}

// ToMap returns the plain form {"result": {key: typed value, ...}}.
// The plain form is an unordered mapping; parsing normalizes entries
// to lexicographic key order.
func (r *Result) ToMap() (map[string]any, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(r.entries))
	for _, e := range r.entries {
		vm, err := e.value.ToMap()
		if err != nil {
			return nil, err
		}
		out[e.key] = vm
	}
	return map[string]any{"result": out}, nil
}

// Equal reports mapping equality: the same keys holding equal values,
// regardless of declaration order. Metadata is never serialized for
// results and is excluded.
func (r *Result) Equal(other *Result) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.entries) != len(other.entries) {
		return false
	}
	for _, e := range r.entries {
		ov, ok := other.Get(e.key)
		if !ok || !e.value.Equal(ov) {
			return false
		}
	}
	return true
}

// String renders the result entries in declaration order.
func (r *Result) String() string {
	if r == nil {
		return ""
	}
	parts := make([]string, len(r.entries))
	for i, e := range r.entries {
		parts[i] = fmt.Sprintf("%s: %s", e.key, e.value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
