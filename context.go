package verdict

import (
	"fmt"
	"strings"
)

// Context is the runtime mapping of variable names to values supplied
// to evaluation. Values may be any Go type accepted by Val; a condition
// or result that resolves a context entry of an unsupported type fails
// with ErrMalformedValue.
//
// The engine never modifies the context.
type Context map[string]any

// ValidateContext reports every required context parameter of the rule
// that is absent from ctx. It is an upfront, whole-tree check: Evaluate
// itself resolves parameters lazily, so a parameter used only on a
// short-circuited or untaken branch never fails there. Use this when a
// missing parameter should be rejected before evaluation begins.
func ValidateContext(r *Rule, ctx Context) error {
	if r == nil {
		return fmt.Errorf("%w: nil rule", ErrInvalidRule)
	}
	var missing []string
	for _, p := range r.RequiredParams() {
		if _, ok := ctx[p]; !ok {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingContextParameter, strings.Join(missing, ", "))
	}
	return nil
}
