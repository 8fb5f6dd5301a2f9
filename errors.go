package verdict

import "errors"

// Sentinel errors returned by builders, the parser and the engine.
// Callers should test for them with errors.Is; most errors returned by
// this package wrap one of these with additional detail.
var (
	// ErrMalformedValue reports a typed value whose tag and payload
	// disagree, or a raw Go value for which no tag exists.
	ErrMalformedValue = errors.New("malformed value")

	// ErrMalformedRule reports a plain-map rule representation that is
	// missing required keys or mixes keys that cannot appear together.
	ErrMalformedRule = errors.New("malformed rule")

	// ErrMissingContextParameter reports a variable reference that has
	// no entry in the evaluation context.
	ErrMissingContextParameter = errors.New("missing context parameter")

	// ErrUnsupportedOperator reports an unknown operator, or an operator
	// applied to operand types it cannot compare.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrInvalidRule reports a structural violation detected outside
	// parsing, such as evaluating a rule that has no then branch, or
	// handing a storage adapter a file in the wrong format.
	ErrInvalidRule = errors.New("invalid rule")
)
