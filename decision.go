package verdict

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Decision is the terminal outcome of evaluating a rule tree.
type Decision struct {
	// Whether evaluation reached a Result outcome. False means a false
	// condition fell through with no else branch; Output is nil then.
	Matched bool

	// The materialized output mapping, with variable entries resolved.
	// Nil exactly when Matched is false.
	Output map[string]any

	// Identity of the rule whose branch produced the terminal outcome.
	// For nested rules this is the innermost rule evaluated, not
	// necessarily the root handed to Evaluate.
	RuleID   string
	RuleName string

	// The number of leaf conditions evaluated, across all composites
	// and nested rules. Short-circuited children are not counted.
	ConditionsEvaluated int

	// Step-by-step evaluation trace; only available if the engine was
	// created with the CollectDiagnostics option.
	Trace *Trace
}

// String produces a one-row summary table of the decision.
func (d *Decision) String() string {
	tw := table.NewWriter()
	tw.SetTitle("\nVERDICT DECISION\n")
	tw.AppendHeader(table.Row{"\nRule", "\nMatched", "\nOutput", "Conditions\nEvaluated", "Trace\nAvailable?"})

	tw.AppendRow(table.Row{
		d.RuleName,
		matchString(d.Matched),
		fmt.Sprintf("%v", d.Output),
		fmt.Sprintf("%d", d.ConditionsEvaluated),
		trueFalse(fmt.Sprintf("%t", d.Trace != nil)),
	})

	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw.Render()
}

func matchString(b bool) string {
	switch b {
	case true:
		return "MATCH"
	default:
		return "NO MATCH"
	}
}

func trueFalse(t string) string {
	switch t {
	case "false":
		return ""
	case "true":
		return "yes"
	default:
		return t
	}
}
