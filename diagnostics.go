package verdict

import (
	"fmt"
	"strings"

	box "github.com/Delta456/box-cli-maker/v2"
	"github.com/alexeyco/simpletable"
)

// ValueSource identifies where a traced value came from.
type ValueSource int

const (
	// SourceLiteral marks a value stored in the rule itself.
	SourceLiteral ValueSource = iota
	// SourceContext marks a value resolved from the evaluation context.
	SourceContext
	// SourceLocal marks a value resolved from an earlier key of the
	// same result.
	SourceLocal
	// SourceEvaluated marks a value computed by the engine.
	SourceEvaluated
)

func (s ValueSource) String() string {
	switch s {
	case SourceLiteral:
		return "literal"
	case SourceContext:
		return "context"
	case SourceLocal:
		return "local"
	case SourceEvaluated:
		return "evaluated"
	default:
		return fmt.Sprintf("ValueSource(%d)", int(s))
	}
}

// Step kinds recorded in a trace.
const (
	stepCondition = "condition"
	stepAnd       = "and"
	stepOr        = "or"
	stepBranch    = "branch"
	stepResult    = "result"
	stepDefault   = "default"
)

// TraceStep is one recorded step of an evaluation.
type TraceStep struct {
	// Op is the step kind: condition, and, or, branch, result, default.
	Op string
	// Expr is the expression or entry the step concerns.
	Expr string
	// Value is the step's outcome rendering.
	Value string
	// Source is where the value came from.
	Source ValueSource
	// Note carries extra detail, such as resolved operands or a
	// short-circuit marker.
	Note string
}

// Trace is the ordered list of steps one evaluation took. Steps appear
// in evaluation order; children skipped by short-circuiting composites
// never appear.
type Trace struct {
	Steps []TraceStep
}

func (t *Trace) add(op, expr, value string, src ValueSource, note string) {
	if t == nil {
		return
	}
	t.Steps = append(t.Steps, TraceStep{Op: op, Expr: expr, Value: value, Source: src, Note: note})
}

// Report renders the trace as a framed diagnostic report, optionally
// with the rule and the context that were evaluated.
func (t *Trace) Report(r *Rule, ctx Context) string {
	Box := box.New(box.Config{Px: 2, Py: 1, Type: "Double", Color: "Cyan", TitlePos: "Top", ContentAlign: "Left"})

	s := strings.Builder{}
	if r != nil {
		s.WriteString("Rule:\n")
		s.WriteString("-----\n")
		s.WriteString(r.Name())
		s.WriteString("\n\n")
		s.WriteString("Condition:\n")
		s.WriteString("----------\n")
		s.WriteString(wordWrap(r.Condition().String(), 100))
		s.WriteString("\n\n")
	}

	e := t.stepTable()
	s.WriteString("Evaluation Steps:\n")
	s.WriteString("-----------------\n")
	s.WriteString(e.String())

	if ctx != nil {
		dt := contextTable(ctx)
		s.WriteString("\n\n")
		s.WriteString("Context:\n")
		s.WriteString("--------\n")
		s.WriteString(dt.String())
	}
	return Box.String("VERDICT EVALUATION REPORT", s.String())
}

func contextTable(ctx Context) *simpletable.Table {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "Name"},
			{Align: simpletable.AlignCenter, Text: "Value"},
		},
	}

	for k, v := range ctx {
		r := []*simpletable.Cell{
			{Text: k},
			{Text: fmt.Sprintf("%v", v)},
		}
		table.Body.Cells = append(table.Body.Cells, r)
	}

	table.SetStyle(simpletable.StyleUnicode)

	return table
}

func (t *Trace) stepTable() *simpletable.Table {
	table := simpletable.New()
	table.Header = &simpletable.Header{
		Cells: []*simpletable.Cell{
			{Align: simpletable.AlignCenter, Text: "#"},
			{Align: simpletable.AlignCenter, Text: "Step"},
			{Align: simpletable.AlignCenter, Text: "Expression"},
			{Align: simpletable.AlignCenter, Text: "Value"},
			{Align: simpletable.AlignCenter, Text: "Source"},
			{Align: simpletable.AlignCenter, Text: "Note"},
		},
	}

	for i, step := range t.Steps {
		r := []*simpletable.Cell{
			{Align: simpletable.AlignRight, Text: fmt.Sprintf("%d", i+1)},
			{Text: step.Op},
			{Text: step.Expr},
			{Text: step.Value},
			{Text: step.Source.String()},
			{Text: step.Note},
		}
		table.Body.Cells = append(table.Body.Cells, r)
	}

	table.SetStyle(simpletable.StyleUnicode)

	return table
}

func wordWrap(text string, lineWidth int) string {
	words := strings.Fields(strings.TrimSpace(text))
	if len(words) == 0 {
		return text
	}
	wrapped := words[0]
	spaceLeft := lineWidth - len(wrapped)
	for _, word := range words[1:] {
		if len(word)+1 > spaceLeft {
			wrapped += "\n" + word
			spaceLeft = lineWidth - len(word)
		} else {
			wrapped += " " + word
			spaceLeft -= 1 + len(word)
		}
	}

	return wrapped
}
