package verdict_test

import (
	"testing"

	"github.com/rulekit/verdict"
)

// weatherRule builds the rule most tests share:
//
//	if temperature > 30 then {message: "It is hot!"}
//	else if humidity < 50 then {message: "It is dry!"}
//	else {message: "It is pleasant!"}
func weatherRule() *verdict.Rule {
	return verdict.NewRule("weather").
		If(verdict.NewCondition("temperature", verdict.Gt, 30)).
		Then(verdict.NewResult("message", "It is hot!")).
		Else(verdict.NewRule("humidity check").
			If(verdict.NewCondition("humidity", verdict.Lt, 50)).
			Then(verdict.NewResult("message", "It is dry!")).
			Else(verdict.NewResult("message", "It is pleasant!")))
}

// deepRule exercises every shape the plain form supports: a composite
// condition with a nested composite, list and float values, a nested
// rule and results carrying variable references.
func deepRule() *verdict.Rule {
	cond := verdict.NewCondition("number", verdict.In, []int{1, 2, 3}).
		And(verdict.NewCondition("name", verdict.Neq, "nobody").
			Or(verdict.NewCondition("threshold", verdict.Gte, 1.5)))
	inner := verdict.NewRule("inner").
		If(verdict.NewCondition("flag", verdict.Eq, true)).
		Then(verdict.NewResult("status", "on").Set("number", verdict.Var("number"))).
		Else(verdict.NewResult("status", "off"))
	return verdict.NewRule("outer").
		If(cond).
		Then(inner).
		Else(verdict.NewResult("status", "skipped"))
}

func evaluate(t *testing.T, r *verdict.Rule, ctx verdict.Context) *verdict.Decision {
	t.Helper()
	d, err := verdict.NewEngine().Evaluate(r, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return d
}
