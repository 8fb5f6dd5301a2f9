package verdict_test

import (
	"fmt"

	"github.com/rulekit/verdict"
)

// Example showing basic use of the verdict rules engine
func Example() {

	// Step 1: Build a rule
	rule := verdict.NewRule("weather").
		If(verdict.NewCondition("temperature", verdict.Gt, 30)).
		Then(verdict.NewResult("message", "It is hot!")).
		Else(verdict.NewResult("message", "It is pleasant!"))

	// Step 2: Create an engine
	engine := verdict.NewEngine()

	// Step 3: Evaluate the rule against a context
	d, err := engine.Evaluate(rule, verdict.Context{"temperature": 35})
	if err != nil {
		fmt.Println(err)
		return
	}

	// Step 4: Check the decision
	fmt.Println(d.Matched)
	fmt.Println(d.Output["message"])
	// Output:
	// true
	// It is hot!
}

// Example showing a nested rule in the else branch
func Example_nested() {

	rule := verdict.NewRule("weather").
		If(verdict.NewCondition("temperature", verdict.Gt, 30)).
		Then(verdict.NewResult("message", "It is hot!")).
		Else(verdict.NewRule("humidity check").
			If(verdict.NewCondition("humidity", verdict.Lt, 50)).
			Then(verdict.NewResult("message", "It is dry!")).
			Else(verdict.NewResult("message", "It is pleasant!")))

	d, err := verdict.NewEngine().Evaluate(rule, verdict.Context{
		"temperature": 25,
		"humidity":    40,
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(d.Output["message"])
	// Output: It is dry!
}

func ExampleRule_Tree() {
	rule := verdict.NewRule("weather").
		If(verdict.NewCondition("temperature", verdict.Gt, 30)).
		Then(verdict.NewResult("message", "It is hot!")).
		Else(verdict.NewRule("humidity check").
			If(verdict.NewCondition("humidity", verdict.Lt, 50)).
			Then(verdict.NewResult("message", "It is dry!")).
			Else(verdict.NewResult("message", "It is pleasant!")))

	fmt.Print(rule.Tree())
	// Output:
	// weather
	// └── else: humidity check
}

// Merging results with And keeps the left order; the right side wins
// on shared keys.
func ExampleResult_And() {
	base := verdict.NewResult("status", "open").Set("level", 1)
	override := verdict.NewResult("level", 2).Set("owner", "alice")

	fmt.Println(base.And(override))
	// Output: {status: "open", level: 2, owner: "alice"}
}

func ExampleValidateContext() {
	rule := verdict.NewRule("weather").
		If(verdict.NewCondition("temperature", verdict.Gt, 30).
			And(verdict.NewCondition("humidity", verdict.Lt, 50))).
		Then(verdict.NewResult("message", "hot and dry"))

	err := verdict.ValidateContext(rule, verdict.Context{})
	fmt.Println(err)
	// Output: missing context parameter: humidity, temperature
}

func ExampleVar() {

	// The result echoes a context value instead of a literal.
	rule := verdict.NewRule("echo").
		Then(verdict.NewResult("number", verdict.Var("number")))

	d, err := verdict.NewEngine().Evaluate(rule, verdict.Context{"number": 7})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(d.Output["number"])
	// Output: 7
}

func ExampleParse() {
	plain := map[string]any{
		"metadata": map[string]any{"name": "gate"},
		"if": map[string]any{
			"condition": map[string]any{
				"variable": "number",
				"operator": "in",
				"value": map[string]any{
					"type": "list",
					"value": []any{
						map[string]any{"type": "int", "value": 1},
						map[string]any{"type": "int", "value": 2},
						map[string]any{"type": "int", "value": 3},
					},
				},
			},
		},
		"then": map[string]any{
			"result": map[string]any{
				"ok": map[string]any{"type": "bool", "value": true},
			},
		},
	}

	rule, err := verdict.Parse(plain)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(rule.Condition())

	d, err := verdict.NewEngine().Evaluate(rule, verdict.Context{"number": 1})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(d.Output["ok"])
	// Output:
	// number in [1, 2, 3]
	// true
}
