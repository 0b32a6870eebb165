package rules

import "strings"

// Evaluation records how a single rule fared against a description.
type Evaluation struct {
	Index          int      `json:"index" yaml:"index"`
	Key            string   `json:"key" yaml:"key"`
	Label          string   `json:"label" yaml:"label"`
	Matched        bool     `json:"matched" yaml:"matched"`
	MissingTerms   []string `json:"missing_terms,omitempty" yaml:"missing_terms,omitempty"`
	ExcludedByTerm []string `json:"excluded_by,omitempty" yaml:"excluded_by,omitempty"`
}

// Trace is the audit trail of resolving one description: every rule evaluated up to and
// including the winner, in table order.
type Trace struct {
	Description string       `json:"description" yaml:"description"`
	Result      Result       `json:"result" yaml:"result"`
	Evaluations []Evaluation `json:"evaluations" yaml:"evaluations"`
}

// Explain resolves description like Resolve and records each rule evaluation.
// The result always equals Resolve(description).
func (t *Table) Explain(description string) Trace {
	trace := Trace{Description: description, Result: UnmappedResult()}
	for i, rule := range t.rules {
		eval := evaluate(i, rule, description)
		trace.Evaluations = append(trace.Evaluations, eval)
		if eval.Matched {
			trace.Result = Result{Label: rule.Label, Mapped: true, Index: i, Key: rule.Key.Raw}
			break
		}
	}
	return trace
}

func evaluate(index int, rule Rule, description string) Evaluation {
	eval := Evaluation{Index: index, Key: rule.Key.Raw, Label: rule.Label}
	for _, term := range rule.Key.Include {
		if !strings.Contains(description, term) {
			eval.MissingTerms = append(eval.MissingTerms, term)
		}
	}
	for _, term := range rule.Key.Exclude {
		if strings.Contains(description, term) {
			eval.ExcludedByTerm = append(eval.ExcludedByTerm, term)
		}
	}
	eval.Matched = len(eval.MissingTerms) == 0 && len(eval.ExcludedByTerm) == 0
	return eval
}
