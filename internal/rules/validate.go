package rules

import (
	"fmt"
	"strings"

	"radiologi/xa-dose/internal/ruleerror"
)

// Validate checks the table for malformed keys and unreachable rules.
//
// Errors: empty table, empty term, a leftover "&" inside a term (inconsistent separator),
// a key with no inclusion term, an empty label, and a label equal to Unmapped.
// Warnings: exact duplicate keys and rules shadowed by an earlier rule.
func (t *Table) Validate() []ruleerror.Issue {
	if len(t.rules) == 0 {
		return []ruleerror.Issue{{
			Rule:     -1,
			Severity: ruleerror.SeverityError,
			Reason:   "table has no rules",
		}}
	}

	var issues []ruleerror.Issue
	firstByKey := make(map[string]int, len(t.rules))
	for i, rule := range t.rules {
		issue := func(severity ruleerror.Severity, reason string) {
			issues = append(issues, ruleerror.Issue{
				Rule:     i,
				Line:     rule.Line,
				Key:      rule.Key.Raw,
				Severity: severity,
				Reason:   reason,
			})
		}

		if err := ValidateKey(rule.Key); err != nil {
			issue(ruleerror.SeverityError, err.Reason)
		}
		if strings.TrimSpace(rule.Label) == "" {
			issue(ruleerror.SeverityError, "empty category label")
		}
		if rule.Label == Unmapped {
			issue(ruleerror.SeverityError, "category label collides with the unmapped sentinel")
		}

		canonical := rule.Key.String()
		if first, ok := firstByKey[canonical]; ok {
			issue(ruleerror.SeverityWarning, fmt.Sprintf("duplicate of rule %d, never reached", first+1))
			continue
		}
		firstByKey[canonical] = i

		if hasEmptyTerm(rule.Key) {
			continue
		}
		for j := 0; j < i; j++ {
			earlier := t.rules[j].Key
			if hasEmptyTerm(earlier) {
				continue
			}
			if earlier.implies(rule.Key) {
				issue(ruleerror.SeverityWarning, fmt.Sprintf("shadowed by rule %d (%s), never reached", j+1, earlier.Raw))
				break
			}
		}
	}
	return issues
}

// ValidateKey returns a RuleKeyError for the first malformed term of key, or nil.
func ValidateKey(key RuleKey) *ruleerror.RuleKeyError {
	if len(key.Include) == 0 {
		return &ruleerror.RuleKeyError{Key: key.Raw, Term: 0, Reason: "no inclusion term"}
	}
	for i, term := range key.Include {
		if term == "" {
			return &ruleerror.RuleKeyError{Key: key.Raw, Term: i, Reason: "empty inclusion term matches every description"}
		}
		if strings.Contains(term, "&") {
			return &ruleerror.RuleKeyError{Key: key.Raw, Term: i, Reason: "inconsistent separator, terms must be joined by \" & \""}
		}
	}
	for i, term := range key.Exclude {
		pos := len(key.Include) + i
		if term == "" {
			return &ruleerror.RuleKeyError{Key: key.Raw, Term: pos, Reason: "empty exclusion term excludes every description"}
		}
		if strings.Contains(term, "&") {
			return &ruleerror.RuleKeyError{Key: key.Raw, Term: pos, Reason: "inconsistent separator, terms must be joined by \" & \""}
		}
	}
	return nil
}

// HasErrors reports whether any issue has error severity.
func HasErrors(issues []ruleerror.Issue) bool {
	for _, issue := range issues {
		if issue.Severity == ruleerror.SeverityError {
			return true
		}
	}
	return false
}

func hasEmptyTerm(key RuleKey) bool {
	for _, term := range key.Include {
		if term == "" {
			return true
		}
	}
	for _, term := range key.Exclude {
		if term == "" {
			return true
		}
	}
	return len(key.Include) == 0
}
