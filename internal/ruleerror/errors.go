// Package ruleerror defines the typed errors reported while loading rule tables and
// classifying dose records.
package ruleerror

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingDescription is returned for a record that has no description field at all.
// An empty description is not an error; it simply resolves to unmapped.
var ErrMissingDescription = errors.New("record has no description field")

// Severity classifies a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue describes one problem found in a rule table.
type Issue struct {
	Rule     int      `json:"rule" yaml:"rule"` // 0-based rule index, -1 for table-level issues
	Line     int      `json:"line,omitempty" yaml:"line,omitempty"`
	Key      string   `json:"key,omitempty" yaml:"key,omitempty"`
	Severity Severity `json:"severity" yaml:"severity"`
	Reason   string   `json:"reason" yaml:"reason"`
}

func (i Issue) String() string {
	if i.Rule < 0 {
		return fmt.Sprintf("%s: %s", i.Severity, i.Reason)
	}
	if i.Line > 0 {
		return fmt.Sprintf("%s: rule %d (line %d) %q: %s", i.Severity, i.Rule+1, i.Line, i.Key, i.Reason)
	}
	return fmt.Sprintf("%s: rule %d %q: %s", i.Severity, i.Rule+1, i.Key, i.Reason)
}

// RuleKeyError represents a malformed compound rule key.
type RuleKeyError struct {
	Key    string
	Term   int
	Reason string
}

func (e *RuleKeyError) Error() string {
	return fmt.Sprintf("malformed rule key %q (term %d): %s", e.Key, e.Term+1, e.Reason)
}

// ValidationError is returned when a rule table has error-severity issues.
type ValidationError struct {
	Table  string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	var errs []string
	for _, issue := range e.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue.String())
		}
	}
	return fmt.Sprintf("rule table %s failed validation with %d error(s): %s",
		e.Table, len(errs), strings.Join(errs, "; "))
}

// RecordError represents a failure to classify a single record of a batch.
type RecordError struct {
	Index int
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// TableNotFoundError is returned when no rule table matches a name and version.
type TableNotFoundError struct {
	Name    string
	Version string
}

func (e *TableNotFoundError) Error() string {
	if e.Version == "" {
		return fmt.Sprintf("rule table %q not found", e.Name)
	}
	return fmt.Sprintf("rule table %q version %q not found", e.Name, e.Version)
}
