package rules

// Unmapped is the label reported for descriptions that no rule matches.
// Tables may not use it as a category label.
const Unmapped = "Unmapped"

// Rule pairs a compound key with the category label it assigns.
type Rule struct {
	Key   RuleKey
	Label string
	// Line is the 1-based line of the rule in its source asset, 0 when unknown.
	Line int
}

// NewRule parses raw and returns the rule assigning label.
func NewRule(raw, label string) Rule {
	return Rule{Key: ParseKey(raw), Label: label}
}

// Result is the outcome of resolving one description against a table.
type Result struct {
	Label  string `json:"label" yaml:"label"`
	Mapped bool   `json:"mapped" yaml:"mapped"`
	// Index is the position of the winning rule, -1 when unmapped.
	Index int    `json:"index" yaml:"index"`
	Key   string `json:"key,omitempty" yaml:"key,omitempty"`
}

// IsUnmapped reports whether no rule matched.
func (r Result) IsUnmapped() bool {
	return !r.Mapped
}

// UnmappedResult is the result returned when a table has no matching rule.
func UnmappedResult() Result {
	return Result{Label: Unmapped, Mapped: false, Index: -1}
}

// Table is an ordered, immutable sequence of rules. Earlier rules take precedence.
type Table struct {
	name    string
	version string
	source  string
	rules   []Rule
}

// NewTable creates a table named name at the given version. The rules slice is copied so
// later changes by the caller do not affect the table.
func NewTable(name, version string, rules []Rule) *Table {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Table{name: name, version: version, rules: copied}
}

// WithSource returns a copy of the table that records where it was loaded from.
func (t *Table) WithSource(source string) *Table {
	clone := *t
	clone.source = source
	return &clone
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Version returns the table version (dataset era).
func (t *Table) Version() string { return t.version }

// Source returns the asset the table was loaded from, if known.
func (t *Table) Source() string { return t.source }

// ID returns "name@version".
func (t *Table) ID() string {
	if t.version == "" {
		return t.name
	}
	return t.name + "@" + t.version
}

// Len returns the number of rules.
func (t *Table) Len() int { return len(t.rules) }

// Rule returns the rule at index i.
func (t *Table) Rule(i int) Rule { return t.rules[i] }

// Rules returns a copy of the rules in table order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Labels returns the distinct category labels in order of first appearance.
func (t *Table) Labels() []string {
	seen := make(map[string]bool, len(t.rules))
	var labels []string
	for _, rule := range t.rules {
		if seen[rule.Label] {
			continue
		}
		seen[rule.Label] = true
		labels = append(labels, rule.Label)
	}
	return labels
}

// Resolve returns the label of the first rule whose key matches description, or the
// unmapped result when none does. Later rules are not evaluated once a rule matches.
func (t *Table) Resolve(description string) Result {
	for i, rule := range t.rules {
		if rule.Key.Matches(description) {
			return Result{Label: rule.Label, Mapped: true, Index: i, Key: rule.Key.Raw}
		}
	}
	return UnmappedResult()
}
