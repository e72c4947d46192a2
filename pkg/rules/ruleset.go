package rules

import "regexp"

// Condition gates a requirement on a sibling field's value. The sibling is
// resolved in the same record scope as the conditional field: the step
// snapshot for top-level fields, the individual entry for nested sub-record
// fields.
type Condition struct {
	Field string
	AnyOf []string
}

// FieldRule is the validation contract for one declared field. Zero value
// means "optional, anything goes"; options layer constraints on top.
type FieldRule struct {
	Required       bool
	RequiredWhen   *Condition
	Pattern        *regexp.Regexp
	PatternMessage string
	MinLen         int
	MaxLen         int
	Min            *float64
	Max            *float64
	Nested         *RuleSet
}

// FieldOption configures a FieldRule during declaration.
type FieldOption func(*FieldRule)

// Required marks the field as unconditionally required.
func Required() FieldOption {
	return func(r *FieldRule) { r.Required = true }
}

// RequiredWhen marks the field as required only while the sibling field
// equals one of the given values.
func RequiredWhen(sibling string, values ...string) FieldOption {
	return func(r *FieldRule) {
		r.RequiredWhen = &Condition{Field: sibling, AnyOf: values}
	}
}

// Pattern constrains non-empty values to the given expression. The message
// is surfaced verbatim on failure.
func Pattern(re *regexp.Regexp, message string) FieldOption {
	return func(r *FieldRule) {
		r.Pattern = re
		r.PatternMessage = message
	}
}

// MinLen constrains the minimum length of non-empty string values.
func MinLen(n int) FieldOption {
	return func(r *FieldRule) { r.MinLen = n }
}

// MaxLen constrains the maximum length of non-empty string values.
func MaxLen(n int) FieldOption {
	return func(r *FieldRule) { r.MaxLen = n }
}

// Range constrains non-empty numeric values to [min, max].
func Range(min, max float64) FieldOption {
	return func(r *FieldRule) {
		r.Min = &min
		r.Max = &max
	}
}

// Each declares the field as a slice of sub-records, each validated against
// the nested rule set. Combine with Required to demand at least one entry.
func Each(nested *RuleSet) FieldOption {
	return func(r *FieldRule) { r.Nested = nested }
}

// RuleSet is the immutable validation contract of one wizard step. Fields
// are evaluated in declaration order so error output is deterministic.
type RuleSet struct {
	names  []string
	fields map[string]FieldRule
}

// NewRuleSet creates an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{fields: make(map[string]FieldRule)}
}

// Field declares a field with its constraints. Declaring the same name twice
// replaces the earlier declaration. Returns the rule set for chaining.
func (rs *RuleSet) Field(name string, opts ...FieldOption) *RuleSet {
	var rule FieldRule
	for _, opt := range opts {
		opt(&rule)
	}
	if _, exists := rs.fields[name]; !exists {
		rs.names = append(rs.names, name)
	}
	rs.fields[name] = rule
	return rs
}

// Rule returns the declared rule for a field name.
func (rs *RuleSet) Rule(name string) (FieldRule, bool) {
	r, ok := rs.fields[name]
	return r, ok
}

// Names returns the declared field names in declaration order.
func (rs *RuleSet) Names() []string {
	out := make([]string, len(rs.names))
	copy(out, rs.names)
	return out
}

// Len returns the number of declared fields.
func (rs *RuleSet) Len() int {
	return len(rs.names)
}
