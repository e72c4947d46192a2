package rules

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	msgRequired      = "field is required"
	msgInvalidFormat = "invalid format"
	msgNotANumber    = "must be a number"
	msgNotRecordList = "must be a list of records"
)

// ValidateStep validates a full step snapshot against its rule set.
//
// Two passes run unconditionally: a collect-all pass over every declared
// field and entry, then a reconciliation pass that guarantees every required
// field carries a field state. The passes are independent on purpose; step
// validity demands that both agree.
func ValidateStep(rs *RuleSet, data map[string]any) ValidationResult {
	result := newValidationResult()
	if rs == nil {
		return result
	}

	for _, name := range rs.names {
		rule := rs.fields[name]
		value := valueOf(data, name)

		if rule.Nested != nil {
			validateSequence(&result, name, rule, value, data)
			continue
		}
		result.record(name, evaluate(rule, value, data))
	}

	reconcileRequired(&result, rs, data)

	result.Valid = len(result.Errors) == 0
	for _, state := range result.FieldStates {
		if state.Failed() {
			result.Valid = false
			break
		}
	}
	return result
}

// ValidateField validates a single field value in the context of a step
// snapshot. The snapshot is needed to resolve conditional requirements; it
// may be nil when the field has none. Undeclared fields resolve to the
// neutral default state.
func ValidateField(rs *RuleSet, field string, value any, data map[string]any) FieldResult {
	if rs == nil {
		return FieldResult{Valid: true, State: StateDefault}
	}
	rule, ok := rs.fields[field]
	if !ok {
		return FieldResult{Valid: true, State: StateDefault}
	}
	if rule.Nested != nil {
		// Collapse the sequence outcome into a single result for inline display.
		step := newValidationResult()
		validateSequence(&step, field, rule, value, data)
		for path, state := range step.FieldStates {
			if state.Failed() {
				return FieldResult{Valid: false, Error: step.Errors[path], State: state}
			}
		}
		return FieldResult{Valid: true, State: step.State(field)}
	}
	return evaluate(rule, value, data)
}

// evaluate applies one rule to one scalar value within a record scope.
func evaluate(rule FieldRule, value any, scope map[string]any) FieldResult {
	required := rule.Required || conditionMet(rule.RequiredWhen, scope)

	if isEmpty(value) {
		if required {
			return FieldResult{Valid: false, Error: msgRequired, State: StateRequired}
		}
		return FieldResult{Valid: true, State: StateDefault}
	}

	s := stringify(value)

	if rule.MinLen > 0 && len(s) < rule.MinLen {
		return FieldResult{
			Valid: false,
			Error: fmt.Sprintf("must be at least %d characters long", rule.MinLen),
			State: StateInvalid,
		}
	}
	if rule.MaxLen > 0 && len(s) > rule.MaxLen {
		return FieldResult{
			Valid: false,
			Error: fmt.Sprintf("must be at most %d characters long", rule.MaxLen),
			State: StateInvalid,
		}
	}
	if rule.Pattern != nil && !rule.Pattern.MatchString(s) {
		msg := rule.PatternMessage
		if msg == "" {
			msg = msgInvalidFormat
		}
		return FieldResult{Valid: false, Error: msg, State: StateInvalid}
	}
	if rule.Min != nil || rule.Max != nil {
		f, ok := toFloat(value)
		if !ok {
			return FieldResult{Valid: false, Error: msgNotANumber, State: StateInvalid}
		}
		if rule.Min != nil && f < *rule.Min {
			return FieldResult{
				Valid: false,
				Error: fmt.Sprintf("must be at least %s", formatNumber(*rule.Min)),
				State: StateInvalid,
			}
		}
		if rule.Max != nil && f > *rule.Max {
			return FieldResult{
				Valid: false,
				Error: fmt.Sprintf("must be at most %s", formatNumber(*rule.Max)),
				State: StateInvalid,
			}
		}
	}

	return FieldResult{Valid: true, State: StateValid}
}

// validateSequence validates a slice-of-records field. The conditional
// requirement of every nested field is re-derived per entry, never once
// globally.
func validateSequence(result *ValidationResult, name string, rule FieldRule, value any, scope map[string]any) {
	entries, ok := recordSlice(value)
	if !ok {
		result.record(name, FieldResult{Valid: false, Error: msgNotRecordList, State: StateInvalid})
		return
	}

	required := rule.Required || conditionMet(rule.RequiredWhen, scope)
	if len(entries) == 0 {
		if required {
			result.record(name, FieldResult{Valid: false, Error: msgRequired, State: StateRequired})
			return
		}
		result.record(name, FieldResult{Valid: true, State: StateDefault})
		return
	}

	result.record(name, FieldResult{Valid: true, State: StateValid})
	for i, entry := range entries {
		for _, nestedName := range rule.Nested.names {
			nestedRule := rule.Nested.fields[nestedName]
			path := fmt.Sprintf("%s[%d].%s", name, i, nestedName)
			result.record(path, evaluate(nestedRule, valueOf(entry, nestedName), entry))
		}
	}
}

// reconcileRequired is the second pass: every field that is required given
// the current snapshot must have been assigned a state, and a failing state
// must carry an error message. The collect-all pass already satisfies both
// in the normal case; this pass makes the guarantee explicit.
func reconcileRequired(result *ValidationResult, rs *RuleSet, data map[string]any) {
	for _, name := range rs.names {
		rule := rs.fields[name]
		required := rule.Required || conditionMet(rule.RequiredWhen, data)
		if required {
			if _, assigned := result.FieldStates[name]; !assigned {
				result.record(name, FieldResult{Valid: false, Error: msgRequired, State: StateRequired})
			}
		}
	}
	for path, state := range result.FieldStates {
		if state.Failed() && !result.HasError(path) {
			result.Errors[path] = msgRequired
		}
	}
}

func conditionMet(cond *Condition, scope map[string]any) bool {
	if cond == nil || scope == nil {
		return false
	}
	actual := stringify(valueOf(scope, cond.Field))
	for _, want := range cond.AnyOf {
		if actual == want {
			return true
		}
	}
	return false
}

func valueOf(data map[string]any, name string) any {
	if data == nil {
		return nil
	}
	return data[name]
}

// isEmpty reports whether a value counts as absent. Absent values on
// optional fields must never be reported as format-invalid.
func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []map[string]any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case time.Time:
		return v.IsZero()
	case *time.Time:
		return v == nil || v.IsZero()
	default:
		return false
	}
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// recordSlice normalizes the accepted shapes of a sub-record slice. A nil
// value is an empty, well-formed slice; anything that is not a sequence of
// records is malformed.
func recordSlice(value any) ([]map[string]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, true
	case []map[string]any:
		return v, true
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, m)
		}
		return out, true
	default:
		return nil, false
	}
}
