package rules

// FieldState describes how a single field resolved during validation.
type FieldState string

const (
	// StateValid means the field is present and passed every declared rule.
	StateValid FieldState = "valid"
	// StateInvalid means the field is present but failed a format, length or
	// range rule.
	StateInvalid FieldState = "invalid"
	// StateRequired means the field is required (statically or through a
	// satisfied condition) and empty.
	StateRequired FieldState = "required"
	// StateDefault means the field is optional and empty; it neither passes
	// nor fails.
	StateDefault FieldState = "default"
)

// Failed reports whether the state blocks step completion.
func (s FieldState) Failed() bool {
	return s == StateInvalid || s == StateRequired
}

// FieldResult is the outcome of validating a single field.
type FieldResult struct {
	Valid bool
	Error string
	State FieldState
}

// ValidationResult aggregates the outcome of validating a whole step.
// Errors and FieldStates are keyed by field path; nested sub-record fields
// use "field[index].nested" addressing.
type ValidationResult struct {
	Valid       bool
	Errors      map[string]string
	FieldStates map[string]FieldState
}

func newValidationResult() ValidationResult {
	return ValidationResult{
		Valid:       true,
		Errors:      make(map[string]string),
		FieldStates: make(map[string]FieldState),
	}
}

// Clone returns a deep copy, so cached results can be merged with additional
// failures without mutating the cached maps.
func (r ValidationResult) Clone() ValidationResult {
	out := ValidationResult{
		Valid:       r.Valid,
		Errors:      make(map[string]string, len(r.Errors)),
		FieldStates: make(map[string]FieldState, len(r.FieldStates)),
	}
	for k, v := range r.Errors {
		out.Errors[k] = v
	}
	for k, v := range r.FieldStates {
		out.FieldStates[k] = v
	}
	return out
}

// HasError reports whether an error message was collected for the path.
func (r ValidationResult) HasError(path string) bool {
	_, ok := r.Errors[path]
	return ok
}

// State returns the recorded state for a path, or StateDefault when the path
// was never assigned one.
func (r ValidationResult) State(path string) FieldState {
	if s, ok := r.FieldStates[path]; ok {
		return s
	}
	return StateDefault
}

func (r *ValidationResult) record(path string, fr FieldResult) {
	r.FieldStates[path] = fr.State
	if !fr.Valid {
		r.Errors[path] = fr.Error
	}
}
