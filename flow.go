package licensekit

import (
	"github.com/govform/licensekit/pkg/eligibility"
	"github.com/govform/licensekit/pkg/rules"
	"github.com/govform/licensekit/pkg/wizard"
)

// StepDefinition describes one step of a flow: its field rules plus the
// optional hook into the business constraint engine.
type StepDefinition struct {
	// Name identifies the step in logs and UIs, e.g. "personal_details".
	Name string

	// Rules validates the step's form fields. A step with no fields may
	// leave it nil; such a step is always field-valid.
	Rules *rules.RuleSet

	// Optional steps never block submission.
	Optional bool

	// BuildApplication extracts a business application from the collected
	// form data. Steps without business constraints leave it nil. Returning
	// false means the data is not yet complete enough to evaluate, which is
	// not an error.
	BuildApplication func(data map[string]any) (eligibility.Application, bool)

	// BusinessField is the field path business violations are attached to in
	// the merged validation result, so the UI renders them inline. Empty
	// means the violation only flips the step-level Valid flag.
	BusinessField string
}

// Flow is a reusable wizard definition: an ordered list of steps and the
// mode they run in. A Flow is immutable configuration; per-user state lives
// in a Session.
type Flow struct {
	Name  string
	Mode  wizard.Mode
	Steps []StepDefinition
}

// OptionalSteps returns the indexes of optional steps, in order.
func (f Flow) OptionalSteps() []int {
	var out []int
	for i, step := range f.Steps {
		if step.Optional {
			out = append(out, i)
		}
	}
	return out
}
