// Package rules implements declarative per-step field validation for
// multi-step intake wizards.
//
// A step declares its validation contract once as a RuleSet: which fields are
// required, which formats and ranges apply, and which fields are required
// only conditionally based on a sibling field's value. The evaluator is a
// pure function over a data snapshot; it performs no I/O, keeps no state and
// never panics on malformed input.
//
// # Architecture
//
// Validation runs in two independent passes. The first pass walks every
// declared field (including each entry of nested sub-record slices such as
// identity documents or addresses) and collects all failures; it never
// aborts early. The second pass reconciles the outcome against the declared
// required fields, so a required field can never be silently missed even if
// the first pass produced no error path for it. A step is valid only when
// zero errors were collected and every assigned field state resolved to a
// non-failing state.
//
// Nested errors are addressed as "field[index].nested" so a UI can attach a
// message to the exact sub-record input that failed.
//
// # Usage
//
//	set := rules.NewRuleSet().
//	    Field("surname", rules.Required(), rules.MaxLen(50)).
//	    Field("email_address", rules.Pattern(emailRe, "invalid email address")).
//	    Field("identity_documents", rules.Required(), rules.Each(
//	        rules.NewRuleSet().
//	            Field("document_type", rules.Required()).
//	            Field("document_number", rules.Required()).
//	            Field("expiry_date", rules.RequiredWhen("document_type", "passport")),
//	    ))
//
//	result := rules.ValidateStep(set, snapshot)
//	if !result.Valid {
//	    for path, msg := range result.Errors {
//	        // render msg next to path
//	    }
//	}
//
// Empty values on optional fields resolve to the neutral "default" state and
// are never reported as format failures; format and range checks apply to
// present values only.
package rules
