// Package eligibility implements the business constraints of driver's-license
// applications: age minimums per license category, prerequisite categories,
// invalid category combinations, external record verification and fee
// computation from a rate table.
//
// The engine reasons over a different unit than field validation does:
// selected categories crossed with the applicant's age and existing holdings,
// not raw field values. Its result is therefore structured per violation kind
// so a UI can render targeted guidance instead of one flat error string.
//
// # Architecture
//
// The engine is configured once with a read-only RuleTable and FeeTable
// (constructed in code or parsed from yaml) and an optional Registry for
// existing-license lookups. EvaluateApplication never returns an error and
// never panics past its boundary: internal faults are converted into a
// generic invalid result, and a failed registry lookup degrades to "no
// existing records found", which forces the manual verification branch
// instead of blocking the applicant.
//
// # Usage
//
//	engine := eligibility.NewEngine(ruleTable, feeTable,
//	    eligibility.WithRegistry(registry),
//	)
//
//	result := engine.EvaluateApplication(ctx, eligibility.Application{
//	    Type:       eligibility.ApplicationNew,
//	    Categories: []eligibility.Category{"B"},
//	    BirthDate:  birthDate,
//	    PersonID:   personID,
//	})
//	if !result.Valid {
//	    // result.AgeViolations, result.MissingPrerequisites,
//	    // result.InvalidCombinations carry the per-category guidance
//	}
//
// SuggestedCategories computes the minimal prerequisite set missing from a
// selection as a pure value; the caller decides whether to apply it and must
// show a notice when it does. The engine never mutates a selection.
//
// Fee computation treats the category list as a set: ordering and duplicates
// cannot change the total.
package eligibility
