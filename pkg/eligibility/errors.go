package eligibility

import "errors"

var (
	// ErrNoRegistry is returned by CheckExistingLicenses when no registry is
	// configured; EvaluateApplication treats this as "no records found".
	ErrNoRegistry = errors.New("eligibility: no existing-license registry configured")

	// ErrInvalidRuleTable is returned when a category rule table fails to
	// parse or references undeclared categories.
	ErrInvalidRuleTable = errors.New("eligibility: invalid category rule table")

	// ErrInvalidFeeTable is returned when a fee rate table fails to parse.
	ErrInvalidFeeTable = errors.New("eligibility: invalid fee table")
)
