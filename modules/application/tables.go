package application

import (
	_ "embed"

	"github.com/govform/licensekit/pkg/eligibility"
)

//go:embed rules.yaml
var defaultRules []byte

//go:embed fees.yaml
var defaultFees []byte

// DefaultRuleTable returns the built-in category rule table. Deployments
// with their own regulations load a table file through
// eligibility.LoadRuleTable instead.
func DefaultRuleTable() (eligibility.RuleTable, error) {
	return eligibility.ParseRuleTable(defaultRules)
}

// DefaultFeeTable returns the built-in state fee rate table.
func DefaultFeeTable() (eligibility.FeeTable, error) {
	return eligibility.ParseFeeTable(defaultFees)
}

// NewEngine builds a constraint engine over the built-in tables.
func NewEngine(opts ...eligibility.Option) (*eligibility.Engine, error) {
	rules, err := DefaultRuleTable()
	if err != nil {
		return nil, err
	}
	fees, err := DefaultFeeTable()
	if err != nil {
		return nil, err
	}
	return eligibility.NewEngine(rules, fees, opts...), nil
}
