package eligibility

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseRuleTable parses a category rule table from yaml and verifies its
// internal references: every prerequisite and exclusion must name a declared
// category, so a typo in configuration fails at startup instead of silently
// never matching.
func ParseRuleTable(data []byte) (RuleTable, error) {
	var raw struct {
		Categories RuleTable `yaml:"categories"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Join(ErrInvalidRuleTable, err)
	}
	if len(raw.Categories) == 0 {
		return nil, errors.Join(ErrInvalidRuleTable, errors.New("no categories declared"))
	}

	for cat, rule := range raw.Categories {
		if rule.MinAge <= 0 {
			return nil, errors.Join(ErrInvalidRuleTable,
				fmt.Errorf("category %s: min_age must be positive", cat))
		}
		for _, prereq := range rule.Prerequisites {
			if _, ok := raw.Categories[prereq]; !ok {
				return nil, errors.Join(ErrInvalidRuleTable,
					fmt.Errorf("category %s: unknown prerequisite %q", cat, prereq))
			}
		}
		for _, excl := range rule.ExclusiveWith {
			if _, ok := raw.Categories[excl]; !ok {
				return nil, errors.Join(ErrInvalidRuleTable,
					fmt.Errorf("category %s: unknown exclusion %q", cat, excl))
			}
		}
	}
	return raw.Categories, nil
}

// LoadRuleTable reads and parses a category rule table file.
func LoadRuleTable(path string) (RuleTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidRuleTable, err)
	}
	return ParseRuleTable(data)
}

// ParseFeeTable parses a fee rate table from yaml.
func ParseFeeTable(data []byte) (FeeTable, error) {
	var table FeeTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return FeeTable{}, errors.Join(ErrInvalidFeeTable, err)
	}
	if len(table.Rows) == 0 {
		return FeeTable{}, errors.Join(ErrInvalidFeeTable, errors.New("no fee rows declared"))
	}
	for i, row := range table.Rows {
		if row.Code == "" {
			return FeeTable{}, errors.Join(ErrInvalidFeeTable,
				fmt.Errorf("fee row %d: code is required", i))
		}
		if row.AmountCents < 0 {
			return FeeTable{}, errors.Join(ErrInvalidFeeTable,
				fmt.Errorf("fee row %s: amount cannot be negative", row.Code))
		}
	}
	return table, nil
}

// LoadFeeTable reads and parses a fee rate table file.
func LoadFeeTable(path string) (FeeTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FeeTable{}, errors.Join(ErrInvalidFeeTable, err)
	}
	return ParseFeeTable(data)
}
