package eligibility_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govform/licensekit/pkg/eligibility"
)

const ruleTableYAML = `
categories:
  A:
    min_age: 16
    learner_permit: true
  B:
    min_age: 18
    prerequisites: [A]
    learner_permit: true
  C:
    min_age: 21
    prerequisites: [B]
    exclusive_with: []
`

const feeTableYAML = `
currency: EUR
fees:
  - code: state_fee
    description: application state fee
    amount_cents: 2000
  - code: exam_b
    description: category B exam
    category: B
    amount_cents: 3000
  - code: renewal
    description: renewal processing
    applies_to: renewal
    amount_cents: 1500
`

func TestParseRuleTable(t *testing.T) {
	t.Parallel()

	t.Run("valid table", func(t *testing.T) {
		t.Parallel()
		table, err := eligibility.ParseRuleTable([]byte(ruleTableYAML))
		require.NoError(t, err)
		require.Len(t, table, 3)
		assert.Equal(t, 18, table["B"].MinAge)
		assert.Equal(t, []eligibility.Category{"A"}, table["B"].Prerequisites)
		assert.True(t, table["A"].LearnerPermit)
		assert.False(t, table["C"].LearnerPermit)
	})

	t.Run("unknown prerequisite fails at parse time", func(t *testing.T) {
		t.Parallel()
		_, err := eligibility.ParseRuleTable([]byte(`
categories:
  B:
    min_age: 18
    prerequisites: [A]
`))
		assert.ErrorIs(t, err, eligibility.ErrInvalidRuleTable)
	})

	t.Run("missing min_age fails", func(t *testing.T) {
		t.Parallel()
		_, err := eligibility.ParseRuleTable([]byte("categories:\n  A: {}\n"))
		assert.ErrorIs(t, err, eligibility.ErrInvalidRuleTable)
	})

	t.Run("empty document fails", func(t *testing.T) {
		t.Parallel()
		_, err := eligibility.ParseRuleTable([]byte("{}"))
		assert.ErrorIs(t, err, eligibility.ErrInvalidRuleTable)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		t.Parallel()
		_, err := eligibility.ParseRuleTable([]byte("categories: ["))
		assert.ErrorIs(t, err, eligibility.ErrInvalidRuleTable)
	})
}

func TestParseFeeTable(t *testing.T) {
	t.Parallel()

	t.Run("valid table", func(t *testing.T) {
		t.Parallel()
		table, err := eligibility.ParseFeeTable([]byte(feeTableYAML))
		require.NoError(t, err)
		assert.Equal(t, "EUR", table.Currency)
		require.Len(t, table.Rows, 3)
		assert.Equal(t, eligibility.ApplicationRenewal, table.Rows[2].AppliesTo)
		assert.Equal(t, eligibility.Category("B"), table.Rows[1].Category)
	})

	t.Run("row without code fails", func(t *testing.T) {
		t.Parallel()
		_, err := eligibility.ParseFeeTable([]byte("fees:\n  - amount_cents: 100\n"))
		assert.ErrorIs(t, err, eligibility.ErrInvalidFeeTable)
	})

	t.Run("negative amount fails", func(t *testing.T) {
		t.Parallel()
		_, err := eligibility.ParseFeeTable([]byte("fees:\n  - code: x\n    amount_cents: -5\n"))
		assert.ErrorIs(t, err, eligibility.ErrInvalidFeeTable)
	})
}
