package person_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govform/licensekit"
	"github.com/govform/licensekit/modules/person"
	"github.com/govform/licensekit/pkg/eligibility"
	"github.com/govform/licensekit/pkg/rules"
)

func newSession(t *testing.T) *licensekit.Session {
	t.Helper()
	engine := eligibility.NewEngine(eligibility.RuleTable{}, eligibility.FeeTable{})
	sess, err := licensekit.NewSession(person.Flow(), engine)
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return sess
}

func TestPersonalDetails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("complete details pass", func(t *testing.T) {
		t.Parallel()
		sess := newSession(t)
		result, err := sess.ValidateStep(ctx, person.StepPersonalDetails, map[string]any{
			"first_name":  "Ana",
			"last_name":   "Petrova",
			"birth_date":  "1996-04-02",
			"personal_id": "96040212345",
		}, false)
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})

	t.Run("malformed values are collected together", func(t *testing.T) {
		t.Parallel()
		sess := newSession(t)
		result, err := sess.ValidateStep(ctx, person.StepPersonalDetails, map[string]any{
			"first_name":  "Ana3",
			"last_name":   "Petrova",
			"birth_date":  "02/04/1996",
			"personal_id": "123",
		}, false)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, "must contain only letters", result.Errors["first_name"])
		assert.Equal(t, "must be a date in YYYY-MM-DD format", result.Errors["birth_date"])
		assert.Equal(t, "must be an 11 digit personal number", result.Errors["personal_id"])
		assert.NotContains(t, result.Errors, "last_name")
	})
}

func TestIdentityDocuments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("expiry required for passports only", func(t *testing.T) {
		t.Parallel()
		sess := newSession(t)
		result, err := sess.ValidateStep(ctx, person.StepIdentityDocuments, map[string]any{
			"documents": []map[string]any{
				{"type": "id_card", "number": "IC-2231"},
				{"type": person.DocumentTypePassport, "number": "P-889922"},
			},
		}, false)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.NotContains(t, result.Errors, "documents[0].expiry_date")
		assert.Equal(t, "field is required", result.Errors["documents[1].expiry_date"])
		assert.Equal(t, rules.StateRequired, result.FieldStates["documents[1].expiry_date"])
	})

	t.Run("complete documents pass", func(t *testing.T) {
		t.Parallel()
		sess := newSession(t)
		result, err := sess.ValidateStep(ctx, person.StepIdentityDocuments, map[string]any{
			"documents": []map[string]any{
				{"type": person.DocumentTypePassport, "number": "P-889922", "expiry_date": "2031-01-15"},
			},
		}, false)
		require.NoError(t, err)
		assert.True(t, result.Valid)
	})

	t.Run("empty list fails the required rule", func(t *testing.T) {
		t.Parallel()
		sess := newSession(t)
		result, err := sess.ValidateStep(ctx, person.StepIdentityDocuments, map[string]any{}, false)
		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, "field is required", result.Errors["documents"])
	})
}

func TestAddressesAndContact(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	sess := newSession(t)

	result, err := sess.ValidateStep(ctx, person.StepAddresses, map[string]any{
		"addresses": []map[string]any{
			{"street": "Main St 4", "city": "Rivertown", "postcode": "ABC"},
		},
	}, false)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "must be a valid postcode", result.Errors["addresses[0].postcode"])

	contact, err := sess.ValidateStep(ctx, person.StepContact, map[string]any{
		"email": "ana.petrova@example.org",
	}, false)
	require.NoError(t, err)
	// Phone is optional.
	assert.True(t, contact.Valid)
}

func TestFlowShape(t *testing.T) {
	t.Parallel()
	flow := person.Flow()
	assert.Equal(t, "person_registration", flow.Name)
	require.Len(t, flow.Steps, 4)
	assert.Empty(t, flow.OptionalSteps())
	for _, step := range flow.Steps {
		assert.Nil(t, step.BuildApplication)
	}
}
