package rules_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govform/licensekit/pkg/rules"
)

var (
	emailRe        = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	documentNumRe  = regexp.MustCompile(`^[A-Z0-9]+$`)
	personalCodeRe = regexp.MustCompile(`^[0-9]{11}$`)
)

func personalDetailsSet() *rules.RuleSet {
	return rules.NewRuleSet().
		Field("first_name", rules.Required(), rules.MaxLen(50)).
		Field("surname", rules.Required(), rules.MaxLen(50)).
		Field("personal_code", rules.Required(), rules.Pattern(personalCodeRe, "must be an 11-digit code")).
		Field("email_address", rules.Pattern(emailRe, "invalid email address")).
		Field("height_cm", rules.Range(50, 250))
}

func documentsSet() *rules.RuleSet {
	return rules.NewRuleSet().
		Field("identity_documents", rules.Required(), rules.Each(
			rules.NewRuleSet().
				Field("document_type", rules.Required()).
				Field("document_number", rules.Required(), rules.Pattern(documentNumRe, "invalid document number")).
				Field("expiry_date", rules.RequiredWhen("document_type", "passport", "travel_document")),
		))
}

func TestValidateField_RequiredVsOptionalOnEmpty(t *testing.T) {
	t.Parallel()
	set := personalDetailsSet()

	t.Run("optional field empty resolves to default", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateField(set, "email_address", "", nil)
		assert.True(t, res.Valid)
		assert.Equal(t, rules.StateDefault, res.State)
		assert.Empty(t, res.Error)
	})

	t.Run("required field empty resolves to required", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateField(set, "surname", "", nil)
		assert.False(t, res.Valid)
		assert.Equal(t, rules.StateRequired, res.State)
		assert.Equal(t, "field is required", res.Error)
	})

	t.Run("whitespace only counts as empty", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateField(set, "surname", "   ", nil)
		assert.Equal(t, rules.StateRequired, res.State)
	})

	t.Run("optional field empty is never format-invalid", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateField(set, "email_address", nil, nil)
		assert.True(t, res.Valid)
		assert.Equal(t, rules.StateDefault, res.State)
	})

	t.Run("undeclared field resolves to default", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateField(set, "nickname", "zed", nil)
		assert.True(t, res.Valid)
		assert.Equal(t, rules.StateDefault, res.State)
	})
}

func TestValidateField_FormatAndRange(t *testing.T) {
	t.Parallel()
	set := personalDetailsSet()

	t.Run("pattern failure uses declared message", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateField(set, "email_address", "not-an-email", nil)
		assert.False(t, res.Valid)
		assert.Equal(t, rules.StateInvalid, res.State)
		assert.Equal(t, "invalid email address", res.Error)
	})

	t.Run("pattern success", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateField(set, "email_address", "a@b.example", nil)
		assert.True(t, res.Valid)
		assert.Equal(t, rules.StateValid, res.State)
	})

	t.Run("numeric range", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateField(set, "height_cm", 30, nil)
		assert.False(t, res.Valid)
		assert.Equal(t, rules.StateInvalid, res.State)

		res = rules.ValidateField(set, "height_cm", "182", nil)
		assert.True(t, res.Valid)
	})

	t.Run("non-numeric value on range rule", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateField(set, "height_cm", "tall", nil)
		assert.False(t, res.Valid)
		assert.Equal(t, "must be a number", res.Error)
	})
}

func TestValidateStep_CollectAll(t *testing.T) {
	t.Parallel()
	set := personalDetailsSet()

	res := rules.ValidateStep(set, map[string]any{
		"first_name":    "",
		"surname":       "",
		"personal_code": "12ab",
		"email_address": "broken",
	})

	require.False(t, res.Valid)
	// No abort-early: every failure is collected in one pass.
	assert.Len(t, res.Errors, 4)
	assert.Equal(t, rules.StateRequired, res.FieldStates["first_name"])
	assert.Equal(t, rules.StateRequired, res.FieldStates["surname"])
	assert.Equal(t, rules.StateInvalid, res.FieldStates["personal_code"])
	assert.Equal(t, rules.StateInvalid, res.FieldStates["email_address"])
	assert.Equal(t, rules.StateDefault, res.FieldStates["height_cm"])
}

func TestValidateStep_ValidSnapshot(t *testing.T) {
	t.Parallel()
	set := personalDetailsSet()

	res := rules.ValidateStep(set, map[string]any{
		"first_name":    "Maarja",
		"surname":       "Tamm",
		"personal_code": "48501019999",
		"email_address": "maarja@example.org",
		"height_cm":     168,
	})

	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	for path, state := range res.FieldStates {
		assert.Equal(t, rules.StateValid, state, "field %s", path)
	}
}

func TestValidateStep_NestedSequences(t *testing.T) {
	t.Parallel()
	set := documentsSet()

	t.Run("missing sequence is a required failure", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateStep(set, map[string]any{})
		require.False(t, res.Valid)
		assert.Equal(t, rules.StateRequired, res.FieldStates["identity_documents"])
		assert.Equal(t, "field is required", res.Errors["identity_documents"])
	})

	t.Run("nested errors use indexed paths", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateStep(set, map[string]any{
			"identity_documents": []map[string]any{
				{"document_type": "id_card", "document_number": "AA123456"},
				{"document_type": "passport", "document_number": ""},
			},
		})

		require.False(t, res.Valid)
		assert.Equal(t, rules.StateValid, res.FieldStates["identity_documents"])
		assert.Equal(t, rules.StateValid, res.FieldStates["identity_documents[0].document_number"])
		assert.Equal(t, rules.StateRequired, res.FieldStates["identity_documents[1].document_number"])
		assert.Contains(t, res.Errors, "identity_documents[1].document_number")
	})

	t.Run("conditional requirement is re-derived per entry", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateStep(set, map[string]any{
			"identity_documents": []map[string]any{
				{"document_type": "id_card", "document_number": "AA123456"},
				{"document_type": "passport", "document_number": "BB654321"},
			},
		})

		require.False(t, res.Valid)
		// Expiry is optional for the id card but required for the passport.
		assert.Equal(t, rules.StateDefault, res.FieldStates["identity_documents[0].expiry_date"])
		assert.Equal(t, rules.StateRequired, res.FieldStates["identity_documents[1].expiry_date"])
	})

	t.Run("generic entry maps are accepted", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateStep(set, map[string]any{
			"identity_documents": []any{
				map[string]any{"document_type": "id_card", "document_number": "AA123456"},
			},
		})
		assert.True(t, res.Valid)
	})

	t.Run("malformed sequence shape is invalid not a panic", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateStep(set, map[string]any{
			"identity_documents": "not a list",
		})
		require.False(t, res.Valid)
		assert.Equal(t, rules.StateInvalid, res.FieldStates["identity_documents"])
		assert.Equal(t, "must be a list of records", res.Errors["identity_documents"])
	})
}

func TestValidateStep_ConditionalRequirementTopLevel(t *testing.T) {
	t.Parallel()
	set := rules.NewRuleSet().
		Field("residency_status", rules.Required()).
		Field("residence_permit_number", rules.RequiredWhen("residency_status", "foreign_resident"))

	t.Run("condition unmet leaves field optional", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateStep(set, map[string]any{"residency_status": "citizen"})
		assert.True(t, res.Valid)
		assert.Equal(t, rules.StateDefault, res.FieldStates["residence_permit_number"])
	})

	t.Run("condition met makes field required", func(t *testing.T) {
		t.Parallel()
		res := rules.ValidateStep(set, map[string]any{"residency_status": "foreign_resident"})
		require.False(t, res.Valid)
		assert.Equal(t, rules.StateRequired, res.FieldStates["residence_permit_number"])
	})
}

func TestValidateStep_PassesAgree(t *testing.T) {
	t.Parallel()
	set := personalDetailsSet()

	// The reconciliation pass must never disagree with the collect-all pass:
	// a failing state always has an error and vice versa.
	snapshots := []map[string]any{
		{},
		{"first_name": "A"},
		{"first_name": "A", "surname": "B", "personal_code": "48501019999"},
		{"personal_code": "nope", "email_address": "x"},
	}
	for _, data := range snapshots {
		res := rules.ValidateStep(set, data)
		for path, state := range res.FieldStates {
			if state.Failed() {
				assert.Contains(t, res.Errors, path)
			} else {
				assert.NotContains(t, res.Errors, path)
			}
		}
		assert.Equal(t, len(res.Errors) == 0, res.Valid)
	}
}

func TestValidationResult_Clone(t *testing.T) {
	t.Parallel()
	set := personalDetailsSet()
	res := rules.ValidateStep(set, map[string]any{})

	clone := res.Clone()
	clone.Errors["extra"] = "boom"
	clone.FieldStates["extra"] = rules.StateInvalid

	assert.NotContains(t, res.Errors, "extra")
	assert.NotContains(t, res.FieldStates, "extra")
}
