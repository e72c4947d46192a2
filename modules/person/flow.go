// Package person defines the person-registration wizard: the flow clerks
// use to register a new applicant or edit an existing one.
package person

import (
	"regexp"

	"github.com/govform/licensekit"
	"github.com/govform/licensekit/pkg/rules"
	"github.com/govform/licensekit/pkg/wizard"
)

// Step indexes into Flow().Steps.
const (
	StepPersonalDetails = iota
	StepIdentityDocuments
	StepAddresses
	StepContact
)

var (
	namePattern     = regexp.MustCompile(`^[\p{L} '-]+$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	personalIDRe    = regexp.MustCompile(`^\d{11}$`)
	postcodePattern = regexp.MustCompile(`^\d{4,6}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[\d\s-]{6,20}$`)
)

// DocumentTypePassport marks the identity document type whose entries
// require an expiry date.
const DocumentTypePassport = "passport"

// Flow returns the person wizard definition. The returned value is freshly
// built on each call; callers may hold it for the process lifetime.
func Flow() licensekit.Flow {
	documentRules := rules.NewRuleSet().
		Field("type", rules.Required()).
		Field("number", rules.Required(), rules.MinLen(4), rules.MaxLen(32)).
		Field("expiry_date", rules.RequiredWhen("type", DocumentTypePassport), rules.Pattern(datePattern, "must be a date in YYYY-MM-DD format"))

	addressRules := rules.NewRuleSet().
		Field("street", rules.Required(), rules.MaxLen(120)).
		Field("city", rules.Required(), rules.MaxLen(80)).
		Field("postcode", rules.Required(), rules.Pattern(postcodePattern, "must be a valid postcode"))

	return licensekit.Flow{
		Name: "person_registration",
		Mode: wizard.ModePerson,
		Steps: []licensekit.StepDefinition{
			{
				Name: "personal_details",
				Rules: rules.NewRuleSet().
					Field("first_name", rules.Required(), rules.Pattern(namePattern, "must contain only letters"), rules.MaxLen(80)).
					Field("last_name", rules.Required(), rules.Pattern(namePattern, "must contain only letters"), rules.MaxLen(80)).
					Field("birth_date", rules.Required(), rules.Pattern(datePattern, "must be a date in YYYY-MM-DD format")).
					Field("personal_id", rules.Required(), rules.Pattern(personalIDRe, "must be an 11 digit personal number")),
			},
			{
				Name: "identity_documents",
				Rules: rules.NewRuleSet().
					Field("documents", rules.Required(), rules.Each(documentRules)),
			},
			{
				Name: "addresses",
				Rules: rules.NewRuleSet().
					Field("addresses", rules.Required(), rules.Each(addressRules)),
			},
			{
				Name: "contact",
				Rules: rules.NewRuleSet().
					Field("email", rules.Required(), rules.Pattern(emailPattern, "must be a valid email address")).
					Field("phone", rules.Pattern(phonePattern, "must be a valid phone number")),
			},
		},
	}
}
