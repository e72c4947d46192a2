// Package application defines the license-application wizard: category
// selection with business constraint checks, supporting documents, optional
// delivery preferences and payment.
package application

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/govform/licensekit"
	"github.com/govform/licensekit/pkg/eligibility"
	"github.com/govform/licensekit/pkg/rules"
	"github.com/govform/licensekit/pkg/wizard"
)

// Step indexes into Flow().Steps.
const (
	StepApplicant = iota
	StepCategories
	StepDocuments
	StepDelivery
	StepPayment
)

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	postcodePattern = regexp.MustCompile(`^\d{4,6}$`)
	ibanPattern     = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{10,30}$`)
)

// Flow returns the application wizard definition.
//
// The categories step carries the business hook: whenever the step snapshot
// contains an application type, a birth date and at least one category, the
// selection is evaluated against the category rule table and any violation
// is attached to the "categories" field.
func Flow() licensekit.Flow {
	documentRules := rules.NewRuleSet().
		Field("kind", rules.Required()).
		Field("reference", rules.Required(), rules.MinLen(3), rules.MaxLen(64))

	return licensekit.Flow{
		Name: "license_application",
		Mode: wizard.ModeApplication,
		Steps: []licensekit.StepDefinition{
			{
				Name: "applicant",
				Rules: rules.NewRuleSet().
					Field("person_id", rules.Required()).
					Field("birth_date", rules.Required(), rules.Pattern(datePattern, "must be a date in YYYY-MM-DD format")),
			},
			{
				Name: "categories",
				Rules: rules.NewRuleSet().
					Field("application_type", rules.Required()).
					Field("categories", rules.Required()),
				BusinessField:    "categories",
				BuildApplication: buildApplication,
			},
			{
				Name: "documents",
				Rules: rules.NewRuleSet().
					Field("documents", rules.Required(), rules.Each(documentRules)),
			},
			{
				Name:     "delivery",
				Optional: true,
				Rules: rules.NewRuleSet().
					Field("street", rules.RequiredWhen("method", "mail"), rules.MaxLen(120)).
					Field("city", rules.RequiredWhen("method", "mail"), rules.MaxLen(80)).
					Field("postcode", rules.RequiredWhen("method", "mail"), rules.Pattern(postcodePattern, "must be a valid postcode")),
			},
			{
				Name: "payment",
				Rules: rules.NewRuleSet().
					Field("method", rules.Required()).
					Field("iban", rules.RequiredWhen("method", "bank_transfer"), rules.Pattern(ibanPattern, "must be a valid IBAN")),
			},
		},
	}
}

// buildApplication extracts a business application from the categories step
// snapshot. It returns false while the snapshot is still missing any of the
// facts the engine needs; incompleteness is not a validation failure, the
// field rules report those separately.
func buildApplication(data map[string]any) (eligibility.Application, bool) {
	appType, _ := data["application_type"].(string)
	if appType == "" {
		return eligibility.Application{}, false
	}

	categories := categoryList(data["categories"])
	if len(categories) == 0 {
		return eligibility.Application{}, false
	}

	birthDate, ok := parseDate(data["birth_date"])
	if !ok {
		return eligibility.Application{}, false
	}

	app := eligibility.Application{
		Type:       eligibility.ApplicationType(appType),
		Categories: categories,
		BirthDate:  birthDate,
	}
	if raw, ok := data["person_id"].(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			app.PersonID = id
		}
	}
	app.LearnerPermit = parseVerification(data, "permit")
	app.ExistingLicense = parseVerification(data, "license")
	return app, true
}

func categoryList(value any) []eligibility.Category {
	var out []eligibility.Category
	switch v := value.(type) {
	case []eligibility.Category:
		out = append(out, v...)
	case []string:
		for _, s := range v {
			out = append(out, eligibility.Category(s))
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, eligibility.Category(s))
			}
		}
	}
	return out
}

func parseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case string:
		t, err := time.Parse("2006-01-02", v)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

// parseVerification reads the clerk-verification fields for a paper permit
// or license: <prefix>_verified, <prefix>_number, <prefix>_expiry.
func parseVerification(data map[string]any, prefix string) *eligibility.ExternalVerification {
	verified, _ := data[prefix+"_verified"].(bool)
	number, _ := data[prefix+"_number"].(string)
	if !verified && number == "" {
		return nil
	}
	v := &eligibility.ExternalVerification{
		VerifiedByClerk: verified,
		LicenseNumber:   number,
	}
	if expiry, ok := parseDate(data[prefix+"_expiry"]); ok {
		v.ExpiresAt = expiry
	}
	return v
}
