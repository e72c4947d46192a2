package eligibility

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// msgEvaluationFailed is the generic message returned when rule evaluation
// itself fails; the engine never propagates internal faults to its caller.
const msgEvaluationFailed = "Validation failed — please check requirements"

// AgeViolation records one category whose minimum age the applicant has not
// reached.
type AgeViolation struct {
	Category    Category
	RequiredAge int
	CurrentAge  int
}

// ExternalVerification carries clerk-supplied evidence for records that never
// entered the system digitally: a permit or license presented on paper.
type ExternalVerification struct {
	VerifiedByClerk bool
	LicenseNumber   string
	ExpiresAt       time.Time
}

// Valid reports whether the evidence is usable: confirmed by a clerk, with a
// document number and an unexpired document.
func (v *ExternalVerification) Valid(now time.Time) bool {
	return v != nil && v.VerifiedByClerk && strings.TrimSpace(v.LicenseNumber) != "" && v.ExpiresAt.After(now)
}

// Application is the unit the engine evaluates: the selection plus the
// applicant facts it is judged against.
type Application struct {
	Type       ApplicationType
	Categories []Category
	BirthDate  time.Time
	PersonID   uuid.UUID

	// LearnerPermit is the clerk-verified permit for upgrade applications
	// when the registry has no record of one.
	LearnerPermit *ExternalVerification
	// ExistingLicense is the clerk-verified license for renewal applications
	// when the registry has no record of one.
	ExistingLicense *ExternalVerification
}

// BusinessValidationResult is the structured outcome of an application
// evaluation. Each violation kind is reported separately so the UI can render
// categorized guidance.
type BusinessValidationResult struct {
	Valid                bool
	Message              string
	AgeViolations        []AgeViolation
	MissingPrerequisites []Category
	InvalidCombinations  []string
	// RequiresManualVerification is set when a required permit or license is
	// not on record and clerk verification decides the outcome.
	RequiresManualVerification bool
	// MustRenew lists lapsed categories reported by the registry.
	MustRenew []Category
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry attaches an existing-license registry. Without one every
// applicant is treated as having no records on file.
func WithRegistry(r Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger used for degraded-lookup warnings.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine evaluates business constraints against read-only rule and fee
// tables. Safe for concurrent use; it holds no mutable state.
type Engine struct {
	rules    RuleTable
	fees     FeeTable
	registry Registry
	now      func() time.Time
	log      *slog.Logger
}

// NewEngine creates an engine over the given tables.
func NewEngine(rules RuleTable, fees FeeTable, opts ...Option) *Engine {
	e := &Engine{
		rules: rules,
		fees:  fees,
		now:   time.Now,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CalculateAge returns the applicant's age in full years at the current time,
// accounting for whether the birthday has occurred this year.
func (e *Engine) CalculateAge(birthDate time.Time) int {
	now := e.now()
	age := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// SuggestedCategories computes the minimal set of prerequisite categories
// missing from the selection, following prerequisite chains to a fixpoint.
// It is a pure read: the caller applies the suggestion explicitly and must
// surface a notice to the user when it does.
func (e *Engine) SuggestedCategories(categories []Category) []Category {
	present := make(map[Category]bool, len(categories))
	for _, c := range categories {
		present[c] = true
	}

	var suggested []Category
	queue := slices.Clone(categories)
	for len(queue) > 0 {
		cat := queue[0]
		queue = queue[1:]
		rule, ok := e.rules[cat]
		if !ok {
			continue
		}
		for _, prereq := range rule.Prerequisites {
			if present[prereq] {
				continue
			}
			present[prereq] = true
			suggested = append(suggested, prereq)
			queue = append(queue, prereq)
		}
	}

	slices.Sort(suggested)
	return suggested
}

// CheckExistingLicenses queries the registry for a person's records. Returns
// ErrNoRegistry when no registry is configured.
func (e *Engine) CheckExistingLicenses(ctx context.Context, personID uuid.UUID) (ExistingLicenseCheck, error) {
	if e.registry == nil {
		return ExistingLicenseCheck{}, ErrNoRegistry
	}
	return e.registry.Check(ctx, personID)
}

// EvaluateApplication judges a full application. It never returns an error
// and never panics: lookup failures degrade to "no records found" and
// internal faults become a generic invalid result.
func (e *Engine) EvaluateApplication(ctx context.Context, app Application) (result BusinessValidationResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("business rule evaluation panicked",
				slog.Any("cause", r),
				slog.String("application_type", string(app.Type)),
			)
			result = BusinessValidationResult{Valid: false, Message: msgEvaluationFailed}
		}
	}()

	categories := dedupeCategories(app.Categories)
	now := e.now()
	age := e.CalculateAge(app.BirthDate)

	for _, cat := range categories {
		rule, ok := e.rules[cat]
		if !ok {
			result.InvalidCombinations = append(result.InvalidCombinations,
				fmt.Sprintf("unknown license category %q", cat))
			continue
		}
		if age < rule.MinAge {
			result.AgeViolations = append(result.AgeViolations, AgeViolation{
				Category:    cat,
				RequiredAge: rule.MinAge,
				CurrentAge:  age,
			})
		}
	}

	check := e.lookupExisting(ctx, app.PersonID)
	result.MustRenew = slices.Clone(check.MustRenew)

	held := make(map[Category]bool)
	for _, lic := range check.ActiveLicenses {
		if lic.ExpiresAt.IsZero() || lic.ExpiresAt.After(now) {
			held[lic.Category] = true
		}
	}
	applying := make(map[Category]bool, len(categories))
	for _, cat := range categories {
		applying[cat] = true
	}

	for _, cat := range categories {
		rule, ok := e.rules[cat]
		if !ok {
			continue
		}
		for _, prereq := range rule.Prerequisites {
			if !held[prereq] && !applying[prereq] &&
				!slices.Contains(result.MissingPrerequisites, prereq) {
				result.MissingPrerequisites = append(result.MissingPrerequisites, prereq)
			}
		}
	}
	slices.Sort(result.MissingPrerequisites)

	e.checkCombinations(&result, app.Type, categories)

	verificationOK := e.checkExternalRecords(&result, app, check, now)

	result.Valid = len(result.AgeViolations) == 0 &&
		len(result.MissingPrerequisites) == 0 &&
		len(result.InvalidCombinations) == 0 &&
		verificationOK
	result.Message = summarize(result, verificationOK)
	return result
}

// lookupExisting degrades a failed or missing registry to the zero-value
// check, which is the conservative "nothing on record" answer.
func (e *Engine) lookupExisting(ctx context.Context, personID uuid.UUID) ExistingLicenseCheck {
	if e.registry == nil {
		return ExistingLicenseCheck{}
	}
	check, err := e.registry.Check(ctx, personID)
	if err != nil {
		e.log.Warn("existing license lookup failed, treating as no records found",
			slog.String("person_id", personID.String()),
			slog.Any("error", err),
		)
		return ExistingLicenseCheck{}
	}
	return check
}

func (e *Engine) checkCombinations(result *BusinessValidationResult, appType ApplicationType, categories []Category) {
	if appType == ApplicationLearnerPermit {
		for _, cat := range categories {
			rule, ok := e.rules[cat]
			if ok && !rule.LearnerPermit {
				result.InvalidCombinations = append(result.InvalidCombinations,
					fmt.Sprintf("category %s is not available on a learner's permit application", cat))
			}
		}
	}

	for i, a := range categories {
		ruleA, ok := e.rules[a]
		if !ok {
			continue
		}
		for _, b := range categories[i+1:] {
			if slices.Contains(ruleA.ExclusiveWith, b) {
				result.InvalidCombinations = append(result.InvalidCombinations,
					fmt.Sprintf("categories %s and %s cannot be combined in one application", a, b))
			}
		}
	}
}

// checkExternalRecords handles the trapdoor for paper records: upgrades need
// a learner's permit and renewals an existing license. When the registry has
// neither, validity depends on clerk-supplied verification instead.
func (e *Engine) checkExternalRecords(result *BusinessValidationResult, app Application, check ExistingLicenseCheck, now time.Time) bool {
	switch app.Type {
	case ApplicationUpgrade:
		if check.HasLearnersPermit && check.LearnersPermit != nil && check.LearnersPermit.ExpiresAt.After(now) {
			return true
		}
		result.RequiresManualVerification = true
		return app.LearnerPermit.Valid(now)
	case ApplicationRenewal, ApplicationDuplicate:
		if check.HasActiveLicenses || len(check.MustRenew) > 0 {
			return true
		}
		result.RequiresManualVerification = true
		return app.ExistingLicense.Valid(now)
	default:
		return true
	}
}

func summarize(result BusinessValidationResult, verificationOK bool) string {
	var parts []string
	if len(result.AgeViolations) > 0 {
		parts = append(parts, "minimum age requirements not met")
	}
	if len(result.MissingPrerequisites) > 0 {
		parts = append(parts, "prerequisite categories missing")
	}
	if len(result.InvalidCombinations) > 0 {
		parts = append(parts, "invalid category selection")
	}
	if !verificationOK {
		parts = append(parts, "required permit or license could not be verified")
	}
	return strings.Join(parts, "; ")
}

func dedupeCategories(categories []Category) []Category {
	seen := make(map[Category]bool, len(categories))
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}
