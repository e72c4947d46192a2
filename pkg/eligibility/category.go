package eligibility

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category is a driver's-license category code such as "AM", "A", "B", "BE",
// "C" or "D".
type Category string

// ApplicationType distinguishes the intake flows that carry different
// verification and fee rules.
type ApplicationType string

const (
	// ApplicationNew is a first-time license application.
	ApplicationNew ApplicationType = "new"
	// ApplicationRenewal renews an existing license; the existing license
	// must be on record or verified manually.
	ApplicationRenewal ApplicationType = "renewal"
	// ApplicationUpgrade adds categories to an existing entitlement; a
	// learner's permit must be on record or verified manually.
	ApplicationUpgrade ApplicationType = "upgrade"
	// ApplicationLearnerPermit applies for a learner's permit; some
	// categories are not available on this type.
	ApplicationLearnerPermit ApplicationType = "learner_permit"
	// ApplicationDuplicate replaces a lost or damaged card.
	ApplicationDuplicate ApplicationType = "duplicate"
)

// CategoryRule declares the constraints of one license category.
type CategoryRule struct {
	// MinAge is the minimum applicant age in full years.
	MinAge int `yaml:"min_age"`
	// Prerequisites are categories the applicant must already hold or be
	// concurrently applying for.
	Prerequisites []Category `yaml:"prerequisites,omitempty"`
	// ExclusiveWith lists categories that cannot be combined with this one
	// in a single application.
	ExclusiveWith []Category `yaml:"exclusive_with,omitempty"`
	// LearnerPermit reports whether the category is available on
	// learner's-permit applications.
	LearnerPermit bool `yaml:"learner_permit"`
}

// RuleTable maps every known category to its rule. Loaded once at startup;
// read-only afterwards.
type RuleTable map[Category]CategoryRule

// HeldLicense is a license category the person already holds.
type HeldLicense struct {
	Category  Category  `json:"category"`
	Number    string    `json:"number"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HeldPermit is a learner's permit the person already holds.
type HeldPermit struct {
	Categories []Category `json:"categories"`
	Number     string     `json:"number"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

// ExistingLicenseCheck is the outcome of an existing-record lookup. The zero
// value means "no records found" and is the conservative fallback when the
// lookup fails.
type ExistingLicenseCheck struct {
	HasActiveLicenses bool          `json:"has_active_licenses"`
	ActiveLicenses    []HeldLicense `json:"active_licenses,omitempty"`
	HasLearnersPermit bool          `json:"has_learners_permit"`
	LearnersPermit    *HeldPermit   `json:"learners_permit,omitempty"`
	// MustRenew lists categories whose license has lapsed and has to be
	// renewed before or together with this application.
	MustRenew []Category `json:"must_renew,omitempty"`
}

// Registry looks up a person's existing licenses and permits. Implementations
// are expected to be network-backed; see pkg/lookup for the provided ones.
type Registry interface {
	Check(ctx context.Context, personID uuid.UUID) (ExistingLicenseCheck, error)
}
