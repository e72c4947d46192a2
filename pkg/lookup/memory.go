package lookup

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/govform/licensekit/pkg/eligibility"
)

type personRecord struct {
	licenses []eligibility.HeldLicense
	permit   *eligibility.HeldPermit
}

// Memory is an in-process registry. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[uuid.UUID]personRecord
	now     func() time.Time
}

// MemoryOption configures a Memory registry.
type MemoryOption func(*Memory)

// WithMemoryClock overrides the time source, mainly for tests.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty in-memory registry.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		records: make(map[uuid.UUID]personRecord),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddLicense records a held license for a person.
func (m *Memory) AddLicense(personID uuid.UUID, license eligibility.HeldLicense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[personID]
	rec.licenses = append(rec.licenses, license)
	m.records[personID] = rec
}

// SetPermit records a learner's permit for a person, replacing any previous
// one.
func (m *Memory) SetPermit(personID uuid.UUID, permit eligibility.HeldPermit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.records[personID]
	rec.permit = &permit
	m.records[personID] = rec
}

// Remove drops every record of a person.
func (m *Memory) Remove(personID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, personID)
}

// Check implements eligibility.Registry.
func (m *Memory) Check(ctx context.Context, personID uuid.UUID) (eligibility.ExistingLicenseCheck, error) {
	if err := ctx.Err(); err != nil {
		return eligibility.ExistingLicenseCheck{}, err
	}

	m.mu.RLock()
	rec, ok := m.records[personID]
	m.mu.RUnlock()
	if !ok {
		return eligibility.ExistingLicenseCheck{}, nil
	}

	return buildCheck(rec.licenses, rec.permit, m.now()), nil
}

// buildCheck derives the check semantics shared by every registry backend:
// unexpired licenses are active, lapsed ones land on MustRenew, and a permit
// counts only while unexpired.
func buildCheck(licenses []eligibility.HeldLicense, permit *eligibility.HeldPermit, now time.Time) eligibility.ExistingLicenseCheck {
	var check eligibility.ExistingLicenseCheck
	for _, lic := range licenses {
		if lic.ExpiresAt.IsZero() || lic.ExpiresAt.After(now) {
			check.ActiveLicenses = append(check.ActiveLicenses, lic)
		} else if !slices.Contains(check.MustRenew, lic.Category) {
			check.MustRenew = append(check.MustRenew, lic.Category)
		}
	}
	check.HasActiveLicenses = len(check.ActiveLicenses) > 0
	slices.Sort(check.MustRenew)

	if permit != nil && permit.ExpiresAt.After(now) {
		p := *permit
		check.HasLearnersPermit = true
		check.LearnersPermit = &p
	}
	return check
}
