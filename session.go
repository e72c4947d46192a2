package licensekit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/govform/licensekit/pkg/eligibility"
	"github.com/govform/licensekit/pkg/rules"
	"github.com/govform/licensekit/pkg/validcache"
	"github.com/govform/licensekit/pkg/wizard"
)

// StepResult couples field-level validation with the business outcome of one
// step. Business is nil for steps without a business hook, or when the
// collected data was not complete enough to evaluate.
type StepResult struct {
	rules.ValidationResult
	Business *eligibility.BusinessValidationResult
}

// SessionOption configures a Session.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	log         *slog.Logger
	cacheOpts   []validcache.Option
	machineOpts []wizard.Option
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(log *slog.Logger) SessionOption {
	return func(c *sessionConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// WithCacheOptions forwards options to the session's validation cache.
func WithCacheOptions(opts ...validcache.Option) SessionOption {
	return func(c *sessionConfig) {
		c.cacheOpts = append(c.cacheOpts, opts...)
	}
}

// WithMachineOptions forwards options to the session's step machine.
func WithMachineOptions(opts ...wizard.Option) SessionOption {
	return func(c *sessionConfig) {
		c.machineOpts = append(c.machineOpts, opts...)
	}
}

// Session is one user's run through a flow. It owns a step machine and a
// validation cache, and delegates business evaluation to a shared engine.
// All methods are safe for concurrent use. Sessions are cheap; create one
// per wizard instance and Close it when the user leaves.
type Session struct {
	flow    Flow
	machine *wizard.Machine
	cache   *validcache.Cache
	engine  *eligibility.Engine
	log     *slog.Logger
	closed  atomic.Bool

	mu       sync.Mutex
	business map[int]*eligibility.BusinessValidationResult
}

// NewSession creates a session for one run through flow.
func NewSession(flow Flow, engine *eligibility.Engine, opts ...SessionOption) (*Session, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	if len(flow.Steps) == 0 {
		return nil, ErrEmptyFlow
	}

	cfg := &sessionConfig{log: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	machineOpts := cfg.machineOpts
	for _, i := range flow.OptionalSteps() {
		machineOpts = append(machineOpts, wizard.WithOptionalStep(i))
	}
	machine, err := wizard.NewMachine(len(flow.Steps), flow.Mode, machineOpts...)
	if err != nil {
		return nil, err
	}

	return &Session{
		flow:     flow,
		machine:  machine,
		cache:    validcache.New(cfg.cacheOpts...),
		engine:   engine,
		log:      cfg.log,
		business: make(map[int]*eligibility.BusinessValidationResult),
	}, nil
}

// Flow returns the definition this session runs.
func (s *Session) Flow() Flow { return s.flow }

// ValidateStep runs the whole-step validation for one step: field rules
// first, then the step's business hook, merged into a single result. Results
// for identical data are served from the freshness cache; force bypasses it,
// which submission paths should always do.
//
// The step machine is updated with the outcome, so validity-derived
// navigation reflects the latest run.
func (s *Session) ValidateStep(ctx context.Context, step int, data map[string]any, force bool) (StepResult, error) {
	if s.closed.Load() {
		return StepResult{}, ErrSessionClosed
	}
	if step < 0 || step >= len(s.flow.Steps) {
		return StepResult{}, &wizard.ErrStepOutOfRange{Index: step, Count: len(s.flow.Steps)}
	}

	result := s.cache.Step(step, data, force, func() rules.ValidationResult {
		return s.evaluateStep(ctx, step, data)
	})

	if err := s.machine.SetStepValidity(step, result.Valid, len(result.Errors) > 0); err != nil {
		return StepResult{}, err
	}
	return StepResult{ValidationResult: result, Business: s.businessResult(step)}, nil
}

// evaluateStep is the uncached whole-step evaluation: field rules merged
// with the business outcome when the step defines a hook.
func (s *Session) evaluateStep(ctx context.Context, step int, data map[string]any) rules.ValidationResult {
	def := s.flow.Steps[step]

	result := rules.ValidateStep(def.Rules, data)

	if def.BuildApplication == nil {
		return result
	}
	app, ok := def.BuildApplication(data)
	if !ok {
		s.setBusinessResult(step, nil)
		return result
	}

	biz := s.engine.EvaluateApplication(ctx, app)
	s.setBusinessResult(step, &biz)
	if biz.Valid {
		return result
	}

	merged := result.Clone()
	merged.Valid = false
	if def.BusinessField != "" && !merged.HasError(def.BusinessField) {
		merged.Errors[def.BusinessField] = biz.Message
		merged.FieldStates[def.BusinessField] = rules.StateInvalid
	}
	return merged
}

// ValidateAllSteps validates every step against its data slice entry,
// bypassing the freshness cache. It is the submission gate: every step is
// re-validated even if a cached result exists.
func (s *Session) ValidateAllSteps(ctx context.Context, data []map[string]any) ([]StepResult, error) {
	if len(data) != len(s.flow.Steps) {
		return nil, ErrDataLengthMismatch
	}
	results := make([]StepResult, len(data))
	for i, stepData := range data {
		result, err := s.ValidateStep(ctx, i, stepData, true)
		if err != nil {
			return nil, err
		}
		results[i] = result
	}
	return results, nil
}

// DebouncedValidateField schedules a single-field validation after the quiet
// period and returns the best currently-known result immediately. onResult
// fires on the timer goroutine when the evaluation lands; it is skipped when
// superseded by newer input.
func (s *Session) DebouncedValidateField(step int, field string, value any, data map[string]any, onResult func(rules.FieldResult)) (rules.FieldResult, error) {
	def, err := s.stepDef(step)
	if err != nil {
		return rules.FieldResult{}, err
	}
	return s.cache.DebouncedField(step, field, func() rules.FieldResult {
		return rules.ValidateField(def.Rules, field, value, data)
	}, onResult), nil
}

// ImmediateValidateField validates a single field synchronously, cancelling
// any pending debounced run for the same field. Used on blur and submit.
func (s *Session) ImmediateValidateField(step int, field string, value any, data map[string]any) (rules.FieldResult, error) {
	def, err := s.stepDef(step)
	if err != nil {
		return rules.FieldResult{}, err
	}
	return s.cache.ImmediateField(step, field, func() rules.FieldResult {
		return rules.ValidateField(def.Rules, field, value, data)
	}), nil
}

// FieldState returns the cached result for a field without triggering any
// evaluation. Unknown fields report the neutral result.
func (s *Session) FieldState(step int, field string) rules.FieldResult {
	if result, ok := s.cache.Field(step, field); ok {
		return result
	}
	return validcache.Neutral()
}

// CheckExistingLicenses queries the registry on a background goroutine and
// delivers the outcome to onResult. Lookup failures are logged and delivered
// as-is; callers treat them as "no records found".
func (s *Session) CheckExistingLicenses(ctx context.Context, personID uuid.UUID, onResult func(eligibility.ExistingLicenseCheck, error)) {
	if s.closed.Load() {
		return
	}
	go func() {
		check, err := s.engine.CheckExistingLicenses(ctx, personID)
		if err != nil {
			s.log.Warn("existing license check failed",
				slog.String("person_id", personID.String()),
				slog.Any("error", err),
			)
		}
		if onResult != nil && !s.closed.Load() {
			onResult(check, err)
		}
	}()
}

// SuggestedCategories returns the prerequisite categories missing from a
// selection. A UI should apply the suggestion explicitly and tell the user
// what was added, never silently.
func (s *Session) SuggestedCategories(categories []eligibility.Category) []eligibility.Category {
	return s.engine.SuggestedCategories(categories)
}

// ApplicationFees resolves the fee lines for a type and category selection,
// for display on the payment step. Duplicate categories and ordering cannot
// change the outcome.
func (s *Session) ApplicationFees(appType eligibility.ApplicationType, categories []eligibility.Category) []eligibility.FeeLine {
	return s.engine.CalculateApplicationFees(appType, categories)
}

// SetActiveStep navigates to a step, subject to the clickability rule.
func (s *Session) SetActiveStep(step int) error {
	return s.machine.SetActiveStep(step)
}

// ActiveStep returns the current step index.
func (s *Session) ActiveStep() int { return s.machine.ActiveStep() }

// MarkStepVisited records that a step has been shown to the user.
func (s *Session) MarkStepVisited(step int) error {
	return s.machine.MarkVisited(step)
}

// MarkStepCompleted marks a step completed. The step must currently be
// valid; completion survives later failed re-validations until Reset.
func (s *Session) MarkStepCompleted(step int) error {
	return s.machine.MarkCompleted(step)
}

// IsStepClickable reports whether navigating to a step is allowed right now.
func (s *Session) IsStepClickable(step int) bool {
	return s.machine.IsStepClickable(step)
}

// IsStepComplete reports whether a step has been completed.
func (s *Session) IsStepComplete(step int) bool {
	state, err := s.machine.Step(step)
	return err == nil && state.Completed
}

// StepIcon returns the navigation icon for a step.
func (s *Session) StepIcon(step int) string {
	return s.machine.StepIcon(step)
}

// Submittable reports whether every required step is valid.
func (s *Session) Submittable() bool {
	return s.machine.Submittable()
}

// State returns a snapshot of the wizard's navigation state.
func (s *Session) State() wizard.WizardState {
	return s.machine.State()
}

// InitializeForExistingPerson seeds the session for editing an existing
// record: every step becomes visited and reachable, but none is completed
// or valid until its data passes validation again.
func (s *Session) InitializeForExistingPerson() {
	s.machine.InitializeForExisting()
}

// Reset returns the session to a fresh state: navigation back to step zero,
// every cached validation result dropped, pending debounces cancelled.
func (s *Session) Reset() {
	s.machine.Reset()
	s.cache.ClearAll()
	s.mu.Lock()
	s.business = make(map[int]*eligibility.BusinessValidationResult)
	s.mu.Unlock()
}

// Close releases the session. Pending debounced validations are cancelled;
// later validation calls fail with ErrSessionClosed.
func (s *Session) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.cache.Close()
	}
}

func (s *Session) stepDef(step int) (StepDefinition, error) {
	if s.closed.Load() {
		return StepDefinition{}, ErrSessionClosed
	}
	if step < 0 || step >= len(s.flow.Steps) {
		return StepDefinition{}, &wizard.ErrStepOutOfRange{Index: step, Count: len(s.flow.Steps)}
	}
	return s.flow.Steps[step], nil
}

func (s *Session) businessResult(step int) *eligibility.BusinessValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.business[step]
}

func (s *Session) setBusinessResult(step int, result *eligibility.BusinessValidationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.business[step] = result
}
