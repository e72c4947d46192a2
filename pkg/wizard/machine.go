package wizard

import (
	"fmt"
	"sync"
	"time"
)

// Mode identifies the intake flow kind a machine belongs to.
type Mode string

const (
	// ModePerson is the person registration flow.
	ModePerson Mode = "person"
	// ModeApplication is the driver's-license application flow.
	ModeApplication Mode = "application"
)

// Status is the derived state of one step.
type Status string

const (
	StatusUnvisited      Status = "unvisited"
	StatusVisitedInvalid Status = "visited_invalid"
	StatusVisitedValid   Status = "visited_valid"
	StatusCompleted      Status = "completed"
)

// StepState carries the flags of one step. Completed implies the step was
// valid at completion time; a later failed re-validation flips Valid but
// never revokes Completed (only a reset does).
type StepState struct {
	Valid           bool
	Completed       bool
	Visited         bool
	HasErrors       bool
	LastValidatedAt time.Time
}

// Status derives the step status from the flags.
func (s StepState) Status() Status {
	switch {
	case s.Completed:
		return StatusCompleted
	case !s.Visited:
		return StatusUnvisited
	case s.Valid:
		return StatusVisitedValid
	default:
		return StatusVisitedInvalid
	}
}

// WizardState is a read-only snapshot for the UI. The derived fields are
// recomputed from the step states on every snapshot.
type WizardState struct {
	Mode                Mode
	ExistingEntity      bool
	ActiveStep          int
	Steps               []StepState
	AllStepsValid       bool
	CompletedStepsCount int
	// NextAvailableStep is the first step not yet completed, or the step
	// count when every step is.
	NextAvailableStep int
	// Submittable is true when every step the mode requires is valid;
	// optional steps do not block submission.
	Submittable bool
}

// Option configures a Machine.
type Option func(*Machine)

// WithOptionalStep marks a step as not required for submittability.
func WithOptionalStep(index int) Option {
	return func(m *Machine) { m.optional[index] = true }
}

// WithExistingEntity starts the machine in existing-entity mode with every
// step visited, as InitializeForExisting does.
func WithExistingEntity() Option {
	return func(m *Machine) { m.initializeForExistingLocked() }
}

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// Machine is the navigation state machine of one wizard session. Safe for
// concurrent use: debounce callbacks may land on timer goroutines.
type Machine struct {
	mu       sync.Mutex
	mode     Mode
	existing bool
	active   int
	steps    []StepState
	optional map[int]bool
	now      func() time.Time
}

// NewMachine creates a machine for a flow of stepCount ordered steps. The
// first step starts visited and active.
func NewMachine(stepCount int, mode Mode, opts ...Option) (*Machine, error) {
	if stepCount <= 0 {
		return nil, ErrNoSteps
	}
	m := &Machine{
		mode:     mode,
		steps:    make([]StepState, stepCount),
		optional: make(map[int]bool),
		now:      time.Now,
	}
	m.steps[0].Visited = true
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// MustNewMachine is NewMachine that panics on misconfiguration.
func MustNewMachine(stepCount int, mode Mode, opts ...Option) *Machine {
	m, err := NewMachine(stepCount, mode, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create wizard machine: %v", err))
	}
	return m
}

// StepCount returns the number of steps in the flow.
func (m *Machine) StepCount() int {
	return len(m.steps)
}

func (m *Machine) checkIndex(index int) error {
	if index < 0 || index >= len(m.steps) {
		return &ErrStepOutOfRange{Index: index, Count: len(m.steps)}
	}
	return nil
}

// Mode returns the flow mode.
func (m *Machine) Mode() Mode {
	return m.mode
}

// ActiveStep returns the currently active step index.
func (m *Machine) ActiveStep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Step returns a copy of one step's state.
func (m *Machine) Step(index int) (StepState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkIndex(index); err != nil {
		return StepState{}, err
	}
	return m.steps[index], nil
}

// MarkVisited marks a step as entered. Visitedness is monotonic; only a
// reset clears it.
func (m *Machine) MarkVisited(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkIndex(index); err != nil {
		return err
	}
	m.steps[index].Visited = true
	return nil
}

// SetStepValidity records a validation outcome for a step. It updates the
// validity flags and the monotonic LastValidatedAt timestamp; it never
// touches Completed.
func (m *Machine) SetStepValidity(index int, valid, hasErrors bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkIndex(index); err != nil {
		return err
	}
	step := &m.steps[index]
	step.Valid = valid
	step.HasErrors = hasErrors
	if now := m.now(); now.After(step.LastValidatedAt) {
		step.LastValidatedAt = now
	}
	return nil
}

// MarkCompleted completes a step. Only valid steps can be completed; the
// call is idempotent.
func (m *Machine) MarkCompleted(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkIndex(index); err != nil {
		return err
	}
	step := &m.steps[index]
	if step.Completed {
		return nil
	}
	if !step.Valid {
		return &ErrStepNotValid{Index: index}
	}
	step.Completed = true
	step.Visited = true
	return nil
}

// SetActiveStep navigates to a step. Navigation is allowed only through the
// clickability gate; arriving marks the step visited.
func (m *Machine) SetActiveStep(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkIndex(index); err != nil {
		return err
	}
	if !m.clickableLocked(index) {
		return &ErrStepNotReachable{Index: index}
	}
	m.active = index
	m.steps[index].Visited = true
	return nil
}

// IsStepClickable reports whether a step is reachable right now. The check
// never validates anything as a side effect.
func (m *Machine) IsStepClickable(index int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.steps) {
		return false
	}
	return m.clickableLocked(index)
}

// clickableLocked is the reachability rule of the whole wizard:
// the active step itself, any completed step, the immediate successor of a
// valid active step, any earlier valid step, or any visited step when the
// wizard was seeded from an existing entity.
func (m *Machine) clickableLocked(index int) bool {
	switch {
	case index == m.active:
		return true
	case m.steps[index].Completed:
		return true
	case index == m.active+1 && m.steps[m.active].Valid:
		return true
	case index < m.active && m.steps[index].Valid:
		return true
	case m.existing && m.steps[index].Visited:
		return true
	default:
		return false
	}
}

// Reset returns every step to its initial state: only step 0 visited,
// nothing valid or completed, active step 0. The caller is responsible for
// clearing its validation cache alongside.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.steps {
		m.steps[i] = StepState{}
	}
	m.steps[0].Visited = true
	m.active = 0
	m.existing = false
}

// InitializeForExisting seeds the machine from a previously saved entity:
// every step becomes visited and therefore reachable, but none is completed.
// Saved data is not proof of currently valid data, so completion is
// re-derived from a fresh validation pass.
func (m *Machine) InitializeForExisting() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initializeForExistingLocked()
}

func (m *Machine) initializeForExistingLocked() {
	m.existing = true
	for i := range m.steps {
		m.steps[i].Visited = true
		m.steps[i].Completed = false
	}
}

// ExistingEntity reports whether the machine was seeded from a saved record.
func (m *Machine) ExistingEntity() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.existing
}

// Submittable reports whether every step the mode requires is valid.
func (m *Machine) Submittable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submittableLocked()
}

func (m *Machine) submittableLocked() bool {
	for i, step := range m.steps {
		if m.optional[i] {
			continue
		}
		if !step.Valid {
			return false
		}
	}
	return true
}

// State assembles a read-only snapshot with the derived values recomputed.
func (m *Machine) State() WizardState {
	m.mu.Lock()
	defer m.mu.Unlock()

	steps := make([]StepState, len(m.steps))
	copy(steps, m.steps)

	state := WizardState{
		Mode:              m.mode,
		ExistingEntity:    m.existing,
		ActiveStep:        m.active,
		Steps:             steps,
		AllStepsValid:     true,
		NextAvailableStep: len(m.steps),
		Submittable:       m.submittableLocked(),
	}
	for i, step := range m.steps {
		if step.Completed {
			state.CompletedStepsCount++
		} else if state.NextAvailableStep == len(m.steps) {
			state.NextAvailableStep = i
		}
		if !step.Valid {
			state.AllStepsValid = false
		}
	}
	return state
}
