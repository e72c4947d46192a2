// Package wizard tracks per-step state across an ordered multi-step intake
// flow and decides which steps are reachable at any moment.
//
// Each step is in one of four states derived from its flags: unvisited,
// visited-invalid, visited-valid or completed. The machine owns the flags and
// enforces the invariants: a step can only be completed while valid,
// completion and visitedness are monotonic until an explicit reset, and the
// last-validated timestamp only moves forward. Derived values (completed
// count, all-valid, next available step) are recomputed from the step map on
// every read and never stored authoritatively.
//
// # Reachability
//
// IsStepClickable is the single gate that keeps users out of unvalidated
// steps. A step is clickable when it is the active step, already completed,
// the immediate successor of a valid active step, an earlier valid step, or,
// in existing-entity mode, any step that has been visited.
//
// # Modes
//
// A machine seeded from a previously saved record (InitializeForExisting)
// marks every step visited so the whole wizard is reachable, but completion
// is NOT granted: saved data is not proof of currently valid data, so each
// step must pass a fresh validation before it counts as completed.
//
// # Usage
//
//	m := wizard.MustNewMachine(5, wizard.ModeApplication,
//	    wizard.WithOptionalStep(3),
//	)
//	m.SetStepValidity(0, true, false)
//	_ = m.MarkCompleted(0)
//	if m.IsStepClickable(1) {
//	    _ = m.SetActiveStep(1)
//	}
//	state := m.State() // read-only snapshot for the UI
//
// The machine performs no validation itself; it only records outcomes the
// caller obtained from the rule evaluator and business constraint engine.
package wizard
