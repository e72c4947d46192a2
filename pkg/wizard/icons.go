package wizard

// Step icon names as consumed by the UI icon set.
const (
	IconCompleted = "check-circle"
	IconError     = "alert-circle"
	IconActive    = "pencil"
	IconVisited   = "circle"
	IconLocked    = "lock"
)

// StepIcon derives the icon for a step from its state. Completion wins over
// everything; an unreachable step renders locked.
func (m *Machine) StepIcon(index int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if index < 0 || index >= len(m.steps) {
		return IconLocked
	}

	step := m.steps[index]
	switch {
	case step.Completed:
		return IconCompleted
	case step.Visited && step.HasErrors:
		return IconError
	case index == m.active:
		return IconActive
	case step.Visited:
		return IconVisited
	case m.clickableLocked(index):
		return IconVisited
	default:
		return IconLocked
	}
}
