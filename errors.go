package licensekit

import "errors"

var (
	// ErrNilEngine is returned when a session is created without a business
	// constraint engine.
	ErrNilEngine = errors.New("eligibility engine cannot be nil")

	// ErrEmptyFlow is returned when a flow defines no steps.
	ErrEmptyFlow = errors.New("flow must define at least one step")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session is closed")

	// ErrDataLengthMismatch is returned when full-wizard validation receives
	// a data slice whose length differs from the flow's step count.
	ErrDataLengthMismatch = errors.New("step data length does not match flow step count")
)
