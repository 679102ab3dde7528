package core

import (
	"errors"
	"fmt"
)

// Engine error taxonomy - centralized error definitions.
// Every error names the offending parameter and the valid condition, since
// results feed audit documentation.
var (
	// ErrDomain marks an input outside its mathematically valid range.
	// Surfaced to the caller immediately, never retried.
	ErrDomain = errors.New("parameter outside valid domain")

	// ErrConvergence marks an iterative solver that did not reach its
	// tolerance within the iteration bound. Fatal for the call; the engine
	// never auto-retries.
	ErrConvergence = errors.New("iterative solver failed to converge")

	// ErrInsufficientData marks a sample too small for the requested test.
	// Surfaced, never silently downgraded to a weaker method.
	ErrInsufficientData = errors.New("insufficient data")
)

// Error constructors with context

// NewDomainError reports a parameter violation with the valid condition.
func NewDomainError(param string, got interface{}, condition string) error {
	return fmt.Errorf("%w: %s = %v, requires %s", ErrDomain, param, got, condition)
}

// NewConvergenceError reports solver exhaustion with its configured bounds.
func NewConvergenceError(solver string, iterations int, tolerance float64) error {
	return fmt.Errorf("%w: %s did not reach tolerance %g within %d iterations",
		ErrConvergence, solver, tolerance, iterations)
}

// NewInsufficientDataError reports a sample below the minimum size for a test.
func NewInsufficientDataError(analysis string, n, minimum int) error {
	return fmt.Errorf("%w: %s requires n >= %d, got n = %d",
		ErrInsufficientData, analysis, minimum, n)
}

// Error checking helpers
func IsDomainError(err error) bool {
	return errors.Is(err, ErrDomain)
}

func IsConvergenceError(err error) bool {
	return errors.Is(err, ErrConvergence)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
