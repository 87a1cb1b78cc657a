// Package econ holds the value types shared by the engineering-economics
// calculators: domain errors, tagged metrics, optional parameters and the
// year-indexed table rows.
package econ

import (
	"errors"
	"fmt"
	"math"
)

// ErrDomain matches every *DomainError via errors.Is.
var ErrDomain = errors.New("domain error")

// DomainError reports an input that violates a mathematical precondition of a formula.
type DomainError struct {
	Op     string
	Field  string
	Reason string
}

func (e *DomainError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", e.Op, e.Field, e.Reason)
}

// Is reports whether target is ErrDomain.
func (e *DomainError) Is(target error) bool {
	return target == ErrDomain
}

// Domain builds a *DomainError.
func Domain(op, field, reason string) error {
	return &DomainError{Op: op, Field: field, Reason: reason}
}

// RequireFinite rejects NaN and infinite inputs.
func RequireFinite(op, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Domain(op, field, "must be a finite number")
	}
	return nil
}

// RequireNonNegative rejects negative or non-finite values.
func RequireNonNegative(op, field string, v float64) error {
	if err := RequireFinite(op, field, v); err != nil {
		return err
	}
	if v < 0 {
		return Domain(op, field, "must not be negative")
	}
	return nil
}

// RequirePositive rejects zero, negative or non-finite values.
func RequirePositive(op, field string, v float64) error {
	if err := RequireFinite(op, field, v); err != nil {
		return err
	}
	if v <= 0 {
		return Domain(op, field, "must be greater than zero")
	}
	return nil
}

// RequirePeriods rejects period counts below one.
func RequirePeriods(op, field string, n int) error {
	if n <= 0 {
		return Domain(op, field, "must be at least one period")
	}
	return nil
}

// RequireRate rejects rates at or below -100%.
func RequireRate(op, field string, rate float64) error {
	if err := RequireFinite(op, field, rate); err != nil {
		return err
	}
	if rate <= -1 {
		return Domain(op, field, "must be greater than -100%")
	}
	return nil
}
