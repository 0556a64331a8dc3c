// Package errs defines the error kinds shared by the index, storage and itensor packages.
//
// Every kind has a sentinel for errors.Is matching and a typed error carrying the
// operation that failed and what was violated.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Match with errors.Is; typed errors below unwrap to these.
var (
	// ErrStructural covers index/rank mismatches, duplicate labels and bad coordinates.
	ErrStructural = errors.New("itensor: structural error")

	// ErrArrow signals incompatible index orientations.
	ErrArrow = errors.New("itensor: arrow mismatch")

	// ErrTypeMismatch signals a storage operation applied to a kind it has no case for.
	ErrTypeMismatch = errors.New("itensor: storage type mismatch")

	// ErrNumericRepresentation signals a value that cannot be represented in the requested form.
	ErrNumericRepresentation = errors.New("itensor: value not representable")

	// ErrResultIsZero is returned by Result.Err when a computed tensor vanished.
	ErrResultIsZero = errors.New("itensor: result is zero")
)

// StructuralError reports a violated shape contract.
type StructuralError struct {
	Op     string // operation that failed (e.g. "Real", "NewIndexSet")
	Detail string
}

// Error implements the error interface.
func (e *StructuralError) Error() string {
	return fmt.Sprintf("itensor: %s: %s", e.Op, e.Detail)
}

// Is reports whether target is ErrStructural.
func (e *StructuralError) Is(target error) bool { return target == ErrStructural }

// Structural builds a StructuralError with a formatted detail message.
func Structural(op, format string, args ...any) error {
	return &StructuralError{Op: op, Detail: fmt.Sprintf(format, args...)}
}

// ArrowError reports two matching indices whose orientations disagree.
type ArrowError struct {
	Op    string
	Index string // printed index label
	Want  string
	Got   string
}

// Error implements the error interface.
func (e *ArrowError) Error() string {
	return fmt.Sprintf("itensor: %s: index %s has arrow %s, want %s", e.Op, e.Index, e.Got, e.Want)
}

// Is reports whether target is ErrArrow.
func (e *ArrowError) Is(target error) bool { return target == ErrArrow }

// TypeMismatchError reports a storage operation invoked on an unsupported storage kind.
type TypeMismatchError struct {
	Op       string
	Expected []string // kinds the operation handles
	Actual   string
}

// Error implements the error interface.
func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("itensor: %s: storage kind %s not supported (expected one of %s)",
		e.Op, e.Actual, strings.Join(e.Expected, ", "))
}

// Is reports whether target is ErrTypeMismatch.
func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

// NumericRepresentationError reports a value outside the requested numeric form.
type NumericRepresentationError struct {
	Op     string
	Value  complex128
	Detail string
}

// Error implements the error interface.
func (e *NumericRepresentationError) Error() string {
	return fmt.Sprintf("itensor: %s: %s (value = (%.5E,%.5E))", e.Op, e.Detail, real(e.Value), imag(e.Value))
}

// Is reports whether target is ErrNumericRepresentation.
func (e *NumericRepresentationError) Is(target error) bool {
	return target == ErrNumericRepresentation
}
