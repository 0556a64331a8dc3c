// Package scale provides LogNumber, the log-magnitude scale factor carried by every tensor.
package scale

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// Conversion errors.
var (
	// ErrTooBig is returned when a LogNumber overflows float64.
	ErrTooBig = errors.New("scale: magnitude too big for float64")
	// ErrTooSmall is returned when a LogNumber underflows float64.
	ErrTooSmall = errors.New("scale: magnitude too small for float64")
)

// Representable range of the log magnitude.
var (
	maxLog = math.Log(math.MaxFloat64)
	minLog = math.Log(math.SmallestNonzeroFloat64)
)

// LogNumber represents phase·exp(lognum).
//
// For real values the phase is exactly +1 or -1. A zero phase means the
// number is zero. The zero value of LogNumber is zero; use One for unit scale.
type LogNumber struct {
	lognum float64
	phase  complex128
}

// One returns the unit LogNumber.
func One() LogNumber {
	return LogNumber{phase: 1}
}

// FromReal converts r.
func FromReal(r float64) LogNumber {
	switch {
	case r == 0:
		return LogNumber{}
	case r < 0:
		return LogNumber{lognum: math.Log(-r), phase: -1}
	default:
		return LogNumber{lognum: math.Log(r), phase: 1}
	}
}

// FromComplex converts z. Purely real z keeps an exact ±1 phase.
func FromComplex(z complex128) LogNumber {
	if imag(z) == 0 {
		return FromReal(real(z))
	}
	a := cmplx.Abs(z)
	return LogNumber{lognum: math.Log(a), phase: z / complex(a, 0)}
}

// FromLog builds sign·exp(lognum) for sign ±1.
func FromLog(lognum float64, sign float64) LogNumber {
	if sign < 0 {
		return LogNumber{lognum: lognum, phase: -1}
	}
	return LogNumber{lognum: lognum, phase: 1}
}

// FromParts rebuilds a LogNumber from its serialized parts.
func FromParts(lognum float64, phase complex128) LogNumber {
	if phase == 0 {
		return LogNumber{}
	}
	return LogNumber{lognum: lognum, phase: phase}
}

// LogNum returns the natural log of the magnitude.
func (l LogNumber) LogNum() float64 { return l.lognum }

// Phase returns the unit phase (0 for zero).
func (l LogNumber) Phase() complex128 { return l.phase }

// IsZero reports whether l is zero.
func (l LogNumber) IsZero() bool { return l.phase == 0 }

// IsReal reports whether the phase is exactly ±1 (or l is zero).
func (l LogNumber) IsReal() bool { return imag(l.phase) == 0 }

// IsOne reports whether l is exactly 1.
func (l LogNumber) IsOne() bool { return l.phase == 1 && l.lognum == 0 }

// Sign returns -1, 0 or +1 from the real part of the phase.
func (l LogNumber) Sign() float64 {
	switch {
	case real(l.phase) > 0:
		return 1
	case real(l.phase) < 0:
		return -1
	default:
		return 0
	}
}

// Mul returns l·o.
func (l LogNumber) Mul(o LogNumber) LogNumber {
	if l.IsZero() || o.IsZero() {
		return LogNumber{}
	}
	return LogNumber{lognum: l.lognum + o.lognum, phase: normalize(l.phase * o.phase)}
}

// Div returns l/o. Division by zero is an error.
func (l LogNumber) Div(o LogNumber) (LogNumber, error) {
	if o.IsZero() {
		return LogNumber{}, errors.New("scale: division by zero")
	}
	if l.IsZero() {
		return LogNumber{}, nil
	}
	return LogNumber{lognum: l.lognum - o.lognum, phase: normalize(l.phase / o.phase)}, nil
}

// MulReal returns l·r.
func (l LogNumber) MulReal(r float64) LogNumber { return l.Mul(FromReal(r)) }

// MulComplex returns l·z.
func (l LogNumber) MulComplex(z complex128) LogNumber { return l.Mul(FromComplex(z)) }

// Within reports whether |lognum| does not exceed limit.
func (l LogNumber) Within(limit float64) bool {
	return l.IsZero() || math.Abs(l.lognum) <= limit
}

// Magnitude returns |l| as a float64, which may be +Inf or 0 outside the float range.
func (l LogNumber) Magnitude() float64 {
	if l.IsZero() {
		return 0
	}
	return math.Exp(l.lognum)
}

// Real converts l to float64. Complex phases are rejected.
func (l LogNumber) Real() (float64, error) {
	if !l.IsReal() {
		return 0, fmt.Errorf("scale: %v has a complex phase", l)
	}
	z, err := l.Complex()
	return real(z), err
}

// Complex converts l to complex128.
// Overflow returns ErrTooBig; underflow returns 0 with ErrTooSmall.
func (l LogNumber) Complex() (complex128, error) {
	if l.IsZero() {
		return 0, nil
	}
	if l.lognum > maxLog {
		return 0, ErrTooBig
	}
	if l.lognum < minLog {
		return 0, ErrTooSmall
	}
	return l.phase * complex(math.Exp(l.lognum), 0), nil
}

// ApproxEqual compares two LogNumbers in value with relative tolerance tol.
func (l LogNumber) ApproxEqual(o LogNumber, tol float64) bool {
	if l.IsZero() || o.IsZero() {
		return l.IsZero() == o.IsZero()
	}
	if math.Abs(l.lognum-o.lognum) > tol {
		return false
	}
	return cmplx.Abs(l.phase-o.phase) <= tol
}

// String renders l as phase·exp(lognum).
func (l LogNumber) String() string {
	if l.IsZero() {
		return "0"
	}
	if l.IsReal() {
		return fmt.Sprintf("%+.0f·exp(%.6g)", real(l.phase), l.lognum)
	}
	return fmt.Sprintf("(%.6g%+.6gi)·exp(%.6g)", real(l.phase), imag(l.phase), l.lognum)
}

// normalize keeps the phase on the unit circle. Exact ±1 phases stay exact.
func normalize(p complex128) complex128 {
	if imag(p) == 0 {
		if real(p) < 0 {
			return -1
		}
		return 1
	}
	return p / complex(cmplx.Abs(p), 0)
}
