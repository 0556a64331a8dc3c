package storage

import (
	"fmt"

	"github.com/born-ml/itensor/internal/errs"
)

// Op is an operation with one case per storage kind.
//
// A case returns the operation's value and, optionally, replacement storage
// (a promoted kind or a freshly built object). A nil case means the operation
// does not support that kind; applying it there fails with a TypeMismatchError.
type Op[R any] struct {
	Name string

	DenseReal func(*DenseReal) (R, Data, error)
	DenseCplx func(*DenseCplx) (R, Data, error)
	DiagReal  func(*DiagReal) (R, Data, error)
	DiagCplx  func(*DiagCplx) (R, Data, error)
	Zero      func(*Zero) (R, Data, error)
}

// Handles reports the kinds op has a case for.
func (op Op[R]) Handles() []Kind {
	var out []Kind
	if op.DenseReal != nil {
		out = append(out, KindDenseReal)
	}
	if op.DenseCplx != nil {
		out = append(out, KindDenseCplx)
	}
	if op.DiagReal != nil {
		out = append(out, KindDiagReal)
	}
	if op.DiagCplx != nil {
		out = append(out, KindDiagCplx)
	}
	if op.Zero != nil {
		out = append(out, KindZero)
	}
	return out
}

// Apply runs the case of op matching the concrete kind of d.
//
// The returned Data is non-nil when the case produced replacement storage;
// d itself may also have been mutated in place.
func Apply[R any](d Data, op Op[R]) (R, Data, error) {
	switch s := d.(type) {
	case *DenseReal:
		if op.DenseReal != nil {
			return op.DenseReal(s)
		}
	case *DenseCplx:
		if op.DenseCplx != nil {
			return op.DenseCplx(s)
		}
	case *DiagReal:
		if op.DiagReal != nil {
			return op.DiagReal(s)
		}
	case *DiagCplx:
		if op.DiagCplx != nil {
			return op.DiagCplx(s)
		}
	case *Zero:
		if op.Zero != nil {
			return op.Zero(s)
		}
	default:
		panic(fmt.Sprintf("storage: unknown storage type %T", d))
	}
	var zero R
	return zero, nil, mismatch(op.Name, op.Handles(), d.Kind())
}

// Do applies op to the storage held by r and installs any replacement.
// Operations that mutate must run on detached storage.
func Do[R any](r *Ref, op Op[R]) (R, error) {
	v, repl, err := Apply(r.Data(), op)
	if err != nil {
		return v, err
	}
	if repl != nil {
		r.Replace(repl)
	}
	return v, nil
}

// Read applies op for its value only. Replacement storage is discarded.
func Read[R any](d Data, op Op[R]) (R, error) {
	v, _, err := Apply(d, op)
	return v, err
}

func mismatch(op string, handles []Kind, actual Kind) error {
	names := make([]string, len(handles))
	for i, k := range handles {
		names[i] = k.String()
	}
	return &errs.TypeMismatchError{Op: op, Expected: names, Actual: actual.String()}
}
