package itensor

import (
	"github.com/born-ml/itensor/internal/errs"
	"github.com/born-ml/itensor/internal/index"
	"github.com/born-ml/itensor/internal/scale"
)

// MulReal multiplies t by r in place. Only the scale factor changes unless
// the scale leaves the configured log range while storage is not already
// normalized.
func (t *ITensor) MulReal(r float64) error {
	return t.mul("MulReal", scale.FromReal(r))
}

// MulCplx multiplies t by z in place.
func (t *ITensor) MulCplx(z complex128) error {
	return t.mul("MulCplx", scale.FromComplex(z))
}

// DivReal divides t by r in place. Division by zero fails.
func (t *ITensor) DivReal(r float64) error {
	if r == 0 {
		return &errs.NumericRepresentationError{Op: "DivReal", Detail: "division by zero"}
	}
	return t.mul("DivReal", scale.FromReal(1/r))
}

// DivCplx divides t by z in place.
func (t *ITensor) DivCplx(z complex128) error {
	if z == 0 {
		return &errs.NumericRepresentationError{Op: "DivCplx", Detail: "division by zero"}
	}
	inv, err := scale.One().Div(scale.FromComplex(z))
	if err != nil {
		return err
	}
	return t.mul("DivCplx", inv)
}

func (t *ITensor) mul(op string, f scale.LogNumber) error {
	if err := t.live(op); err != nil {
		return err
	}
	if f.IsZero() {
		t.collapse()
		return nil
	}
	t.scale = t.scale.Mul(f)
	if t.normalized || t.scale.Within(t.Config().ScaleLogLimit) {
		return nil
	}
	return t.scaleOutNorm(1)
}

// Neg returns a negated copy of t sharing its storage.
func (t *ITensor) Neg() (*ITensor, error) {
	if err := t.live("Neg"); err != nil {
		return nil, err
	}
	n := t.Copy()
	n.scale = n.scale.MulReal(-1)
	return n, nil
}

// Prime raises the prime level of every index by inc.
func (t *ITensor) Prime(inc int) error {
	return t.PrimeType(index.All, inc)
}

// PrimeType raises the prime level of every index of type typ by inc.
func (t *ITensor) PrimeType(typ index.IndexType, inc int) error {
	return t.relabel("PrimeType", func(is index.IndexSet) (index.IndexSet, error) { return is.Prime(typ, inc) })
}

// PrimeIndex raises the prime level of i by inc.
func (t *ITensor) PrimeIndex(i index.Index, inc int) error {
	return t.relabel("PrimeIndex", func(is index.IndexSet) (index.IndexSet, error) { return is.PrimeIndex(i, inc) })
}

// NoPrime resets the prime level of every index to 0.
func (t *ITensor) NoPrime() error {
	return t.NoPrimeType(index.All)
}

// NoPrimeType resets the prime level of every index of type typ to 0.
func (t *ITensor) NoPrimeType(typ index.IndexType) error {
	return t.relabel("NoPrimeType", func(is index.IndexSet) (index.IndexSet, error) { return is.NoPrime(typ) })
}

// NoPrimeIndex resets the prime level of i to 0.
func (t *ITensor) NoPrimeIndex(i index.Index) error {
	return t.relabel("NoPrimeIndex", func(is index.IndexSet) (index.IndexSet, error) { return is.NoPrimeIndex(i) })
}

// MapPrime moves indices of type typ at prime level from to level to.
func (t *ITensor) MapPrime(from, to int, typ index.IndexType) error {
	return t.relabel("MapPrime", func(is index.IndexSet) (index.IndexSet, error) { return is.MapPrime(from, to, typ) })
}

// relabel swaps in a new index set. Storage is never touched.
func (t *ITensor) relabel(op string, f func(index.IndexSet) (index.IndexSet, error)) error {
	if err := t.live(op); err != nil {
		return err
	}
	is, err := f(t.is)
	if err != nil {
		return err
	}
	t.is = is
	return nil
}
