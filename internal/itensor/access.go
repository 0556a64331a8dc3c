package itensor

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/born-ml/itensor/internal/errs"
	"github.com/born-ml/itensor/internal/index"
	"github.com/born-ml/itensor/internal/metrics"
	"github.com/born-ml/itensor/internal/scale"
	"github.com/born-ml/itensor/internal/storage"
)

// Cplx returns the element addressed by ivs, one IndexVal per index in any order.
func (t *ITensor) Cplx(ivs ...index.IndexVal) (complex128, error) {
	if err := t.live("Cplx"); err != nil {
		return 0, err
	}
	coords, err := t.is.Resolve(ivs)
	if err != nil {
		return 0, err
	}
	v, err := storage.Read(t.store.Data(), storage.GetElt(coords))
	if err != nil {
		return 0, err
	}
	return t.scaled("Cplx", v)
}

// Real returns the element addressed by ivs.
// It fails when the element has a non-negligible imaginary part.
func (t *ITensor) Real(ivs ...index.IndexVal) (float64, error) {
	z, err := t.Cplx(ivs...)
	if err != nil {
		return 0, err
	}
	return t.realPart("Real", z)
}

// scaled multiplies a stored value by the scale factor.
func (t *ITensor) scaled(op string, v complex128) (complex128, error) {
	if v == 0 || t.scale.IsOne() {
		return v, nil
	}
	z, err := scale.FromComplex(v).Mul(t.scale).Complex()
	switch {
	case errors.Is(err, scale.ErrTooBig):
		return 0, &errs.NumericRepresentationError{
			Op:     op,
			Value:  v,
			Detail: "element times scale " + t.scale.String() + " overflows float64",
		}
	case errors.Is(err, scale.ErrTooSmall):
		t.Config().Log().Warn("element underflows float64, returning 0", "op", op, "scale", t.scale.String())
		return 0, nil
	}
	return z, err
}

// realPart checks that z is real within the configured tolerance.
func (t *ITensor) realPart(op string, z complex128) (float64, error) {
	if math.Abs(imag(z)) > t.Config().ImagTolerance*math.Max(1, cmplx.Abs(z)) {
		return 0, &errs.NumericRepresentationError{Op: op, Value: z, Detail: "value is not real"}
	}
	return real(z), nil
}

// Set writes the real value v at ivs.
func (t *ITensor) Set(v float64, ivs ...index.IndexVal) error {
	return t.set("Set", complex(v, 0), ivs)
}

// SetCplx writes the complex value z at ivs.
func (t *ITensor) SetCplx(z complex128, ivs ...index.IndexVal) error {
	return t.set("SetCplx", z, ivs)
}

func (t *ITensor) set(op string, z complex128, ivs []index.IndexVal) error {
	if err := t.live(op); err != nil {
		return err
	}
	coords, err := t.is.Resolve(ivs)
	if err != nil {
		return err
	}
	if err := t.scaleTo(scale.One(), metrics.FoldMutation); err != nil {
		return err
	}
	return t.do(storage.SetElt(z, coords))
}
