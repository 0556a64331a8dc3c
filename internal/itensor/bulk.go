package itensor

import (
	"github.com/born-ml/itensor/internal/errs"
	"github.com/born-ml/itensor/internal/metrics"
	"github.com/born-ml/itensor/internal/scale"
	"github.com/born-ml/itensor/internal/storage"
)

// Fill sets every element to r.
func (t *ITensor) Fill(r float64) error {
	return t.fill("Fill", complex(r, 0))
}

// FillCplx sets every element to z.
func (t *ITensor) FillCplx(z complex128) error {
	return t.fill("FillCplx", z)
}

func (t *ITensor) fill(op string, z complex128) error {
	if err := t.live(op); err != nil {
		return err
	}
	t.scale = scale.One()
	return t.do(storage.Fill(z))
}

// Generate replaces every element with f(), in storage order.
func (t *ITensor) Generate(f func() float64) error {
	if err := t.live("Generate"); err != nil {
		return err
	}
	t.scale = scale.One()
	return t.do(storage.Generate(f))
}

// GenerateCplx replaces every element with f().
func (t *ITensor) GenerateCplx(f func() complex128) error {
	if err := t.live("GenerateCplx"); err != nil {
		return err
	}
	t.scale = scale.One()
	return t.do(storage.GenerateCplx(f))
}

// Apply replaces every element x with f(x). The tensor must be real.
func (t *ITensor) Apply(f func(float64) float64) error {
	if err := t.unitScale("Apply"); err != nil {
		return err
	}
	return t.do(storage.ApplyReal(f))
}

// ApplyCplx replaces every element z with f(z).
func (t *ITensor) ApplyCplx(f func(complex128) complex128) error {
	if err := t.unitScale("ApplyCplx"); err != nil {
		return err
	}
	return t.do(storage.ApplyCplx(f))
}

func (t *ITensor) unitScale(op string) error {
	if err := t.live(op); err != nil {
		return err
	}
	return t.scaleTo(scale.One(), metrics.FoldMutation)
}

// Visit calls f with every element value, scale applied, in storage order.
// Storage is neither modified nor detached. The tensor must be real.
func (t *ITensor) Visit(f func(float64)) error {
	if err := t.live("Visit"); err != nil {
		return err
	}
	fac, err := t.scaled("Visit", 1)
	if err != nil {
		return err
	}
	if imag(fac) != 0 {
		return &errs.NumericRepresentationError{Op: "Visit", Value: fac, Detail: "scale factor is not real"}
	}
	_, err = storage.Read(t.store.Data(), storage.Visit(f, real(fac)))
	return err
}

// VisitCplx calls f with every element value, scale applied.
func (t *ITensor) VisitCplx(f func(complex128)) error {
	if err := t.live("VisitCplx"); err != nil {
		return err
	}
	fac, err := t.scaled("VisitCplx", 1)
	if err != nil {
		return err
	}
	_, err = storage.Read(t.store.Data(), storage.VisitCplx(f, fac))
	return err
}
