package itensor

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/born-ml/itensor/internal/errs"
	"github.com/born-ml/itensor/internal/index"
	"github.com/born-ml/itensor/internal/scale"
	"github.com/born-ml/itensor/internal/storage"
)

// Outcome classifies the tensor produced by an algebra operation.
type Outcome uint8

// Outcomes.
const (
	// Ordinary is a result with non-negligible norm.
	Ordinary Outcome = iota
	// ExactZero is a result whose norm fell to the negligible threshold or below.
	// Its tensor holds exact-zero storage.
	ExactZero
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Ordinary:
		return "Ordinary"
	case ExactZero:
		return "ExactZero"
	default:
		return "Unknown"
	}
}

// Result is a computed tensor together with its outcome.
type Result struct {
	Tensor  *ITensor
	Outcome Outcome
}

// IsZero reports whether the result vanished.
func (r Result) IsZero() bool { return r.Outcome == ExactZero }

// Err returns ErrResultIsZero for a vanished result and nil otherwise.
func (r Result) Err() error {
	if r.Outcome == ExactZero {
		return errs.ErrResultIsZero
	}
	return nil
}

// Add returns a + b. The index sets must match up to order; the result uses a's order.
func Add(a, b *ITensor) (Result, error) {
	return combine("Add", a, b, 1)
}

// Sub returns a - b.
func Sub(a, b *ITensor) (Result, error) {
	return combine("Sub", a, b, -1)
}

func combine(op string, a, b *ITensor, sign float64) (Result, error) {
	if err := a.live(op); err != nil {
		return Result{}, err
	}
	if err := b.live(op); err != nil {
		return Result{}, err
	}
	if !a.is.SameSet(b.is) {
		return Result{}, errs.Structural(op, "index sets %s and %s differ", a.is, b.is)
	}
	cfg := a.Config()
	if cfg.CheckArrows {
		if err := a.is.CheckArrows(b.is, index.Elementwise, op); err != nil {
			return Result{}, err
		}
	}
	perm, err := b.is.Permutation(a.is)
	if err != nil {
		return Result{}, err
	}

	// Put the operands on the larger of the two scales.
	sb := b.scale.MulReal(sign)
	common := a.scale
	if b.scale.LogNum() > a.scale.LogNum() {
		common = sb
	}
	fa, err := ratio(a.scale, common)
	if err != nil {
		return Result{}, err
	}
	fb, err := ratio(sb, common)
	if err != nil {
		return Result{}, err
	}

	da, db := a.store.Data(), b.store.Data()
	na, err := storage.Read(da, storage.Norm())
	if err != nil {
		return Result{}, err
	}
	nb, err := storage.Read(db, storage.Norm())
	if err != nil {
		return Result{}, err
	}
	d, err := storage.Combine(da, db, perm, fa, fb)
	if err != nil {
		return Result{}, errs.Structural(op, "%v", err)
	}
	t := build(a.is, d).WithConfig(cfg)
	t.scale = common
	return t.finish(math.Max(cmplx.Abs(fa)*na, cmplx.Abs(fb)*nb))
}

// ratio returns num/den as a complex factor, flushing underflow to 0.
func ratio(num, den scale.LogNumber) (complex128, error) {
	r, err := num.Div(den)
	if err != nil {
		return 0, err
	}
	z, err := r.Complex()
	if errors.Is(err, scale.ErrTooSmall) {
		return 0, nil
	}
	return z, err
}

// Contract sums a and b over every index they share.
// The result carries a's remaining indices followed by b's.
func Contract(a, b *ITensor) (Result, error) {
	if err := a.live("Contract"); err != nil {
		return Result{}, err
	}
	if err := b.live("Contract"); err != nil {
		return Result{}, err
	}
	cfg := a.Config()
	if cfg.CheckArrows {
		if err := a.is.CheckArrows(b.is, index.Contract, "Contract"); err != nil {
			return Result{}, err
		}
	}

	var c storage.Contraction
	for _, i := range a.is.Common(b.is) {
		pa, _ := a.is.Position(i)
		pb, _ := b.is.Position(i)
		if a.is.Index(pa).M() != b.is.Index(pb).M() {
			return Result{}, errs.Structural("Contract", "index %s has size %d and %d", i, a.is.Index(pa).M(), b.is.Index(pb).M())
		}
		c.ContractA = append(c.ContractA, pa)
		c.ContractB = append(c.ContractB, pb)
	}
	var free []index.Index
	for n := range a.is.Rank() {
		if !b.is.Contains(a.is.Index(n)) {
			free = append(free, a.is.Index(n))
		}
	}
	for n := range b.is.Rank() {
		if !a.is.Contains(b.is.Index(n)) {
			free = append(free, b.is.Index(n))
		}
	}
	is, err := index.NewIndexSet(free...)
	if err != nil {
		return Result{}, err
	}

	da, db := a.store.Data(), b.store.Data()
	if da.Kind() == storage.KindZero || db.Kind() == storage.KindZero {
		t := build(is, storage.NewZero(is.Dims())).WithConfig(cfg)
		return Result{Tensor: t, Outcome: ExactZero}, nil
	}
	na, err := storage.Read(da, storage.Norm())
	if err != nil {
		return Result{}, err
	}
	nb, err := storage.Read(db, storage.Norm())
	if err != nil {
		return Result{}, err
	}
	d, err := storage.Contract(da, db, c)
	if err != nil {
		return Result{}, errs.Structural("Contract", "%v", err)
	}
	t := build(is, d).WithConfig(cfg)
	t.scale = a.scale.Mul(b.scale)
	return t.finish(na * nb)
}

// finish normalizes a freshly computed tensor and classifies it. ref bounds
// the storage norm the inputs could have produced.
func (t *ITensor) finish(ref float64) (Result, error) {
	if err := t.scaleOutNorm(ref); err != nil {
		return Result{}, err
	}
	if t.Kind() == storage.KindZero {
		return Result{Tensor: t, Outcome: ExactZero}, nil
	}
	return Result{Tensor: t, Outcome: Ordinary}, nil
}

// Norm returns the Frobenius norm of t, scale applied.
func (t *ITensor) Norm() (float64, error) {
	if err := t.live("Norm"); err != nil {
		return 0, err
	}
	n, err := storage.Read(t.store.Data(), storage.Norm())
	if err != nil || n == 0 {
		return 0, err
	}
	z, err := scale.FromReal(n).Mul(scale.FromLog(t.scale.LogNum(), 1)).Complex()
	switch {
	case errors.Is(err, scale.ErrTooBig):
		return 0, &errs.NumericRepresentationError{Op: "Norm", Value: complex(n, 0), Detail: "norm overflows float64"}
	case errors.Is(err, scale.ErrTooSmall):
		return 0, nil
	}
	return real(z), err
}

// Conj complex-conjugates the elements of t in place. Arrows are kept.
func (t *ITensor) Conj() error {
	if err := t.live("Conj"); err != nil {
		return err
	}
	if t.store.Data().Kind().IsComplex() {
		if err := t.do(storage.Conj()); err != nil {
			return err
		}
	}
	t.scale = scale.FromParts(t.scale.LogNum(), cmplx.Conj(t.scale.Phase()))
	return nil
}

// Dag conjugates t and reverses every arrow.
func (t *ITensor) Dag() error {
	if err := t.Conj(); err != nil {
		return err
	}
	t.is = t.is.Dag()
	return nil
}

// IsComplex reports whether t holds complex storage or a complex scale.
func (t *ITensor) IsComplex() bool {
	if t.IsNull() {
		return false
	}
	return t.Kind().IsComplex() || !t.scale.IsReal()
}

// SumElsCplx returns the sum of every element.
func (t *ITensor) SumElsCplx() (complex128, error) {
	if err := t.live("SumElsCplx"); err != nil {
		return 0, err
	}
	s, err := storage.Read(t.store.Data(), storage.SumEls())
	if err != nil {
		return 0, err
	}
	return t.scaled("SumElsCplx", s)
}

// SumEls returns the sum of every element. The sum must be real.
func (t *ITensor) SumEls() (float64, error) {
	z, err := t.SumElsCplx()
	if err != nil {
		return 0, err
	}
	return t.realPart("SumEls", z)
}

// TieIndex merges the axes in tie into tie[0]. The result keeps only the
// elements whose tied coordinates agree.
func (t *ITensor) TieIndex(tie ...index.Index) error {
	if err := t.live("TieIndex"); err != nil {
		return err
	}
	is, sources, err := t.is.Tie(tie...)
	if err != nil {
		return err
	}
	d, err := storage.Tie(t.store.Data(), sources)
	if err != nil {
		return errs.Structural("TieIndex", "%v", err)
	}
	t.is = is
	t.install(d)
	return nil
}
