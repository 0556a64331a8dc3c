// Package itensor implements ITensor, a tensor whose axes are addressed by
// Index labels rather than by position.
//
// An ITensor combines an IndexSet, a shared storage Ref and a LogNumber scale
// factor. For every coordinate the element value is stored × scale. Copies
// share storage until one of them is mutated.
package itensor

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/born-ml/itensor/internal/config"
	"github.com/born-ml/itensor/internal/errs"
	"github.com/born-ml/itensor/internal/index"
	"github.com/born-ml/itensor/internal/metrics"
	"github.com/born-ml/itensor/internal/scale"
	"github.com/born-ml/itensor/internal/storage"
)

// defaultConfig serves tensors built without WithConfig. It is never mutated.
var defaultConfig = config.Default()

// ITensor is a labeled tensor.
//
// The zero value is a null tensor: IsNull reports true and every other
// operation fails with a StructuralError. Use Copy to obtain a second tensor
// sharing the same storage; plain struct assignment aliases the Ref and is
// not supported.
type ITensor struct {
	is    index.IndexSet
	scale scale.LogNumber
	store *storage.Ref
	cfg   *config.Config

	// normalized is set while storage is known to have unit norm, so an
	// out-of-range scale needs no further folding. Storage mutation clears it.
	normalized bool
}

// NewScalar creates a rank-0 tensor holding r.
func NewScalar(r float64) *ITensor {
	return build(index.IndexSet{}, &storage.DenseReal{Shape: storage.Shape{}, Vals: []float64{r}})
}

// NewScalarCplx creates a rank-0 tensor holding z.
func NewScalarCplx(z complex128) *ITensor {
	if imag(z) == 0 {
		return NewScalar(real(z))
	}
	return build(index.IndexSet{}, &storage.DenseCplx{Shape: storage.Shape{}, Vals: []complex128{z}})
}

// New creates a zero-filled tensor over inds. Any rank is allowed.
func New(inds ...index.Index) (*ITensor, error) {
	is, err := index.NewIndexSet(inds...)
	if err != nil {
		return nil, err
	}
	return build(is, storage.NewDenseReal(is.Dims())), nil
}

// NewVector creates a rank-1 tensor over i holding data in coordinate order.
func NewVector(i index.Index, data []float64) (*ITensor, error) {
	is, err := index.NewIndexSet(i)
	if err != nil {
		return nil, err
	}
	d, err := storage.NewDenseRealFrom(is.Dims(), data)
	if err != nil {
		return nil, errs.Structural("NewVector", "%v", err)
	}
	return build(is, d), nil
}

// NewDiag creates a rank-2 diagonal tensor over (i1, i2).
// len(data) must equal min(m1, m2); off-diagonal elements are 0.
func NewDiag(i1, i2 index.Index, data []float64) (*ITensor, error) {
	is, err := index.NewIndexSet(i1, i2)
	if err != nil {
		return nil, err
	}
	d, err := storage.NewDiagReal(is.Dims(), data)
	if err != nil {
		return nil, errs.Structural("NewDiag", "%v", err)
	}
	return build(is, d), nil
}

// NewDiagCplx creates a rank-2 complex diagonal tensor over (i1, i2).
func NewDiagCplx(i1, i2 index.Index, data []complex128) (*ITensor, error) {
	is, err := index.NewIndexSet(i1, i2)
	if err != nil {
		return nil, err
	}
	d, err := storage.NewDiagCplx(is.Dims(), data)
	if err != nil {
		return nil, errs.Structural("NewDiagCplx", "%v", err)
	}
	return build(is, d), nil
}

// NewFromParts assembles a tensor from an index set, storage and scale.
// The storage must be sized for is and is owned by the tensor afterwards.
func NewFromParts(is index.IndexSet, d storage.Data, s scale.LogNumber) (*ITensor, error) {
	if !d.Dims().Equal(is.Dims()) {
		return nil, errs.Structural("NewFromParts", "storage shape %v does not match %s", d.Dims(), is)
	}
	if s.IsZero() {
		return nil, errs.Structural("NewFromParts", "zero scale factor")
	}
	t := build(is, d)
	t.scale = s
	return t, nil
}

// Random creates a tensor over inds with elements drawn uniformly from [0, 1).
// The same seed always produces the same elements.
func Random(seed uint64, inds ...index.Index) (*ITensor, error) {
	t, err := New(inds...)
	if err != nil {
		return nil, err
	}
	//nolint:gosec // deterministic test data, not security sensitive
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	if err := t.Generate(rng.Float64); err != nil {
		return nil, err
	}
	return t, nil
}

func build(is index.IndexSet, d storage.Data) *ITensor {
	return &ITensor{is: is, scale: scale.One(), store: storage.NewRef(d), cfg: defaultConfig}
}

// WithConfig sets the configuration consulted by t and returns t.
func (t *ITensor) WithConfig(c *config.Config) *ITensor {
	if c != nil {
		t.cfg = c
	}
	return t
}

// Config returns the configuration in effect.
func (t *ITensor) Config() *config.Config {
	if t == nil || t.cfg == nil {
		return defaultConfig
	}
	return t.cfg
}

// Copy returns a tensor that shares t's storage.
func (t *ITensor) Copy() *ITensor {
	if t.IsNull() {
		return &ITensor{}
	}
	return &ITensor{is: t.is, scale: t.scale, store: t.store.Share(), cfg: t.cfg, normalized: t.normalized}
}

// Release drops t's claim on its storage. t becomes null.
func (t *ITensor) Release() {
	if t == nil || t.store == nil {
		return
	}
	t.store.Release()
	t.store = nil
	t.is = index.IndexSet{}
}

// IsNull reports whether t has no storage.
func (t *ITensor) IsNull() bool {
	return t == nil || t.store == nil
}

// Rank returns the number of indices.
func (t *ITensor) Rank() int {
	if t.IsNull() {
		return 0
	}
	return t.is.Rank()
}

// Inds returns the index set.
func (t *ITensor) Inds() index.IndexSet {
	if t.IsNull() {
		return index.IndexSet{}
	}
	return t.is
}

// Scale returns the scale factor.
func (t *ITensor) Scale() scale.LogNumber { return t.scale }

// Kind returns the storage kind currently held. A null tensor reports Zero.
func (t *ITensor) Kind() storage.Kind {
	if t.IsNull() {
		return storage.KindZero
	}
	return t.store.Data().Kind()
}

// Data returns the storage currently held. It must not be modified.
func (t *ITensor) Data() storage.Data {
	if t.IsNull() {
		return nil
	}
	return t.store.Data()
}

// SharesStorage reports whether a and b currently hold the same storage block.
func SharesStorage(a, b *ITensor) bool {
	if a.IsNull() || b.IsNull() {
		return false
	}
	return a.store.SameStorage(b.store)
}

func (t *ITensor) live(op string) error {
	if t.IsNull() {
		return errs.Structural(op, "null tensor")
	}
	return nil
}

func (t *ITensor) debug(msg string, args ...any) {
	if c := t.Config(); c.Debug {
		c.Log().Debug(msg, args...)
	}
}

// solo gives t private storage, cloning it when shared.
func (t *ITensor) solo() {
	if t.store.Detach() {
		t.debug("storage detached", "inds", t.is.String(), "kind", t.Kind().String())
	}
}

// install makes d t's storage without cloning the old block.
func (t *ITensor) install(d storage.Data) {
	t.normalized = false
	if t.store.Unique() {
		t.store.Replace(d)
		return
	}
	t.store.Release()
	t.store = storage.NewRef(d)
}

// collapse replaces t's storage with exact zero storage and resets the scale.
func (t *ITensor) collapse() {
	t.install(storage.NewZero(t.is.Dims()))
	t.scale = scale.One()
	metrics.ZeroCollapses.Inc()
	t.debug("storage collapsed to zero", "inds", t.is.String())
}

// do runs a mutating storage operation on private storage.
func (t *ITensor) do(op storage.Op[storage.None]) error {
	t.solo()
	t.normalized = false
	_, err := storage.Do(t.store, op)
	return err
}

// scaleTo folds the scale into storage so that it becomes exactly target.
func (t *ITensor) scaleTo(target scale.LogNumber, reason string) error {
	if target.IsZero() {
		return &errs.NumericRepresentationError{Op: "ScaleTo", Detail: "cannot scale to zero"}
	}
	if t.scale == target {
		return nil
	}
	if t.Kind() == storage.KindZero {
		t.scale = target
		return nil
	}
	ratio, err := t.scale.Div(target)
	if err != nil {
		return err
	}
	fac, err := ratio.Complex()
	switch {
	case errors.Is(err, scale.ErrTooBig):
		return &errs.NumericRepresentationError{
			Op:     "ScaleTo",
			Value:  complex(math.Inf(1), 0),
			Detail: "folding scale " + t.scale.String() + " into storage overflows float64",
		}
	case errors.Is(err, scale.ErrTooSmall):
		t.collapse()
		t.scale = target
		return nil
	}
	if err := t.do(storage.Mult(fac)); err != nil {
		return err
	}
	t.scale = target
	metrics.ScaleFolds.WithLabelValues(reason).Inc()
	t.debug("scale folded into storage", "reason", reason, "factor", fac)
	return nil
}

// ScaleTo rescales storage so that the scale factor is exactly target.
func (t *ITensor) ScaleTo(target scale.LogNumber) error {
	if err := t.live("ScaleTo"); err != nil {
		return err
	}
	return t.scaleTo(target, metrics.FoldScaleTo)
}

// scaleOutNorm normalizes storage to unit norm, moving its norm into the scale.
// Storage whose norm is at most ref·Negligible collapses to zero.
func (t *ITensor) scaleOutNorm(ref float64) error {
	n, err := storage.Read(t.store.Data(), storage.Norm())
	if err != nil {
		return err
	}
	if n == 0 || n <= ref*t.Config().Negligible {
		if t.Kind() != storage.KindZero {
			t.collapse()
		}
		t.normalized = true
		return nil
	}
	if n == 1 {
		t.normalized = true
		return nil
	}
	if err := t.do(storage.Mult(complex(1/n, 0))); err != nil {
		return err
	}
	t.normalized = true
	t.scale = t.scale.MulReal(n)
	metrics.ScaleFolds.WithLabelValues(metrics.FoldOutNorm).Inc()
	t.debug("storage normalized", "norm", n, "scale", t.scale.String())
	return nil
}
