package storage

import "fmt"

// Data is one concrete storage representation.
//
// The set of implementations is closed: DenseReal, DenseCplx, DiagReal,
// DiagCplx and Zero. Code that needs kind-specific behavior goes through
// Apply with an Op rather than type-switching itself.
type Data interface {
	// Kind identifies the representation.
	Kind() Kind
	// Dims returns the shape the storage was sized for.
	Dims() Shape
	// Clone returns a deep copy.
	Clone() Data

	sealed()
}

// DenseReal stores every element as float64, row-major.
type DenseReal struct {
	Shape Shape
	Vals  []float64
}

// DenseCplx stores every element as complex128, row-major.
type DenseCplx struct {
	Shape Shape
	Vals  []complex128
}

// DiagReal stores the min(dims) diagonal elements; every other element is 0.
type DiagReal struct {
	Shape Shape
	Vals  []float64
}

// DiagCplx stores the min(dims) complex diagonal elements.
type DiagCplx struct {
	Shape Shape
	Vals  []complex128
}

// Zero is exact-zero storage. It holds no values.
type Zero struct {
	Shape Shape
}

// NewDenseReal allocates zero-filled real storage.
func NewDenseReal(shape Shape) *DenseReal {
	return &DenseReal{Shape: shape.Clone(), Vals: make([]float64, shape.NumElements())}
}

// NewDenseCplx allocates zero-filled complex storage.
func NewDenseCplx(shape Shape) *DenseCplx {
	return &DenseCplx{Shape: shape.Clone(), Vals: make([]complex128, shape.NumElements())}
}

// NewDenseRealFrom wraps a copy of vals. len(vals) must match the shape.
func NewDenseRealFrom(shape Shape, vals []float64) (*DenseReal, error) {
	if len(vals) != shape.NumElements() {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(vals))
	}
	return &DenseReal{Shape: shape.Clone(), Vals: append([]float64(nil), vals...)}, nil
}

// NewDiagReal wraps a copy of the diagonal vals. len(vals) must be min(dims).
func NewDiagReal(shape Shape, vals []float64) (*DiagReal, error) {
	if len(vals) != shape.MinDim() {
		return nil, fmt.Errorf("diagonal of shape %v requires %d elements, but got %d", shape, shape.MinDim(), len(vals))
	}
	return &DiagReal{Shape: shape.Clone(), Vals: append([]float64(nil), vals...)}, nil
}

// NewDiagCplx wraps a copy of the complex diagonal vals.
func NewDiagCplx(shape Shape, vals []complex128) (*DiagCplx, error) {
	if len(vals) != shape.MinDim() {
		return nil, fmt.Errorf("diagonal of shape %v requires %d elements, but got %d", shape, shape.MinDim(), len(vals))
	}
	return &DiagCplx{Shape: shape.Clone(), Vals: append([]complex128(nil), vals...)}, nil
}

// NewZero returns exact-zero storage for shape.
func NewZero(shape Shape) *Zero {
	return &Zero{Shape: shape.Clone()}
}

func (d *DenseReal) Kind() Kind { return KindDenseReal }
func (d *DenseCplx) Kind() Kind { return KindDenseCplx }
func (d *DiagReal) Kind() Kind  { return KindDiagReal }
func (d *DiagCplx) Kind() Kind  { return KindDiagCplx }
func (d *Zero) Kind() Kind      { return KindZero }

func (d *DenseReal) Dims() Shape { return d.Shape }
func (d *DenseCplx) Dims() Shape { return d.Shape }
func (d *DiagReal) Dims() Shape  { return d.Shape }
func (d *DiagCplx) Dims() Shape  { return d.Shape }
func (d *Zero) Dims() Shape      { return d.Shape }

func (d *DenseReal) Clone() Data {
	return &DenseReal{Shape: d.Shape.Clone(), Vals: append([]float64(nil), d.Vals...)}
}

func (d *DenseCplx) Clone() Data {
	return &DenseCplx{Shape: d.Shape.Clone(), Vals: append([]complex128(nil), d.Vals...)}
}

func (d *DiagReal) Clone() Data {
	return &DiagReal{Shape: d.Shape.Clone(), Vals: append([]float64(nil), d.Vals...)}
}

func (d *DiagCplx) Clone() Data {
	return &DiagCplx{Shape: d.Shape.Clone(), Vals: append([]complex128(nil), d.Vals...)}
}

func (d *Zero) Clone() Data { return &Zero{Shape: d.Shape.Clone()} }

func (*DenseReal) sealed() {}
func (*DenseCplx) sealed() {}
func (*DiagReal) sealed()  {}
func (*DiagCplx) sealed()  {}
func (*Zero) sealed()      {}

// toCplx widens real values.
func toCplx(vals []float64) []complex128 {
	out := make([]complex128, len(vals))
	for i, v := range vals {
		out[i] = complex(v, 0)
	}
	return out
}

// denseFromDiag expands a real diagonal into dense storage.
func denseFromDiag(d *DiagReal) *DenseReal {
	out := NewDenseReal(d.Shape)
	stride := diagStride(d.Shape)
	for k, v := range d.Vals {
		out.Vals[k*stride] = v
	}
	return out
}

// denseCplxFromDiag expands a complex diagonal into dense storage.
func denseCplxFromDiag(d *DiagCplx) *DenseCplx {
	out := NewDenseCplx(d.Shape)
	stride := diagStride(d.Shape)
	for k, v := range d.Vals {
		out.Vals[k*stride] = v
	}
	return out
}

// diagStride is the flat distance between consecutive diagonal elements.
func diagStride(shape Shape) int {
	s := 0
	for _, st := range shape.ComputeStrides() {
		s += st
	}
	if len(shape) == 0 {
		return 1
	}
	return s
}
