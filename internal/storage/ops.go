package storage

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs"
	"gonum.org/v1/gonum/floats"
)

// None is the value type of operations that only mutate.
type None = struct{}

// GetElt reads the element at 0-based coordinates.
func GetElt(coords []int) Op[complex128] {
	return Op[complex128]{
		Name: "GetElt",
		DenseReal: func(d *DenseReal) (complex128, Data, error) {
			return complex(d.Vals[d.Shape.Offset(coords)], 0), nil, nil
		},
		DenseCplx: func(d *DenseCplx) (complex128, Data, error) {
			return d.Vals[d.Shape.Offset(coords)], nil, nil
		},
		DiagReal: func(d *DiagReal) (complex128, Data, error) {
			if k := diagPos(coords); k >= 0 {
				return complex(d.Vals[k], 0), nil, nil
			}
			return 0, nil, nil
		},
		DiagCplx: func(d *DiagCplx) (complex128, Data, error) {
			if k := diagPos(coords); k >= 0 {
				return d.Vals[k], nil, nil
			}
			return 0, nil, nil
		},
		Zero: func(*Zero) (complex128, Data, error) {
			return 0, nil, nil
		},
	}
}

// SetElt writes val at 0-based coordinates, promoting the kind when the
// current one cannot hold the value (complex into real, off-diagonal into
// diagonal, nonzero into Zero).
func SetElt(val complex128, coords []int) Op[None] {
	isReal := imag(val) == 0
	return Op[None]{
		Name: "SetElt",
		DenseReal: func(d *DenseReal) (None, Data, error) {
			if isReal {
				d.Vals[d.Shape.Offset(coords)] = real(val)
				return None{}, nil, nil
			}
			c := &DenseCplx{Shape: d.Shape, Vals: toCplx(d.Vals)}
			c.Vals[c.Shape.Offset(coords)] = val
			return None{}, c, nil
		},
		DenseCplx: func(d *DenseCplx) (None, Data, error) {
			d.Vals[d.Shape.Offset(coords)] = val
			return None{}, nil, nil
		},
		DiagReal: func(d *DiagReal) (None, Data, error) {
			k := diagPos(coords)
			switch {
			case k >= 0 && isReal:
				d.Vals[k] = real(val)
				return None{}, nil, nil
			case k >= 0:
				c := &DiagCplx{Shape: d.Shape, Vals: toCplx(d.Vals)}
				c.Vals[k] = val
				return None{}, c, nil
			case val == 0:
				return None{}, nil, nil
			}
			dense := denseFromDiag(d)
			if isReal {
				dense.Vals[dense.Shape.Offset(coords)] = real(val)
				return None{}, dense, nil
			}
			c := &DenseCplx{Shape: dense.Shape, Vals: toCplx(dense.Vals)}
			c.Vals[c.Shape.Offset(coords)] = val
			return None{}, c, nil
		},
		DiagCplx: func(d *DiagCplx) (None, Data, error) {
			k := diagPos(coords)
			switch {
			case k >= 0:
				d.Vals[k] = val
				return None{}, nil, nil
			case val == 0:
				return None{}, nil, nil
			}
			dense := denseCplxFromDiag(d)
			dense.Vals[dense.Shape.Offset(coords)] = val
			return None{}, dense, nil
		},
		Zero: func(d *Zero) (None, Data, error) {
			if val == 0 {
				return None{}, nil, nil
			}
			if isReal {
				dense := NewDenseReal(d.Shape)
				dense.Vals[dense.Shape.Offset(coords)] = real(val)
				return None{}, dense, nil
			}
			dense := NewDenseCplx(d.Shape)
			dense.Vals[dense.Shape.Offset(coords)] = val
			return None{}, dense, nil
		},
	}
}

// Fill sets every element to val.
func Fill(val complex128) Op[None] {
	fill := func(shape Shape) (None, Data, error) {
		if imag(val) == 0 {
			d := NewDenseReal(shape)
			for i := range d.Vals {
				d.Vals[i] = real(val)
			}
			return None{}, d, nil
		}
		d := NewDenseCplx(shape)
		for i := range d.Vals {
			d.Vals[i] = val
		}
		return None{}, d, nil
	}
	return Op[None]{
		Name: "Fill",
		DenseReal: func(d *DenseReal) (None, Data, error) {
			if imag(val) != 0 {
				return fill(d.Shape)
			}
			for i := range d.Vals {
				d.Vals[i] = real(val)
			}
			return None{}, nil, nil
		},
		DenseCplx: func(d *DenseCplx) (None, Data, error) {
			if imag(val) == 0 {
				return fill(d.Shape)
			}
			for i := range d.Vals {
				d.Vals[i] = val
			}
			return None{}, nil, nil
		},
		DiagReal: func(d *DiagReal) (None, Data, error) { return fill(d.Shape) },
		DiagCplx: func(d *DiagCplx) (None, Data, error) { return fill(d.Shape) },
		Zero: func(d *Zero) (None, Data, error) {
			if val == 0 {
				return None{}, nil, nil
			}
			return fill(d.Shape)
		},
	}
}

// Generate replaces every element with f(), in row-major order.
func Generate(f func() float64) Op[None] {
	gen := func(shape Shape) (None, Data, error) {
		d := NewDenseReal(shape)
		for i := range d.Vals {
			d.Vals[i] = f()
		}
		return None{}, d, nil
	}
	return Op[None]{
		Name: "Generate",
		DenseReal: func(d *DenseReal) (None, Data, error) {
			for i := range d.Vals {
				d.Vals[i] = f()
			}
			return None{}, nil, nil
		},
		DenseCplx: func(d *DenseCplx) (None, Data, error) { return gen(d.Shape) },
		DiagReal:  func(d *DiagReal) (None, Data, error) { return gen(d.Shape) },
		DiagCplx:  func(d *DiagCplx) (None, Data, error) { return gen(d.Shape) },
		Zero:      func(d *Zero) (None, Data, error) { return gen(d.Shape) },
	}
}

// GenerateCplx replaces every element with f(), producing complex storage.
func GenerateCplx(f func() complex128) Op[None] {
	gen := func(shape Shape) (None, Data, error) {
		d := NewDenseCplx(shape)
		for i := range d.Vals {
			d.Vals[i] = f()
		}
		return None{}, d, nil
	}
	return Op[None]{
		Name:      "GenerateCplx",
		DenseReal: func(d *DenseReal) (None, Data, error) { return gen(d.Shape) },
		DenseCplx: func(d *DenseCplx) (None, Data, error) {
			for i := range d.Vals {
				d.Vals[i] = f()
			}
			return None{}, nil, nil
		},
		DiagReal: func(d *DiagReal) (None, Data, error) { return gen(d.Shape) },
		DiagCplx: func(d *DiagCplx) (None, Data, error) { return gen(d.Shape) },
		Zero:     func(d *Zero) (None, Data, error) { return gen(d.Shape) },
	}
}

// ApplyReal replaces every element x with f(x). Only real kinds are supported.
//
// Diagonal and zero storage keep their kind when f(0) == 0; otherwise every
// implicit zero changes and the storage is expanded to dense.
func ApplyReal(f func(float64) float64) Op[None] {
	return Op[None]{
		Name: "ApplyReal",
		DenseReal: func(d *DenseReal) (None, Data, error) {
			for i, v := range d.Vals {
				d.Vals[i] = f(v)
			}
			return None{}, nil, nil
		},
		DiagReal: func(d *DiagReal) (None, Data, error) {
			if f(0) == 0 {
				for i, v := range d.Vals {
					d.Vals[i] = f(v)
				}
				return None{}, nil, nil
			}
			dense := denseFromDiag(d)
			for i, v := range dense.Vals {
				dense.Vals[i] = f(v)
			}
			return None{}, dense, nil
		},
		Zero: func(d *Zero) (None, Data, error) {
			f0 := f(0)
			if f0 == 0 {
				return None{}, nil, nil
			}
			dense := NewDenseReal(d.Shape)
			for i := range dense.Vals {
				dense.Vals[i] = f0
			}
			return None{}, dense, nil
		},
	}
}

// ApplyCplx replaces every element z with f(z). Real kinds are promoted to complex.
func ApplyCplx(f func(complex128) complex128) Op[None] {
	applyDense := func(d *DenseCplx) {
		for i, v := range d.Vals {
			d.Vals[i] = f(v)
		}
	}
	return Op[None]{
		Name: "ApplyCplx",
		DenseReal: func(d *DenseReal) (None, Data, error) {
			c := &DenseCplx{Shape: d.Shape, Vals: toCplx(d.Vals)}
			applyDense(c)
			return None{}, c, nil
		},
		DenseCplx: func(d *DenseCplx) (None, Data, error) {
			applyDense(d)
			return None{}, nil, nil
		},
		DiagReal: func(d *DiagReal) (None, Data, error) {
			if f(0) == 0 {
				c := &DiagCplx{Shape: d.Shape, Vals: toCplx(d.Vals)}
				for i, v := range c.Vals {
					c.Vals[i] = f(v)
				}
				return None{}, c, nil
			}
			dense := denseFromDiag(d)
			c := &DenseCplx{Shape: dense.Shape, Vals: toCplx(dense.Vals)}
			applyDense(c)
			return None{}, c, nil
		},
		DiagCplx: func(d *DiagCplx) (None, Data, error) {
			if f(0) == 0 {
				for i, v := range d.Vals {
					d.Vals[i] = f(v)
				}
				return None{}, nil, nil
			}
			dense := denseCplxFromDiag(d)
			applyDense(dense)
			return None{}, dense, nil
		},
		Zero: func(d *Zero) (None, Data, error) {
			f0 := f(0)
			if f0 == 0 {
				return None{}, nil, nil
			}
			dense := NewDenseCplx(d.Shape)
			for i := range dense.Vals {
				dense.Vals[i] = f0
			}
			return None{}, dense, nil
		},
	}
}

// Visit calls f with fac·x for every element x, in row-major order.
// Only real kinds are supported.
func Visit(f func(float64), fac float64) Op[None] {
	return Op[None]{
		Name: "Visit",
		DenseReal: func(d *DenseReal) (None, Data, error) {
			for _, v := range d.Vals {
				f(fac * v)
			}
			return None{}, nil, nil
		},
		DiagReal: func(d *DiagReal) (None, Data, error) {
			for _, v := range denseFromDiag(d).Vals {
				f(fac * v)
			}
			return None{}, nil, nil
		},
		Zero: func(d *Zero) (None, Data, error) {
			for range d.Shape.NumElements() {
				f(0)
			}
			return None{}, nil, nil
		},
	}
}

// VisitCplx calls f with fac·z for every element z, in row-major order.
func VisitCplx(f func(complex128), fac complex128) Op[None] {
	visitReal := func(vals []float64) {
		for _, v := range vals {
			f(fac * complex(v, 0))
		}
	}
	visitCplx := func(vals []complex128) {
		for _, v := range vals {
			f(fac * v)
		}
	}
	return Op[None]{
		Name: "VisitCplx",
		DenseReal: func(d *DenseReal) (None, Data, error) {
			visitReal(d.Vals)
			return None{}, nil, nil
		},
		DenseCplx: func(d *DenseCplx) (None, Data, error) {
			visitCplx(d.Vals)
			return None{}, nil, nil
		},
		DiagReal: func(d *DiagReal) (None, Data, error) {
			visitReal(denseFromDiag(d).Vals)
			return None{}, nil, nil
		},
		DiagCplx: func(d *DiagCplx) (None, Data, error) {
			visitCplx(denseCplxFromDiag(d).Vals)
			return None{}, nil, nil
		},
		Zero: func(d *Zero) (None, Data, error) {
			for range d.Shape.NumElements() {
				f(0)
			}
			return None{}, nil, nil
		},
	}
}

// Mult multiplies every stored value by fac. A complex fac promotes real kinds.
func Mult(fac complex128) Op[None] {
	isReal := imag(fac) == 0
	return Op[None]{
		Name: "Mult",
		DenseReal: func(d *DenseReal) (None, Data, error) {
			if isReal {
				floats.Scale(real(fac), d.Vals)
				return None{}, nil, nil
			}
			c := &DenseCplx{Shape: d.Shape, Vals: toCplx(d.Vals)}
			cmplxs.Scale(fac, c.Vals)
			return None{}, c, nil
		},
		DenseCplx: func(d *DenseCplx) (None, Data, error) {
			cmplxs.Scale(fac, d.Vals)
			return None{}, nil, nil
		},
		DiagReal: func(d *DiagReal) (None, Data, error) {
			if isReal {
				floats.Scale(real(fac), d.Vals)
				return None{}, nil, nil
			}
			c := &DiagCplx{Shape: d.Shape, Vals: toCplx(d.Vals)}
			cmplxs.Scale(fac, c.Vals)
			return None{}, c, nil
		},
		DiagCplx: func(d *DiagCplx) (None, Data, error) {
			cmplxs.Scale(fac, d.Vals)
			return None{}, nil, nil
		},
		Zero: func(*Zero) (None, Data, error) { return None{}, nil, nil },
	}
}

// Norm returns the Frobenius norm of the stored values.
func Norm() Op[float64] {
	return Op[float64]{
		Name:      "Norm",
		DenseReal: func(d *DenseReal) (float64, Data, error) { return floats.Norm(d.Vals, 2), nil, nil },
		DenseCplx: func(d *DenseCplx) (float64, Data, error) { return cmplxs.Norm(d.Vals, 2), nil, nil },
		DiagReal:  func(d *DiagReal) (float64, Data, error) { return floats.Norm(d.Vals, 2), nil, nil },
		DiagCplx:  func(d *DiagCplx) (float64, Data, error) { return cmplxs.Norm(d.Vals, 2), nil, nil },
		Zero:      func(*Zero) (float64, Data, error) { return 0, nil, nil },
	}
}

// MaxAbs returns the largest stored magnitude.
func MaxAbs() Op[float64] {
	maxReal := func(vals []float64) float64 {
		m := 0.0
		for _, v := range vals {
			m = math.Max(m, math.Abs(v))
		}
		return m
	}
	maxCplx := func(vals []complex128) float64 {
		m := 0.0
		for _, v := range vals {
			m = math.Max(m, cmplx.Abs(v))
		}
		return m
	}
	return Op[float64]{
		Name:      "MaxAbs",
		DenseReal: func(d *DenseReal) (float64, Data, error) { return maxReal(d.Vals), nil, nil },
		DenseCplx: func(d *DenseCplx) (float64, Data, error) { return maxCplx(d.Vals), nil, nil },
		DiagReal:  func(d *DiagReal) (float64, Data, error) { return maxReal(d.Vals), nil, nil },
		DiagCplx:  func(d *DiagCplx) (float64, Data, error) { return maxCplx(d.Vals), nil, nil },
		Zero:      func(*Zero) (float64, Data, error) { return 0, nil, nil },
	}
}

// SumEls returns the sum of all elements.
func SumEls() Op[complex128] {
	return Op[complex128]{
		Name:      "SumEls",
		DenseReal: func(d *DenseReal) (complex128, Data, error) { return complex(floats.Sum(d.Vals), 0), nil, nil },
		DenseCplx: func(d *DenseCplx) (complex128, Data, error) { return cmplxs.Sum(d.Vals), nil, nil },
		DiagReal:  func(d *DiagReal) (complex128, Data, error) { return complex(floats.Sum(d.Vals), 0), nil, nil },
		DiagCplx:  func(d *DiagCplx) (complex128, Data, error) { return cmplxs.Sum(d.Vals), nil, nil },
		Zero:      func(*Zero) (complex128, Data, error) { return 0, nil, nil },
	}
}

// Conj conjugates complex storage in place. Real kinds are unchanged.
func Conj() Op[None] {
	conj := func(vals []complex128) {
		for i, v := range vals {
			vals[i] = cmplx.Conj(v)
		}
	}
	noop := func() (None, Data, error) { return None{}, nil, nil }
	return Op[None]{
		Name:      "Conj",
		DenseReal: func(*DenseReal) (None, Data, error) { return noop() },
		DenseCplx: func(d *DenseCplx) (None, Data, error) {
			conj(d.Vals)
			return None{}, nil, nil
		},
		DiagReal: func(*DiagReal) (None, Data, error) { return noop() },
		DiagCplx: func(d *DiagCplx) (None, Data, error) {
			conj(d.Vals)
			return None{}, nil, nil
		},
		Zero: func(*Zero) (None, Data, error) { return noop() },
	}
}

// Collapse returns exact-zero storage when the norm of d is at most threshold,
// otherwise nil.
func Collapse(d Data, threshold float64) (Data, error) {
	if d.Kind() == KindZero {
		return nil, nil
	}
	n, err := Read(d, Norm())
	if err != nil {
		return nil, err
	}
	if n > threshold {
		return nil, nil
	}
	return NewZero(d.Dims()), nil
}
