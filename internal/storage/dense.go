package storage

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// number is the element type of dense storage.
type number interface {
	~float64 | ~complex128
}

// ToDense returns d in dense form: *DenseReal or *DenseCplx.
// Dense storage is returned as is and must be treated as read-only.
func ToDense(d Data) (Data, error) {
	return Read(d, Op[Data]{
		Name:      "ToDense",
		DenseReal: func(d *DenseReal) (Data, Data, error) { return d, nil, nil },
		DenseCplx: func(d *DenseCplx) (Data, Data, error) { return d, nil, nil },
		DiagReal:  func(d *DiagReal) (Data, Data, error) { return denseFromDiag(d), nil, nil },
		DiagCplx:  func(d *DiagCplx) (Data, Data, error) { return denseCplxFromDiag(d), nil, nil },
		Zero:      func(d *Zero) (Data, Data, error) { return NewDenseReal(d.Shape), nil, nil },
	})
}

// realVals and cplxVals view dense storage as a single numeric type.
func realVals(d Data) ([]float64, bool) {
	if r, ok := d.(*DenseReal); ok {
		return r.Vals, true
	}
	return nil, false
}

func cplxVals(d Data) []complex128 {
	switch s := d.(type) {
	case *DenseCplx:
		return s.Vals
	case *DenseReal:
		return toCplx(s.Vals)
	default:
		panic(fmt.Sprintf("storage: %s is not dense", d.Kind()))
	}
}

// Permute reorders the axes of d: axis k of d becomes axis perm[k] of the result.
func Permute(d Data, perm []int) (Data, error) {
	dense, err := ToDense(d)
	if err != nil {
		return nil, err
	}
	src := dense.Dims()
	if len(perm) != len(src) {
		return nil, fmt.Errorf("permutation of length %d for rank %d storage", len(perm), len(src))
	}
	dst := make(Shape, len(src))
	for k, p := range perm {
		dst[p] = src[k]
	}
	if rv, ok := realVals(dense); ok {
		return &DenseReal{Shape: dst, Vals: permuteVals(rv, src, dst, perm)}, nil
	}
	return &DenseCplx{Shape: dst, Vals: permuteVals(cplxVals(dense), src, dst, perm)}, nil
}

func permuteVals[T number](vals []T, src, dst Shape, perm []int) []T {
	out := make([]T, len(vals))
	coords := make([]int, len(src))
	moved := make([]int, len(src))
	for off, v := range vals {
		src.Coords(off, coords)
		for k, p := range perm {
			moved[p] = coords[k]
		}
		out[dst.Offset(moved)] = v
	}
	return out
}

// Combine returns fa·a + fb·b, where b's axis k lines up with a's axis perm[k].
// The result has a's shape and is complex if either operand or factor is.
func Combine(a, b Data, perm []int, fa, fb complex128) (Data, error) {
	da, err := ToDense(a)
	if err != nil {
		return nil, err
	}
	db, err := Permute(b, perm)
	if err != nil {
		return nil, err
	}
	if !da.Dims().Equal(db.Dims()) {
		return nil, fmt.Errorf("cannot combine shapes %v and %v", da.Dims(), db.Dims())
	}
	ra, aReal := realVals(da)
	rb, bReal := realVals(db)
	if aReal && bReal && imag(fa) == 0 && imag(fb) == 0 {
		out := make([]float64, len(ra))
		for i := range out {
			out[i] = real(fa)*ra[i] + real(fb)*rb[i]
		}
		return &DenseReal{Shape: da.Dims().Clone(), Vals: out}, nil
	}
	ca, cb := cplxVals(da), cplxVals(db)
	out := make([]complex128, len(ca))
	for i := range out {
		out[i] = fa*ca[i] + fb*cb[i]
	}
	return &DenseCplx{Shape: da.Dims().Clone(), Vals: out}, nil
}

// Contraction describes which axes of two storages are summed over.
// ContractA[n] of a is summed against ContractB[n] of b; the result axes are
// the remaining axes of a followed by the remaining axes of b.
type Contraction struct {
	ContractA []int
	ContractB []int
}

// Contract sums a and b over the paired axes of c.
func Contract(a, b Data, c Contraction) (Data, error) {
	if len(c.ContractA) != len(c.ContractB) {
		return nil, fmt.Errorf("contraction pairs %d axes with %d", len(c.ContractA), len(c.ContractB))
	}
	da, err := ToDense(a)
	if err != nil {
		return nil, err
	}
	db, err := ToDense(b)
	if err != nil {
		return nil, err
	}
	plan, err := newContractPlan(da.Dims(), db.Dims(), c)
	if err != nil {
		return nil, err
	}
	_, aReal := realVals(da)
	_, bReal := realVals(db)
	if aReal && bReal {
		return contractGemm(da, db, plan)
	}
	return &DenseCplx{Shape: plan.out, Vals: contractVals(cplxVals(da), cplxVals(db), plan)}, nil
}

// contractPlan holds the axis bookkeeping shared by the real and complex loops.
type contractPlan struct {
	sa, sb       []int // strides of a and b
	freeA, freeB []int // free axes of a and b
	sumA, sumB   []int // contracted axes of a and b
	sumDims      Shape
	out          Shape
}

func newContractPlan(a, b Shape, c Contraction) (*contractPlan, error) {
	p := &contractPlan{sa: a.ComputeStrides(), sb: b.ComputeStrides(), sumA: c.ContractA, sumB: c.ContractB}
	usedA := make([]bool, len(a))
	usedB := make([]bool, len(b))
	for n := range c.ContractA {
		ia, ib := c.ContractA[n], c.ContractB[n]
		if ia < 0 || ia >= len(a) || ib < 0 || ib >= len(b) {
			return nil, fmt.Errorf("contracted axis out of range: %d/%d", ia, ib)
		}
		if a[ia] != b[ib] {
			return nil, fmt.Errorf("contracted axes have sizes %d and %d", a[ia], b[ib])
		}
		usedA[ia], usedB[ib] = true, true
		p.sumDims = append(p.sumDims, a[ia])
	}
	for k, used := range usedA {
		if !used {
			p.freeA = append(p.freeA, k)
			p.out = append(p.out, a[k])
		}
	}
	for k, used := range usedB {
		if !used {
			p.freeB = append(p.freeB, k)
			p.out = append(p.out, b[k])
		}
	}
	if p.out == nil {
		p.out = Shape{}
	}
	return p, nil
}

// contractGemm brings a to (free, summed) and b to (summed, free) axis order
// so the contraction becomes a single real matrix product.
func contractGemm(a, b Data, p *contractPlan) (Data, error) {
	pa, err := Permute(a, inversePerm(p.freeA, p.sumA))
	if err != nil {
		return nil, err
	}
	pb, err := Permute(b, inversePerm(p.sumB, p.freeB))
	if err != nil {
		return nil, err
	}
	m := p.out[:len(p.freeA)].NumElements()
	n := p.out[len(p.freeA):].NumElements()
	k := p.sumDims.NumElements()

	out := make([]float64, m*n)
	c := mat.NewDense(m, n, out)
	c.Mul(mat.NewDense(m, k, pa.(*DenseReal).Vals), mat.NewDense(k, n, pb.(*DenseReal).Vals))
	return &DenseReal{Shape: p.out, Vals: out}, nil
}

// inversePerm returns the Permute argument that moves the listed source axes
// to positions 0, 1, 2, ... in order.
func inversePerm(groups ...[]int) []int {
	var perm []int
	n := 0
	for _, g := range groups {
		for _, k := range g {
			for len(perm) <= k {
				perm = append(perm, 0)
			}
			perm[k] = n
			n++
		}
	}
	return perm
}

func contractVals[T number](a, b []T, p *contractPlan) []T {
	out := make([]T, p.out.NumElements())
	outCoords := make([]int, len(p.out))
	sumCoords := make([]int, len(p.sumDims))
	nsum := p.sumDims.NumElements()
	for off := range out {
		p.out.Coords(off, outCoords)
		baseA, baseB := 0, 0
		for n, k := range p.freeA {
			baseA += outCoords[n] * p.sa[k]
		}
		for n, k := range p.freeB {
			baseB += outCoords[len(p.freeA)+n] * p.sb[k]
		}
		var acc T
		for s := 0; s < nsum; s++ {
			p.sumDims.Coords(s, sumCoords)
			oa, ob := baseA, baseB
			for n, c := range sumCoords {
				oa += c * p.sa[p.sumA[n]]
				ob += c * p.sb[p.sumB[n]]
			}
			acc += a[oa] * b[ob]
		}
		out[off] = acc
	}
	return out
}

// Tie builds storage for a tensor whose result axis n is fed by the source
// axes sources[n]; tied source axes share one coordinate.
func Tie(d Data, sources [][]int) (Data, error) {
	dense, err := ToDense(d)
	if err != nil {
		return nil, err
	}
	src := dense.Dims()
	dst := make(Shape, len(sources))
	for n, s := range sources {
		dst[n] = src[s[0]]
	}
	if rv, ok := realVals(dense); ok {
		return &DenseReal{Shape: dst, Vals: tieVals(rv, src, dst, sources)}, nil
	}
	return &DenseCplx{Shape: dst, Vals: tieVals(cplxVals(dense), src, dst, sources)}, nil
}

func tieVals[T number](vals []T, src, dst Shape, sources [][]int) []T {
	out := make([]T, dst.NumElements())
	coords := make([]int, len(dst))
	full := make([]int, len(src))
	for off := range out {
		dst.Coords(off, coords)
		for n, s := range sources {
			for _, k := range s {
				full[k] = coords[n]
			}
		}
		out[off] = vals[src.Offset(full)]
	}
	return out
}
