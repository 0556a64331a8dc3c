package itensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/itensor/internal/errs"
	"github.com/born-ml/itensor/internal/index"
	"github.com/born-ml/itensor/internal/storage"
)

// ToMatrix copies a real rank-2 tensor into a dense matrix, scale applied.
// Rows follow the first index of t, columns the second.
func (t *ITensor) ToMatrix() (*mat.Dense, error) {
	if err := t.live("ToMatrix"); err != nil {
		return nil, err
	}
	if t.is.Rank() != 2 {
		return nil, errs.Structural("ToMatrix", "rank %d tensor is not a matrix", t.is.Rank())
	}
	dims := t.is.Dims()
	vals := make([]float64, 0, dims[0]*dims[1])
	if err := t.Visit(func(x float64) { vals = append(vals, x) }); err != nil {
		return nil, err
	}
	return mat.NewDense(dims[0], dims[1], vals), nil
}

// FromMatrix creates a rank-2 tensor over (row, col) holding the elements of m.
func FromMatrix(row, col index.Index, m mat.Matrix) (*ITensor, error) {
	r, c := m.Dims()
	if r != row.M() || c != col.M() {
		return nil, errs.Structural("FromMatrix", "matrix is %dx%d, indices are %dx%d", r, c, row.M(), col.M())
	}
	is, err := index.NewIndexSet(row, col)
	if err != nil {
		return nil, err
	}
	d := storage.NewDenseReal(is.Dims())
	for i := range r {
		for j := range c {
			d.Vals[i*c+j] = m.At(i, j)
		}
	}
	return build(is, d), nil
}
