package storage

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/born-ml/itensor/internal/errs"
	"github.com/born-ml/itensor/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeOffsetCoords(t *testing.T) {
	s := Shape{2, 3, 4}
	coords := make([]int, 3)
	for off := range s.NumElements() {
		s.Coords(off, coords)
		assert.Equal(t, off, s.Offset(coords))
	}
	assert.Equal(t, []int{12, 4, 1}, s.ComputeStrides())
	assert.Equal(t, 2, s.MinDim())
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Error(t, Shape{2, 0}.Validate())
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		got, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("Sparse")
	assert.False(t, ok)
}

func TestApplyMissingCaseIsTypeMismatch(t *testing.T) {
	d := NewDenseCplx(Shape{2})
	_, _, err := Apply(d, ApplyReal(func(x float64) float64 { return 2 * x }))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTypeMismatch)

	var tm *errs.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "ApplyReal", tm.Op)
	assert.Equal(t, "DenseCplx", tm.Actual)
	assert.Equal(t, []string{"DenseReal", "DiagReal", "Zero"}, tm.Expected)
}

func TestSetEltPromotions(t *testing.T) {
	tests := []struct {
		name   string
		start  Data
		val    complex128
		coords []int
		want   Kind
	}{
		{"real into dense real", NewDenseReal(Shape{2, 2}), 3, []int{0, 1}, KindDenseReal},
		{"complex into dense real", NewDenseReal(Shape{2, 2}), 3i, []int{0, 1}, KindDenseCplx},
		{"diagonal into diag", mustDiag(t, Shape{2, 2}, 1, 2), 5, []int{1, 1}, KindDiagReal},
		{"off-diagonal into diag", mustDiag(t, Shape{2, 2}, 1, 2), 5, []int{0, 1}, KindDenseReal},
		{"complex diagonal into diag", mustDiag(t, Shape{2, 2}, 1, 2), 1i, []int{0, 0}, KindDiagCplx},
		{"zero off-diagonal into diag", mustDiag(t, Shape{2, 2}, 1, 2), 0, []int{0, 1}, KindDiagReal},
		{"nonzero into zero", NewZero(Shape{2, 2}), 4, []int{1, 0}, KindDenseReal},
		{"zero into zero", NewZero(Shape{2, 2}), 0, []int{1, 0}, KindZero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRef(tt.start)
			defer r.Release()
			_, err := Do(r, SetElt(tt.val, tt.coords))
			require.NoError(t, err)
			assert.Equal(t, tt.want, r.Data().Kind())

			got, err := Read(r.Data(), GetElt(tt.coords))
			require.NoError(t, err)
			assert.Equal(t, tt.val, got)
		})
	}
}

func TestDiagPreservesOtherElements(t *testing.T) {
	r := NewRef(mustDiag(t, Shape{2, 3}, 1, 2))
	defer r.Release()
	_, err := Do(r, SetElt(7, []int{0, 2}))
	require.NoError(t, err)

	dense, ok := r.Data().(*DenseReal)
	require.True(t, ok)
	assert.Equal(t, []float64{1, 0, 7, 0, 2, 0}, dense.Vals)
}

func TestApplyRealKeepsDiagonalWhenZeroFixed(t *testing.T) {
	r := NewRef(mustDiag(t, Shape{2, 2}, 1, 2))
	defer r.Release()

	_, err := Do(r, ApplyReal(func(x float64) float64 { return 3 * x }))
	require.NoError(t, err)
	assert.Equal(t, KindDiagReal, r.Data().Kind())

	_, err = Do(r, ApplyReal(func(x float64) float64 { return x + 1 }))
	require.NoError(t, err)
	dense, ok := r.Data().(*DenseReal)
	require.True(t, ok)
	assert.Equal(t, []float64{4, 1, 1, 7}, dense.Vals)
}

func TestVisitCoversEveryElement(t *testing.T) {
	var seen []float64
	_, err := Read(mustDiag(t, Shape{2, 2}, 1, 2), Visit(func(x float64) { seen = append(seen, x) }, 2))
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 0, 0, 4}, seen)

	count := 0
	_, err = Read(NewZero(Shape{3, 2}), VisitCplx(func(complex128) { count++ }, 1))
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestMultNormSum(t *testing.T) {
	d, err := NewDenseRealFrom(Shape{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	r := NewRef(d)
	defer r.Release()

	_, err = Do(r, Mult(2))
	require.NoError(t, err)
	sum, err := Read(r.Data(), SumEls())
	require.NoError(t, err)
	assert.Equal(t, complex(20, 0), sum)

	_, err = Do(r, Mult(1i))
	require.NoError(t, err)
	assert.Equal(t, KindDenseCplx, r.Data().Kind())

	n, err := Read(r.Data(), Norm())
	require.NoError(t, err)
	assert.InDelta(t, 2*5.477225575051661, n, 1e-12)

	m, err := Read(r.Data(), MaxAbs())
	require.NoError(t, err)
	assert.InDelta(t, 8, m, 1e-12)
}

func TestCollapse(t *testing.T) {
	d, err := NewDenseRealFrom(Shape{2}, []float64{1e-20, -1e-20})
	require.NoError(t, err)

	z, err := Collapse(d, 1e-15)
	require.NoError(t, err)
	require.NotNil(t, z)
	assert.Equal(t, KindZero, z.Kind())
	assert.Equal(t, Shape{2}, z.Dims())

	d.Vals[0] = 1
	z, err = Collapse(d, 1e-15)
	require.NoError(t, err)
	assert.Nil(t, z)
}

func TestRefShareDetach(t *testing.T) {
	before := testutil.ToFloat64(metrics.StorageDetaches)

	d, err := NewDenseRealFrom(Shape{2}, []float64{1, 2})
	require.NoError(t, err)
	a := NewRef(d)
	b := a.Share()
	defer a.Release()
	defer b.Release()

	assert.True(t, a.SameStorage(b))
	assert.False(t, a.Unique())
	assert.Panics(t, func() { b.Replace(NewZero(Shape{2})) })

	assert.True(t, b.Detach())
	assert.False(t, a.SameStorage(b))
	assert.True(t, a.Unique())
	assert.True(t, b.Unique())
	assert.False(t, b.Detach())
	assert.InDelta(t, before+1, testutil.ToFloat64(metrics.StorageDetaches), 0)

	_, err = Do(b, SetElt(9, []int{0}))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, a.Data().(*DenseReal).Vals)
	assert.Equal(t, []float64{9, 2}, b.Data().(*DenseReal).Vals)
}

func TestRefReleaseRestoresUnique(t *testing.T) {
	a := NewRef(NewZero(Shape{1}))
	b := a.Share()
	b.Release()
	b.Release()
	assert.True(t, a.Unique())
	a.Release()
}

func TestReplaceRecordsPromotion(t *testing.T) {
	c := metrics.StoragePromotions.WithLabelValues("DenseReal", "DenseCplx")
	before := testutil.ToFloat64(c)

	r := NewRef(NewDenseReal(Shape{2}))
	defer r.Release()
	_, err := Do(r, SetElt(1i, []int{1}))
	require.NoError(t, err)
	assert.InDelta(t, before+1, testutil.ToFloat64(c), 0)
}

func TestPermute(t *testing.T) {
	d, err := NewDenseRealFrom(Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	p, err := Permute(d, []int{1, 0})
	require.NoError(t, err)
	assert.Equal(t, Shape{3, 2}, p.Dims())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, p.(*DenseReal).Vals)

	_, err = Permute(d, []int{0})
	assert.Error(t, err)
}

func TestCombine(t *testing.T) {
	a, err := NewDenseRealFrom(Shape{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	b, err := NewDenseRealFrom(Shape{2, 2}, []float64{10, 20, 30, 40})
	require.NoError(t, err)

	sum, err := Combine(a, b, []int{1, 0}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{11, 32, 23, 44}, sum.(*DenseReal).Vals)

	diff, err := Combine(a, mustDiag(t, Shape{2, 2}, 1, 1), []int{0, 1}, 2, -1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 6, 7}, diff.(*DenseReal).Vals)

	cplx, err := Combine(a, b, []int{0, 1}, 1, 1i)
	require.NoError(t, err)
	assert.Equal(t, KindDenseCplx, cplx.Kind())
	assert.Equal(t, complex(1, 10), cplx.(*DenseCplx).Vals[0])
}

func TestContract(t *testing.T) {
	// a is 2x3, b is 3x2; a·b is a matrix product.
	a, err := NewDenseRealFrom(Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	b, err := NewDenseRealFrom(Shape{3, 2}, []float64{7, 8, 9, 10, 11, 12})
	require.NoError(t, err)

	got, err := Contract(a, b, Contraction{ContractA: []int{1}, ContractB: []int{0}})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2}, got.Dims())
	assert.Equal(t, []float64{58, 64, 139, 154}, got.(*DenseReal).Vals)

	full, err := Contract(a, a, Contraction{ContractA: []int{0, 1}, ContractB: []int{0, 1}})
	require.NoError(t, err)
	assert.Equal(t, 0, len(full.Dims()))
	assert.Equal(t, []float64{91}, full.(*DenseReal).Vals)

	outer, err := Contract(mustDiag(t, Shape{2, 2}, 1, 2), NewZero(Shape{3}), Contraction{})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 2, 3}, outer.Dims())

	_, err = Contract(a, a, Contraction{ContractA: []int{0}, ContractB: []int{1}})
	assert.Error(t, err)
}

func TestContractComplexMatchesReal(t *testing.T) {
	a := NewDenseReal(Shape{4, 3, 5})
	b := NewDenseReal(Shape{5, 2, 4})
	for n := range a.Vals {
		a.Vals[n] = float64(n%7) - 3
	}
	for n := range b.Vals {
		b.Vals[n] = float64(n%5) * 0.5
	}
	c := Contraction{ContractA: []int{0, 2}, ContractB: []int{2, 0}}

	re, err := Contract(a, b, c)
	require.NoError(t, err)
	cplx, err := Contract(&DenseCplx{Shape: a.Shape, Vals: toCplx(a.Vals)}, b, c)
	require.NoError(t, err)

	require.Equal(t, Shape{3, 2}, cplx.Dims())
	assert.Equal(t, toCplx(re.(*DenseReal).Vals), cplx.(*DenseCplx).Vals)
}

func TestContractMixedAxisOrder(t *testing.T) {
	// a(i,k,j) with i=2,k=2,j=3; b(j,l,k) with l=2. Sum over j and k.
	a := NewDenseReal(Shape{2, 2, 3})
	b := NewDenseReal(Shape{3, 2, 2})
	for n := range a.Vals {
		a.Vals[n] = float64(n + 1)
	}
	for n := range b.Vals {
		b.Vals[n] = float64(n%4) - 1
	}
	got, err := Contract(a, b, Contraction{ContractA: []int{2, 1}, ContractB: []int{0, 2}})
	require.NoError(t, err)
	require.Equal(t, Shape{2, 2}, got.Dims())

	sa, sb := a.Shape.ComputeStrides(), b.Shape.ComputeStrides()
	for i := range 2 {
		for l := range 2 {
			var want float64
			for j := range 3 {
				for k := range 2 {
					want += a.Vals[i*sa[0]+k*sa[1]+j*sa[2]] * b.Vals[j*sb[0]+l*sb[1]+k*sb[2]]
				}
			}
			assert.Equal(t, want, got.(*DenseReal).Vals[i*2+l], "i=%d l=%d", i, l)
		}
	}
}

func TestContractComplex(t *testing.T) {
	a, err := NewDiagCplx(Shape{2, 2}, []complex128{1i, 2})
	require.NoError(t, err)
	b, err := NewDenseRealFrom(Shape{2}, []float64{3, 4})
	require.NoError(t, err)

	got, err := Contract(a, b, Contraction{ContractA: []int{1}, ContractB: []int{0}})
	require.NoError(t, err)
	assert.Equal(t, []complex128{3i, 8}, got.(*DenseCplx).Vals)
}

func TestTie(t *testing.T) {
	d, err := NewDenseRealFrom(Shape{2, 3, 2}, []float64{
		1, 2, 3, 4, 5, 6,
		7, 8, 9, 10, 11, 12,
	})
	require.NoError(t, err)

	// Tie axes 0 and 2; the tied axis leads.
	got, err := Tie(d, [][]int{{0, 2}, {1}})
	require.NoError(t, err)
	assert.Equal(t, Shape{2, 3}, got.Dims())
	assert.Equal(t, []float64{1, 3, 5, 8, 10, 12}, got.(*DenseReal).Vals)
}

func TestWriteReadData(t *testing.T) {
	dense, err := NewDenseRealFrom(Shape{2, 2}, []float64{1, -2, 3.5, 0})
	require.NoError(t, err)
	diag, err := NewDiagCplx(Shape{2, 3}, []complex128{1i, 2 - 1i})
	require.NoError(t, err)

	for _, d := range []Data{dense, diag, NewDenseCplx(Shape{3}), mustDiag(t, Shape{2}, 4, 5), NewZero(Shape{4, 1})} {
		t.Run(d.Kind().String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, d))
			got, err := ReadData(&buf)
			require.NoError(t, err)
			assert.Equal(t, d, got)
			assert.Zero(t, buf.Len())
		})
	}
}

func TestReadDataRejectsCorruptCount(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, NewZero(Shape{2})))
	raw := buf.Bytes()
	raw[0] = byte(KindDenseReal)

	_, err := ReadData(bytes.NewReader(raw))
	assert.ErrorContains(t, err, "needs 2 values")

	raw[0] = 42
	_, err = ReadData(bytes.NewReader(raw))
	assert.ErrorContains(t, err, "unknown storage kind")
}

// record encodes a storage header followed by a value count and no values.
func record(t *testing.T, k Kind, shape Shape, count uint64) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, writeHeader(&buf, k, shape))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, count))
	return buf.Bytes()
}

func TestReadDataRejectsOverflowingShape(t *testing.T) {
	// 2^64 elements wraps to 0 under plain int multiplication.
	shape := make(Shape, 64)
	for n := range shape {
		shape[n] = 2
	}
	_, err := ReadData(bytes.NewReader(record(t, KindDenseReal, shape, 0)))
	assert.ErrorContains(t, err, "exceeds")
}

func TestReadDataRejectsCountBeyondRecord(t *testing.T) {
	raw := record(t, KindDenseReal, Shape{65536, 65536}, 65536*65536)
	_, err := ReadData(bytes.NewReader(raw))
	assert.ErrorContains(t, err, "bytes remain")

	// Readers without Len fail on the first short chunk.
	raw = append(record(t, KindDiagCplx, Shape{3, 3}, 3), make([]byte, 20)...)
	_, err = ReadData(io.MultiReader(bytes.NewReader(raw)))
	assert.ErrorContains(t, err, "failed to read values")
}

func mustDiag(t *testing.T, shape Shape, vals ...float64) *DiagReal {
	t.Helper()
	d, err := NewDiagReal(shape, vals)
	require.NoError(t, err)
	return d
}
