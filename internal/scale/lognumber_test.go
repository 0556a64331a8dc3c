package scale

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNumberRealRoundTrip(t *testing.T) {
	for _, r := range []float64{1, -1, 2.5, -3e-7, 1e200, -1e-200} {
		got, err := FromReal(r).Real()
		require.NoError(t, err)
		assert.InEpsilon(t, r, got, 1e-12)
	}

	z, err := FromReal(0).Real()
	require.NoError(t, err)
	assert.Equal(t, 0.0, z)
	assert.True(t, LogNumber{}.IsZero())
}

func TestLogNumberMulBeyondFloatRange(t *testing.T) {
	l := One().MulReal(1e200).MulReal(1e200)
	assert.InDelta(t, 2*200*math.Ln10, l.LogNum(), 1e-9)

	_, err := l.Real()
	assert.ErrorIs(t, err, ErrTooBig)

	back := l.MulReal(1e-200).MulReal(1e-200)
	v, err := back.Real()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v, 1e-12)
}

func TestLogNumberUnderflow(t *testing.T) {
	l := One().MulReal(1e-300).MulReal(1e-300)
	v, err := l.Complex()
	assert.ErrorIs(t, err, ErrTooSmall)
	assert.Equal(t, complex128(0), v)
}

func TestLogNumberSignAndPhase(t *testing.T) {
	l := FromReal(-2).MulReal(-3)
	assert.Equal(t, 1.0, l.Sign())
	assert.True(t, l.IsReal())

	c := One().MulComplex(1i)
	assert.False(t, c.IsReal())
	c = c.MulComplex(1i)
	assert.True(t, c.IsReal(), "i·i is exactly real")
	assert.Equal(t, -1.0, c.Sign())

	z, err := One().MulComplex(complex(3, 4)).Complex()
	require.NoError(t, err)
	assert.InDelta(t, 3.0, real(z), 1e-12)
	assert.InDelta(t, 4.0, imag(z), 1e-12)

	_, err = One().MulComplex(1i).Real()
	assert.Error(t, err)
}

func TestLogNumberDiv(t *testing.T) {
	l, err := FromReal(6).Div(FromReal(-3))
	require.NoError(t, err)
	v, err := l.Real()
	require.NoError(t, err)
	assert.InDelta(t, -2.0, v, 1e-12)

	_, err = One().Div(LogNumber{})
	assert.Error(t, err)

	zero, err := LogNumber{}.Div(FromReal(2))
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestLogNumberWithin(t *testing.T) {
	assert.True(t, FromReal(1e100).Within(300))
	assert.False(t, FromReal(1e200).Within(300))
	assert.True(t, LogNumber{}.Within(0))
	assert.True(t, One().IsOne())
	assert.True(t, FromReal(2).ApproxEqual(FromReal(2+1e-15), 1e-12))
	assert.False(t, FromReal(2).ApproxEqual(FromReal(-2), 1e-12))
}
