package storage

import "fmt"

// Shape holds the dimensions of a storage, in the owning IndexSet's order.
type Shape []int

// NumElements returns the number of dense elements.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// MinDim returns the smallest dimension, which is the diagonal length.
func (s Shape) MinDim() int {
	if len(s) == 0 {
		return 1
	}
	m := s[0]
	for _, dim := range s[1:] {
		if dim < m {
			m = dim
		}
	}
	return m
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// Offset returns the flat row-major offset of 0-based coordinates.
func (s Shape) Offset(coords []int) int {
	off := 0
	for i, c := range coords {
		off = off*s[i] + c
	}
	return off
}

// Coords writes the coordinates of flat offset off into dst.
func (s Shape) Coords(off int, dst []int) {
	for i := len(s) - 1; i >= 0; i-- {
		dst[i] = off % s[i]
		off /= s[i]
	}
}

// diagPos returns k if every coordinate equals k, or -1 when off the diagonal.
func diagPos(coords []int) int {
	if len(coords) == 0 {
		return 0
	}
	k := coords[0]
	for _, c := range coords[1:] {
		if c != k {
			return -1
		}
	}
	return k
}
