package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Bounds accepted when decoding untrusted input.
const (
	maxRank     = 64
	maxElements = math.MaxInt / 16
)

// Write encodes d to w: kind (uint8), rank (uint32), dims (uint32 each),
// value count (uint64), then the values little-endian (complex as re, im).
func Write(w io.Writer, d Data) error {
	if err := writeHeader(w, d.Kind(), d.Dims()); err != nil {
		return err
	}
	_, err := Read(d, Op[None]{
		Name:      "Write",
		DenseReal: func(s *DenseReal) (None, Data, error) { return None{}, nil, writeReals(w, s.Vals) },
		DenseCplx: func(s *DenseCplx) (None, Data, error) { return None{}, nil, writeCplxs(w, s.Vals) },
		DiagReal:  func(s *DiagReal) (None, Data, error) { return None{}, nil, writeReals(w, s.Vals) },
		DiagCplx:  func(s *DiagCplx) (None, Data, error) { return None{}, nil, writeCplxs(w, s.Vals) },
		Zero: func(*Zero) (None, Data, error) {
			return None{}, nil, binary.Write(w, binary.LittleEndian, uint64(0))
		},
	})
	return err
}

func writeHeader(w io.Writer, k Kind, dims Shape) error {
	if err := binary.Write(w, binary.LittleEndian, uint8(k)); err != nil {
		return fmt.Errorf("failed to write kind: %w", err)
	}
	//nolint:gosec // G115: rank is bounded by the index set
	if err := binary.Write(w, binary.LittleEndian, uint32(len(dims))); err != nil {
		return fmt.Errorf("failed to write rank: %w", err)
	}
	for _, d := range dims {
		//nolint:gosec // G115: dims are validated positive
		if err := binary.Write(w, binary.LittleEndian, uint32(d)); err != nil {
			return fmt.Errorf("failed to write dims: %w", err)
		}
	}
	return nil
}

func writeReals(w io.Writer, vals []float64) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(vals))); err != nil {
		return fmt.Errorf("failed to write value count: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, vals); err != nil {
		return fmt.Errorf("failed to write values: %w", err)
	}
	return nil
}

func writeCplxs(w io.Writer, vals []complex128) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(vals))); err != nil {
		return fmt.Errorf("failed to write value count: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, vals); err != nil {
		return fmt.Errorf("failed to write values: %w", err)
	}
	return nil
}

// ReadData decodes storage written by Write.
func ReadData(r io.Reader) (Data, error) {
	var (
		kind uint8
		rank uint32
	)
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return nil, fmt.Errorf("failed to read kind: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &rank); err != nil {
		return nil, fmt.Errorf("failed to read rank: %w", err)
	}
	if rank > maxRank {
		return nil, fmt.Errorf("rank %d exceeds limit %d", rank, maxRank)
	}
	dims32 := make([]uint32, rank)
	if err := binary.Read(r, binary.LittleEndian, dims32); err != nil {
		return nil, fmt.Errorf("failed to read dims: %w", err)
	}
	shape := make(Shape, rank)
	for i, d := range dims32 {
		if d == 0 || d > math.MaxInt32 {
			return nil, fmt.Errorf("invalid dimension %d at index %d", d, i)
		}
		shape[i] = int(d)
	}

	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("failed to read value count: %w", err)
	}

	k := Kind(kind)
	total, ok := boundedElements(shape)
	if !ok {
		return nil, fmt.Errorf("shape %v exceeds %d elements", shape, maxElements)
	}
	var want, size uint64
	switch k {
	case KindDenseReal:
		want, size = uint64(total), 8
	case KindDenseCplx:
		want, size = uint64(total), 16
	case KindDiagReal:
		want, size = uint64(shape.MinDim()), 8
	case KindDiagCplx:
		want, size = uint64(shape.MinDim()), 16
	case KindZero:
	default:
		return nil, fmt.Errorf("unknown storage kind %d", kind)
	}
	if count != want {
		return nil, fmt.Errorf("%s storage of shape %v needs %d values, header says %d", k, shape, want, count)
	}
	if l, ok := r.(interface{ Len() int }); ok && count > uint64(l.Len())/max(size, 1) {
		return nil, fmt.Errorf("%s storage needs %d values, only %d bytes remain", k, count, l.Len())
	}

	n := int(count)
	switch k {
	case KindDenseReal:
		vals, err := readVals[float64](r, n)
		return &DenseReal{Shape: shape, Vals: vals}, err
	case KindDenseCplx:
		vals, err := readVals[complex128](r, n)
		return &DenseCplx{Shape: shape, Vals: vals}, err
	case KindDiagReal:
		vals, err := readVals[float64](r, n)
		return &DiagReal{Shape: shape, Vals: vals}, err
	case KindDiagCplx:
		vals, err := readVals[complex128](r, n)
		return &DiagCplx{Shape: shape, Vals: vals}, err
	default:
		return NewZero(shape), nil
	}
}

// boundedElements multiplies out shape, failing past maxElements.
func boundedElements(shape Shape) (int, bool) {
	n := 1
	for _, d := range shape {
		if d <= 0 || n > maxElements/d {
			return 0, false
		}
		n *= d
	}
	return n, true
}

// readVals decodes n values in chunks, so a short stream fails before the
// full slice is allocated.
func readVals[T number](r io.Reader, n int) ([]T, error) {
	const chunk = 1 << 16
	vals := make([]T, 0, min(n, chunk))
	buf := make([]T, min(n, chunk))
	for len(vals) < n {
		part := buf[:min(n-len(vals), chunk)]
		if err := binary.Read(r, binary.LittleEndian, part); err != nil {
			return nil, fmt.Errorf("failed to read values: %w", err)
		}
		vals = append(vals, part...)
	}
	return vals, nil
}
