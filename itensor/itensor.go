// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package itensor

import (
	"io"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/itensor/internal/config"
	"github.com/born-ml/itensor/internal/errs"
	"github.com/born-ml/itensor/internal/index"
	"github.com/born-ml/itensor/internal/itensor"
	"github.com/born-ml/itensor/internal/scale"
	"github.com/born-ml/itensor/internal/serialization"
	"github.com/born-ml/itensor/internal/storage"
)

// Type aliases for public API

// ITensor is a labeled tensor.
type ITensor = itensor.ITensor

// Index labels one axis: identity, name, size, type, prime level and arrow.
type Index = index.Index

// IndexSet is an ordered set of distinct indices.
type IndexSet = index.IndexSet

// IndexVal pairs an Index with a 1-based coordinate.
type IndexVal = index.IndexVal

// Arrow is the orientation of an Index.
type Arrow = index.Arrow

// Arrow directions.
const (
	In      Arrow = index.In
	Neither Arrow = index.Neither
	Out     Arrow = index.Out
)

// IndexType classifies indices for prime-level operations.
type IndexType = index.IndexType

// Index types. All selects every type.
const (
	All  IndexType = index.All
	Link IndexType = index.Link
	Site IndexType = index.Site
)

// LogNumber is a scale factor stored as phase·exp(lognum).
type LogNumber = scale.LogNumber

// Kind names a storage representation.
type Kind = storage.Kind

// Storage kinds.
const (
	DenseReal Kind = storage.KindDenseReal
	DenseCplx Kind = storage.KindDenseCplx
	DiagReal  Kind = storage.KindDiagReal
	DiagCplx  Kind = storage.KindDiagCplx
	Zero      Kind = storage.KindZero
)

// Result is the outcome of Add, Sub or Contract.
type Result = itensor.Result

// Outcome tells an ordinary result from one that vanished.
type Outcome = itensor.Outcome

// Result outcomes.
const (
	Ordinary  Outcome = itensor.Ordinary
	ExactZero Outcome = itensor.ExactZero
)

// Config holds numeric thresholds and debug switches.
type Config = config.Config

// ConfigOption configures a Config.
type ConfigOption = config.Option

// Errors. Use errors.Is to classify failures.
var (
	ErrStructural            = errs.ErrStructural
	ErrArrow                 = errs.ErrArrow
	ErrTypeMismatch          = errs.ErrTypeMismatch
	ErrNumericRepresentation = errs.ErrNumericRepresentation
	ErrResultIsZero          = errs.ErrResultIsZero
)

// Config options.
var (
	WithNegligible    = config.WithNegligible
	WithCheckArrows   = config.WithCheckArrows
	WithScaleLogLimit = config.WithScaleLogLimit
	WithImagTolerance = config.WithImagTolerance
	WithPrintData     = config.WithPrintData
	WithPrintScale    = config.WithPrintScale
	WithDebug         = config.WithDebug
	WithLogger        = config.WithLogger
)

// NewIndex creates a fresh Index with a unique identity, prime level 0 and
// no arrow.
func NewIndex(name string, m int, typ IndexType) Index {
	return index.New(name, m, typ)
}

// NewIndexSet builds an IndexSet, rejecting duplicates.
func NewIndexSet(inds ...Index) (IndexSet, error) {
	return index.NewIndexSet(inds...)
}

// New creates a zero-filled real tensor over inds.
func New(inds ...Index) (*ITensor, error) {
	return itensor.New(inds...)
}

// NewScalar creates a rank-0 tensor holding r.
func NewScalar(r float64) *ITensor {
	return itensor.NewScalar(r)
}

// NewScalarCplx creates a rank-0 tensor holding z.
func NewScalarCplx(z complex128) *ITensor {
	return itensor.NewScalarCplx(z)
}

// NewVector creates a rank-1 tensor over i with the given elements.
func NewVector(i Index, data []float64) (*ITensor, error) {
	return itensor.NewVector(i, data)
}

// NewDiag creates a rank-2 tensor with diagonal storage.
func NewDiag(i1, i2 Index, data []float64) (*ITensor, error) {
	return itensor.NewDiag(i1, i2, data)
}

// NewDiagCplx creates a rank-2 tensor with complex diagonal storage.
func NewDiagCplx(i1, i2 Index, data []complex128) (*ITensor, error) {
	return itensor.NewDiagCplx(i1, i2, data)
}

// Random creates a tensor with uniform [0, 1) elements from seed.
func Random(seed uint64, inds ...Index) (*ITensor, error) {
	return itensor.Random(seed, inds...)
}

// FromMatrix creates a rank-2 tensor over (row, col) from m.
func FromMatrix(row, col Index, m mat.Matrix) (*ITensor, error) {
	return itensor.FromMatrix(row, col, m)
}

// Add returns a + b, matching axes by label.
func Add(a, b *ITensor) (Result, error) {
	return itensor.Add(a, b)
}

// Sub returns a - b, matching axes by label.
func Sub(a, b *ITensor) (Result, error) {
	return itensor.Sub(a, b)
}

// Contract sums a·b over every shared Index.
func Contract(a, b *ITensor) (Result, error) {
	return itensor.Contract(a, b)
}

// SharesStorage reports whether a and b currently share storage.
func SharesStorage(a, b *ITensor) bool {
	return itensor.SharesStorage(a, b)
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// NewConfig returns the defaults with opts applied.
func NewConfig(opts ...ConfigOption) *Config {
	return config.New(opts...)
}

// LoadConfig reads a YAML config file, overridden by ITENSOR_* environment
// variables. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Save writes named tensors to w in the .itns format.
func Save(w io.Writer, tensors map[string]*ITensor) error {
	return serialization.Write(w, tensors, nil)
}

// SaveFile writes named tensors to path in the .itns format.
func SaveFile(path string, tensors map[string]*ITensor) error {
	return serialization.WriteFile(path, tensors, nil)
}

// Load reads tensors written by Save and attaches cfg to them.
// A nil cfg keeps the defaults.
func Load(r io.Reader, cfg *Config) (map[string]*ITensor, error) {
	f, err := serialization.Read(r, serialization.ReaderOptions{
		ValidationLevel: serialization.ValidationStrict,
		Config:          cfg,
	})
	if err != nil {
		return nil, err
	}
	return f.Tensors, nil
}

// LoadFile reads tensors written by SaveFile.
func LoadFile(path string) (map[string]*ITensor, error) {
	f, err := serialization.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return f.Tensors, nil
}
