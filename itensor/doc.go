// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package itensor provides labeled tensors whose axes are addressed by Index
// labels instead of positions.
//
// # Overview
//
// An ITensor is defined over a set of Indices. Each Index has an identity,
// a size, a type (Link or Site), a prime level and an arrow. Two tensors
// built independently over the same Indices line up automatically:
// elements are addressed by (Index, value) pairs in any order, addition
// matches axes by label, and contraction sums over every shared Index.
//
// # Basic Usage
//
//	i := itensor.NewIndex("i", 2, itensor.Link)
//	j := itensor.NewIndex("j", 3, itensor.Link)
//
//	t, _ := itensor.New(i, j)
//	_ = t.Set(5.0, i.Val(1), j.Val(2))
//	v, _ := t.Real(j.Val(2), i.Val(1)) // 5.0
//
//	u := t.Copy()        // shares storage
//	_ = u.MulReal(1e200) // updates only the scale factor
//
// # Storage and Scale
//
// Storage is one of DenseReal, DenseCplx, DiagReal, DiagCplx or Zero and
// is promoted as needed (writing a complex value into real storage, or an
// off-diagonal value into diagonal storage). Copies share storage until one
// of them is mutated.
//
// Every tensor carries a scale factor stored as a logarithm, so products of
// many large or small factors stay representable. Scalar multiplication
// only touches the scale; storage is normalized when the scale leaves the
// configured log range.
//
// # Vanishing Results
//
// Add, Sub and Contract return a Result. A result whose norm falls to the
// configured negligible threshold has Outcome ExactZero; Result.Err turns
// it into ErrResultIsZero for callers that prefer an error.
//
// # Configuration
//
// Thresholds and debug switches live in a *Config attached to each tensor
// with WithConfig. LoadConfig reads them from YAML and ITENSOR_* variables.
package itensor
