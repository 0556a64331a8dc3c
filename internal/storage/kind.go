// Package storage provides the closed set of tensor storage kinds, the
// reference-counted handle tensors share them through, and the dispatch
// mechanism that applies an operation to whichever kind is held.
package storage

// Kind identifies a concrete storage representation.
type Kind uint8

// Supported storage kinds.
const (
	KindDenseReal Kind = iota
	KindDenseCplx
	KindDiagReal
	KindDiagCplx
	KindZero
)

// Kinds lists every storage kind in declaration order.
var Kinds = []Kind{KindDenseReal, KindDenseCplx, KindDiagReal, KindDiagCplx, KindZero}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDenseReal:
		return "DenseReal"
	case KindDenseCplx:
		return "DenseCplx"
	case KindDiagReal:
		return "DiagReal"
	case KindDiagCplx:
		return "DiagCplx"
	case KindZero:
		return "Zero"
	default:
		return "Unknown"
	}
}

// IsComplex reports whether the kind stores complex values.
func (k Kind) IsComplex() bool {
	return k == KindDenseCplx || k == KindDiagCplx
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}
