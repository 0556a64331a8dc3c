// Package index provides the labeled dimensions (Index) and ordered shapes (IndexSet)
// that tensors are built from.
package index

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Arrow labels how an index transforms under a symmetry.
// Out indices transform as kets, In indices as bras.
type Arrow int8

// Supported arrow directions.
const (
	In      Arrow = -1
	Neither Arrow = 0
	Out     Arrow = 1
)

// Reverse flips In and Out. Neither stays Neither.
func (a Arrow) Reverse() Arrow {
	return -a
}

// String returns a human-readable arrow name.
func (a Arrow) String() string {
	switch a {
	case In:
		return "In"
	case Out:
		return "Out"
	case Neither:
		return "Neither"
	default:
		return "Unknown"
	}
}

// IndexType classifies indices so relabeling can target a subset.
type IndexType uint8

// Index types. All is only meaningful as a selector.
const (
	All IndexType = iota
	Link
	Site
)

// String returns a human-readable type name.
func (t IndexType) String() string {
	switch t {
	case All:
		return "All"
	case Link:
		return "Link"
	case Site:
		return "Site"
	default:
		return "Unknown"
	}
}

// matches reports whether t is selected by sel.
func (t IndexType) matches(sel IndexType) bool {
	return sel == All || sel == t
}

// Index is an immutable labeled dimension.
//
// Two indices address the same axis when they share identity and prime level.
// Indices are small values; copying one keeps its identity.
type Index struct {
	id   uuid.UUID
	name string
	m    int
	typ  IndexType
	plev int
	dir  Arrow
}

// New creates an index with a fresh identity, prime level 0 and arrow Neither.
// Panics if m < 1 or typ is All (programmer errors).
func New(name string, m int, typ IndexType) Index {
	if m < 1 {
		panic(fmt.Sprintf("index: size must be >= 1, got %d", m))
	}
	if typ == All {
		panic("index: All is a selector, not an index type")
	}
	return Index{id: uuid.New(), name: name, m: m, typ: typ}
}

// ID returns the identity shared by every prime copy of this index.
func (i Index) ID() uuid.UUID { return i.id }

// Name returns the label used in diagnostics.
func (i Index) Name() string { return i.name }

// M returns the dimension.
func (i Index) M() int { return i.m }

// Type returns the index type.
func (i Index) Type() IndexType { return i.typ }

// PrimeLevel returns the prime level.
func (i Index) PrimeLevel() int { return i.plev }

// Dir returns the arrow.
func (i Index) Dir() Arrow { return i.dir }

// IsNull reports whether i is the zero Index.
func (i Index) IsNull() bool { return i.m == 0 }

// WithArrow returns a copy of i with arrow dir.
func (i Index) WithArrow(dir Arrow) Index {
	i.dir = dir
	return i
}

// Prime returns a copy of i with prime level raised by inc.
func (i Index) Prime(inc int) Index {
	i.plev += inc
	if i.plev < 0 {
		i.plev = 0
	}
	return i
}

// NoPrime returns a copy of i at prime level 0.
func (i Index) NoPrime() Index {
	i.plev = 0
	return i
}

// SetPrime returns a copy of i at prime level p.
func (i Index) SetPrime(p int) Index {
	i.plev = p
	return i
}

// Dag returns a copy of i with its arrow reversed.
func (i Index) Dag() Index {
	i.dir = i.dir.Reverse()
	return i
}

// Equal reports whether i and o address the same axis (identity and prime level).
func (i Index) Equal(o Index) bool {
	return i.id == o.id && i.plev == o.plev
}

// NoPrimeEqual reports whether i and o share identity regardless of prime level.
func (i Index) NoPrimeEqual(o Index) bool {
	return i.id == o.id
}

// Val pairs i with a 1-based coordinate.
func (i Index) Val(n int) IndexVal {
	return IndexVal{Index: i, Val: n}
}

// String renders the index as name, primes and size, e.g. "(i'',3,Link)".
func (i Index) String() string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(i.name)
	if i.plev <= 3 {
		b.WriteString(strings.Repeat("'", i.plev))
	} else {
		fmt.Fprintf(&b, "'%d", i.plev)
	}
	fmt.Fprintf(&b, ",%d,%s", i.m, i.typ)
	if i.dir != Neither {
		fmt.Fprintf(&b, ",%s", i.dir)
	}
	b.WriteString(")")
	return b.String()
}

// Restore rebuilds an index from its serialized parts.
// Used by persistence helpers; regular code should use New.
func Restore(id uuid.UUID, name string, m int, typ IndexType, plev int, dir Arrow) Index {
	return Index{id: id, name: name, m: m, typ: typ, plev: plev, dir: dir}
}

// IndexVal is an index paired with a 1-based coordinate.
type IndexVal struct {
	Index Index
	Val   int
}

// String renders the pair as "(i,3,Link)=2".
func (iv IndexVal) String() string {
	return fmt.Sprintf("%s=%d", iv.Index, iv.Val)
}
