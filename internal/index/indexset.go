package index

import (
	"strings"

	"github.com/born-ml/itensor/internal/errs"
)

// IndexSet is the ordered list of indices defining a tensor's shape.
//
// Position order is the storage order of the owning tensor. Logical identity
// is the set of (identity, prime level) pairs, so two sets holding the same
// indices in different orders describe the same shape.
//
// IndexSet is a value type: relabeling returns a new set and never touches
// the receiver.
type IndexSet struct {
	inds []Index
}

// NewIndexSet builds an IndexSet, rejecting duplicate (identity, prime level) pairs.
func NewIndexSet(inds ...Index) (IndexSet, error) {
	for n, i := range inds {
		if i.IsNull() {
			return IndexSet{}, errs.Structural("NewIndexSet", "index at position %d is null", n)
		}
	}
	s := IndexSet{inds: append([]Index(nil), inds...)}
	if err := s.checkUnique("NewIndexSet"); err != nil {
		return IndexSet{}, err
	}
	return s, nil
}

// checkUnique fails on the first duplicated axis.
func (s IndexSet) checkUnique(op string) error {
	for a := 0; a < len(s.inds); a++ {
		for b := a + 1; b < len(s.inds); b++ {
			if s.inds[a].Equal(s.inds[b]) {
				return errs.Structural(op, "duplicate index %s at positions %d and %d", s.inds[a], a, b)
			}
		}
	}
	return nil
}

// Rank returns the number of indices.
func (s IndexSet) Rank() int { return len(s.inds) }

// Index returns the index at 0-based position n.
func (s IndexSet) Index(n int) Index { return s.inds[n] }

// Slice returns a copy of the indices in storage order.
func (s IndexSet) Slice() []Index { return append([]Index(nil), s.inds...) }

// Dims returns the dimension of each index in storage order.
func (s IndexSet) Dims() []int {
	dims := make([]int, len(s.inds))
	for n, i := range s.inds {
		dims[n] = i.m
	}
	return dims
}

// Position returns the storage position of i.
func (s IndexSet) Position(i Index) (int, bool) {
	for n, j := range s.inds {
		if j.Equal(i) {
			return n, true
		}
	}
	return -1, false
}

// Contains reports whether i is one of the set's axes.
func (s IndexSet) Contains(i Index) bool {
	_, ok := s.Position(i)
	return ok
}

// Equal reports whether s and o hold the same axes in the same order.
func (s IndexSet) Equal(o IndexSet) bool {
	if len(s.inds) != len(o.inds) {
		return false
	}
	for n := range s.inds {
		if !s.inds[n].Equal(o.inds[n]) {
			return false
		}
	}
	return true
}

// SameSet reports whether s and o hold the same axes in any order.
func (s IndexSet) SameSet(o IndexSet) bool {
	if len(s.inds) != len(o.inds) {
		return false
	}
	for _, i := range s.inds {
		if !o.Contains(i) {
			return false
		}
	}
	return true
}

// Permutation maps s onto to: to.Index(p[k]) is the same axis as s.Index(k).
// Both sets must hold the same axes with agreeing sizes.
func (s IndexSet) Permutation(to IndexSet) ([]int, error) {
	if len(s.inds) != len(to.inds) {
		return nil, errs.Structural("Permutation", "rank %d does not match rank %d", len(s.inds), len(to.inds))
	}
	p := make([]int, len(s.inds))
	for k, i := range s.inds {
		n, ok := to.Position(i)
		if !ok {
			return nil, errs.Structural("Permutation", "index %s missing from %s", i, to)
		}
		if to.inds[n].m != i.m {
			return nil, errs.Structural("Permutation", "index %s has size %d, other has %d", i, i.m, to.inds[n].m)
		}
		p[k] = n
	}
	return p, nil
}

// Resolve turns label-addressed coordinates into 0-based coordinates in storage order.
//
// Exactly one IndexVal per axis must be supplied, in any order. Coordinates are 1-based.
func (s IndexSet) Resolve(ivs []IndexVal) ([]int, error) {
	if len(ivs) != len(s.inds) {
		return nil, errs.Structural("Resolve", "got %d index values for rank %d tensor", len(ivs), len(s.inds))
	}
	coords := make([]int, len(s.inds))
	seen := make([]bool, len(s.inds))
	for _, iv := range ivs {
		n, ok := s.Position(iv.Index)
		if !ok {
			return nil, errs.Structural("Resolve", "index %s not in %s", iv.Index, s)
		}
		if seen[n] {
			return nil, errs.Structural("Resolve", "index %s given twice", iv.Index)
		}
		if iv.Val < 1 || iv.Val > s.inds[n].m {
			return nil, errs.Structural("Resolve", "value %d out of range 1..%d for index %s", iv.Val, s.inds[n].m, iv.Index)
		}
		seen[n] = true
		coords[n] = iv.Val - 1
	}
	return coords, nil
}

// relabel applies f to each index selected by pick and checks the result stays duplicate free.
func (s IndexSet) relabel(op string, pick func(Index) bool, f func(Index) Index) (IndexSet, error) {
	out := IndexSet{inds: make([]Index, len(s.inds))}
	for n, i := range s.inds {
		if pick(i) {
			i = f(i)
		}
		out.inds[n] = i
	}
	if err := out.checkUnique(op); err != nil {
		return IndexSet{}, err
	}
	return out, nil
}

// NoPrime sets the prime level of every index of type typ to 0.
func (s IndexSet) NoPrime(typ IndexType) (IndexSet, error) {
	return s.relabel("NoPrime",
		func(i Index) bool { return i.typ.matches(typ) },
		Index.NoPrime)
}

// NoPrimeIndex sets the prime level of i to 0. i must be in the set.
func (s IndexSet) NoPrimeIndex(i Index) (IndexSet, error) {
	if !s.Contains(i) {
		return IndexSet{}, errs.Structural("NoPrimeIndex", "index %s not in %s", i, s)
	}
	return s.relabel("NoPrimeIndex", i.Equal, Index.NoPrime)
}

// Prime raises the prime level of every index of type typ by inc.
func (s IndexSet) Prime(typ IndexType, inc int) (IndexSet, error) {
	return s.relabel("Prime",
		func(i Index) bool { return i.typ.matches(typ) },
		func(i Index) Index { return i.Prime(inc) })
}

// PrimeIndex raises the prime level of i by inc. i must be in the set.
func (s IndexSet) PrimeIndex(i Index, inc int) (IndexSet, error) {
	if !s.Contains(i) {
		return IndexSet{}, errs.Structural("PrimeIndex", "index %s not in %s", i, s)
	}
	return s.relabel("PrimeIndex", i.Equal, func(j Index) Index { return j.Prime(inc) })
}

// MapPrime moves every index of type typ at prime level from to prime level to.
// Indices at other levels are left as they are.
func (s IndexSet) MapPrime(from, to int, typ IndexType) (IndexSet, error) {
	if to < 0 {
		return IndexSet{}, errs.Structural("MapPrime", "negative prime level %d", to)
	}
	return s.relabel("MapPrime",
		func(i Index) bool { return i.plev == from && i.typ.matches(typ) },
		func(i Index) Index { return i.SetPrime(to) })
}

// Dag returns the set with every arrow reversed.
func (s IndexSet) Dag() IndexSet {
	out := IndexSet{inds: make([]Index, len(s.inds))}
	for n, i := range s.inds {
		out.inds[n] = i.Dag()
	}
	return out
}

// ArrowMode selects which orientation rule CheckArrows enforces.
type ArrowMode uint8

// Arrow rules.
const (
	// Elementwise requires matching indices to carry the same arrow.
	Elementwise ArrowMode = iota
	// Contract requires matching indices to carry opposite arrows.
	Contract
)

// CheckArrows validates the orientation of every axis shared by s and o.
// Only indices whose arrows are not Neither on both sides are checked.
func (s IndexSet) CheckArrows(o IndexSet, mode ArrowMode, op string) error {
	for _, i := range s.inds {
		n, ok := o.Position(i)
		if !ok {
			continue
		}
		j := o.inds[n]
		if i.dir == Neither || j.dir == Neither {
			continue
		}
		want := i.dir
		if mode == Contract {
			want = i.dir.Reverse()
		}
		if j.dir != want {
			return &errs.ArrowError{Op: op, Index: i.String(), Want: want.String(), Got: j.dir.String()}
		}
	}
	return nil
}

// Common returns the axes present in both s and o, in s order.
func (s IndexSet) Common(o IndexSet) []Index {
	var out []Index
	for _, i := range s.inds {
		if o.Contains(i) {
			out = append(out, i)
		}
	}
	return out
}

// Tie merges the axes in tie into the first of them.
//
// The result keeps tie[0] at the position of the first tied axis and drops the
// others. It also returns, for each result axis, the source positions feeding it.
func (s IndexSet) Tie(tie ...Index) (IndexSet, [][]int, error) {
	if len(tie) < 2 {
		return IndexSet{}, nil, errs.Structural("Tie", "need at least two indices to tie, got %d", len(tie))
	}
	if len(tie) > len(s.inds) {
		return IndexSet{}, nil, errs.Structural("Tie", "cannot tie %d indices of a rank %d set", len(tie), len(s.inds))
	}
	m := tie[0].m
	for _, t := range tie {
		if !s.Contains(t) {
			return IndexSet{}, nil, errs.Structural("Tie", "index %s not in %s", t, s)
		}
		if t.m != m {
			return IndexSet{}, nil, errs.Structural("Tie", "index %s has size %d, want %d", t, t.m, m)
		}
	}

	var (
		out     []Index
		sources [][]int
		tiedAt  = -1
	)
	for n, i := range s.inds {
		tied := false
		for _, t := range tie {
			if t.Equal(i) {
				tied = true
				break
			}
		}
		if !tied {
			out = append(out, i)
			sources = append(sources, []int{n})
			continue
		}
		if tiedAt < 0 {
			tiedAt = len(out)
			out = append(out, tie[0])
			sources = append(sources, nil)
		}
		sources[tiedAt] = append(sources[tiedAt], n)
	}
	res, err := NewIndexSet(out...)
	if err != nil {
		return IndexSet{}, nil, err
	}
	return res, sources, nil
}

// String renders the indices in storage order.
func (s IndexSet) String() string {
	parts := make([]string, len(s.inds))
	for n, i := range s.inds {
		parts[n] = i.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}
