package serialization

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/itensor/internal/index"
	"github.com/born-ml/itensor/internal/itensor"
	"github.com/born-ml/itensor/internal/scale"
)

// Format constants.
const (
	MagicBytes      = "ITNS"
	FormatVersion   = 1
	FixedHeaderSize = 4 + 4 + 4 + 8 + ChecksumSize
	ChecksumSize    = 32 // SHA-256
)

// Flags for the .itns format.
const (
	FlagHasMetadata uint32 = 1 << 0 // bit 0: custom metadata included
	FlagHasComplex  uint32 = 1 << 1 // bit 1: at least one tensor is complex
)

// Header is the JSON header of a .itns file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata"`
}

// TensorMeta describes one tensor in the file.
type TensorMeta struct {
	Name    string      `json:"name"`
	Indices []IndexMeta `json:"indices"`
	Kind    string      `json:"kind"`   // storage kind, e.g. "DenseReal"
	Scale   ScaleMeta   `json:"scale"`  // scale factor
	Offset  int64       `json:"offset"` // byte offset in the data section
	Size    int64       `json:"size"`   // byte length of the storage record
}

// IndexMeta describes one index.
type IndexMeta struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	M     int    `json:"m"`
	Type  string `json:"type"`
	Prime int    `json:"prime"`
	Arrow string `json:"arrow"`
}

// ScaleMeta holds a LogNumber: phase·exp(LogNum).
type ScaleMeta struct {
	LogNum  float64 `json:"lognum"`
	PhaseRe float64 `json:"phase_re"`
	PhaseIm float64 `json:"phase_im"`
}

func indexToMeta(i index.Index) IndexMeta {
	return IndexMeta{
		ID:    i.ID().String(),
		Name:  i.Name(),
		M:     i.M(),
		Type:  i.Type().String(),
		Prime: i.PrimeLevel(),
		Arrow: i.Dir().String(),
	}
}

func metaToIndex(m IndexMeta) (index.Index, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return index.Index{}, fmt.Errorf("index %q: invalid id: %w", m.Name, err)
	}
	typ, ok := parseIndexType(m.Type)
	if !ok {
		return index.Index{}, fmt.Errorf("index %q: unknown type %q", m.Name, m.Type)
	}
	dir, ok := parseArrow(m.Arrow)
	if !ok {
		return index.Index{}, fmt.Errorf("index %q: unknown arrow %q", m.Name, m.Arrow)
	}
	if m.M < 1 || m.Prime < 0 {
		return index.Index{}, fmt.Errorf("index %q: invalid size %d or prime level %d", m.Name, m.M, m.Prime)
	}
	return index.Restore(id, m.Name, m.M, typ, m.Prime, dir), nil
}

func parseIndexType(s string) (index.IndexType, bool) {
	for _, t := range []index.IndexType{index.Link, index.Site} {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

func parseArrow(s string) (index.Arrow, bool) {
	for _, a := range []index.Arrow{index.In, index.Neither, index.Out} {
		if a.String() == s {
			return a, true
		}
	}
	return 0, false
}

func scaleToMeta(s scale.LogNumber) ScaleMeta {
	return ScaleMeta{LogNum: s.LogNum(), PhaseRe: real(s.Phase()), PhaseIm: imag(s.Phase())}
}

func metaToScale(m ScaleMeta) scale.LogNumber {
	return scale.FromParts(m.LogNum, complex(m.PhaseRe, m.PhaseIm))
}

// tensorMeta builds the header entry of t, without offsets.
func tensorMeta(name string, t *itensor.ITensor) TensorMeta {
	is := t.Inds()
	inds := make([]IndexMeta, is.Rank())
	for n := range is.Rank() {
		inds[n] = indexToMeta(is.Index(n))
	}
	return TensorMeta{
		Name:    name,
		Indices: inds,
		Kind:    t.Kind().String(),
		Scale:   scaleToMeta(t.Scale()),
	}
}
