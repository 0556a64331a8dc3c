package itensor

import (
	"fmt"
	"io"
	"math/cmplx"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/born-ml/itensor/internal/storage"
)

// String summarizes t: rank, indices, scale and storage kind.
func (t *ITensor) String() string {
	if t.IsNull() {
		return "ITensor (null)"
	}
	return fmt.Sprintf("ITensor r=%d: %s scale=%s %s", t.is.Rank(), t.is, t.scale, t.Kind())
}

// Format implements fmt.Formatter. %+v, or %v with PrintData configured,
// appends the element table.
func (t *ITensor) Format(f fmt.State, verb rune) {
	switch verb {
	case 'v', 's':
		_, _ = io.WriteString(f, t.String())
		if verb == 'v' && !t.IsNull() && (f.Flag('+') || t.Config().PrintData) {
			_, _ = io.WriteString(f, "\n")
			if err := t.PrintData(f); err != nil {
				_, _ = fmt.Fprintf(f, "%%!v(PRINTDATA=%v)", err)
			}
		}
	default:
		_, _ = fmt.Fprintf(f, "%%!%c(itensor=%s)", verb, t.String())
	}
}

// PrintData writes every element whose magnitude exceeds the configured
// PrintScale as a table of 1-based coordinates and values.
func (t *ITensor) PrintData(w io.Writer) error {
	if err := t.live("PrintData"); err != nil {
		return err
	}
	header := make([]string, 0, t.is.Rank()+1)
	for n := range t.is.Rank() {
		header = append(header, t.is.Index(n).String())
	}
	header = append(header, "VALUE")

	dims := storage.Shape(t.is.Dims())
	coords := make([]int, len(dims))
	cutoff := t.Config().PrintScale
	var rows [][]string
	off := 0
	err := t.VisitCplx(func(z complex128) {
		defer func() { off++ }()
		if cmplx.Abs(z) <= cutoff {
			return
		}
		dims.Coords(off, coords)
		row := make([]string, 0, len(header))
		for _, c := range coords {
			row = append(row, strconv.Itoa(c+1))
		}
		rows = append(rows, append(row, formatValue(z)))
	})
	if err != nil {
		return err
	}

	ew := &errWriter{w: w}
	table := tablewriter.NewWriter(ew)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetBorder(false)
	table.AppendBulk(rows)
	table.Render()
	return ew.err
}

// errWriter keeps the first write error, which tablewriter discards.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func formatValue(z complex128) string {
	if imag(z) == 0 {
		return strconv.FormatFloat(real(z), 'g', 10, 64)
	}
	return strconv.FormatComplex(z, 'g', 10, 128)
}
