package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/itensor/internal/index"
	"github.com/born-ml/itensor/internal/itensor"
	"github.com/born-ml/itensor/internal/serialization"
)

var (
	showData  bool
	skipCheck bool

	inspectCmd = &cobra.Command{
		Use:   "inspect FILE",
		Short: "List the tensors stored in a .itns file",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}

	demoSeed uint64
	demoOut  string

	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Run a scale chain and a contraction on random tensors",
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}
)

func init() {
	inspectCmd.Flags().BoolVar(&showData, "data", false, "print the elements of every tensor")
	inspectCmd.Flags().BoolVar(&skipCheck, "skip-checksum", false, "do not verify the data section checksum")
	demoCmd.Flags().Uint64Var(&demoSeed, "seed", 1, "random seed")
	demoCmd.Flags().StringVar(&demoOut, "out", "", "write the demo tensors to this .itns file")
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := serialization.ReadFileWithOptions(args[0], serialization.ReaderOptions{
		SkipChecksumValidation: skipCheck,
		ValidationLevel:        serialization.ValidationStrict,
		Config:                 cfg,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "format v%d, created %s, %d tensors\n",
		f.Header.FormatVersion, f.Header.CreatedAt.Format("2006-01-02 15:04:05"), len(f.Tensors))
	for k, v := range f.Header.Metadata {
		fmt.Fprintf(out, "  %s: %s\n", k, v)
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Name", "Kind", "Rank", "Indices", "Scale"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, name := range f.Names() {
		t := f.Tensors[name]
		table.Append([]string{name, t.Kind().String(), strconv.Itoa(t.Rank()), t.Inds().String(), t.Scale().String()})
	}
	table.Render()

	if !showData {
		return nil
	}
	for _, name := range f.Names() {
		fmt.Fprintf(out, "\n%s:\n", name)
		if err := f.Tensors[name].PrintData(out); err != nil {
			return err
		}
	}
	return nil
}

func runDemo(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	i := index.New("i", 3, index.Link)
	j := index.New("j", 3, index.Site)

	a, err := itensor.Random(demoSeed, i, j)
	if err != nil {
		return err
	}
	a.WithConfig(cfg)
	fmt.Fprintf(out, "A = %v\n", a)

	b, err := scaleChain(out, a)
	if err != nil {
		return err
	}
	diff, err := itensor.Sub(a, b)
	if err != nil {
		return err
	}
	n, err := diff.Tensor.Norm()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "|A - B| = %.3g (%s)\n", n, diff.Outcome)

	ap := a.Copy()
	if err := ap.PrimeIndex(i, 1); err != nil {
		return err
	}
	gram, err := itensor.Contract(a, ap)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "A·A' = %+v\n", gram.Tensor)

	if demoOut == "" {
		return nil
	}
	tensors := map[string]*itensor.ITensor{"A": a, "B": b, "gram": gram.Tensor}
	if err := serialization.WriteFile(demoOut, tensors, map[string]string{"seed": strconv.FormatUint(demoSeed, 10)}); err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %s\n", demoOut)
	return nil
}

// scaleChain multiplies a copy of a by 1e200 twice and by 1e-200 twice,
// printing the scale after each step.
func scaleChain(out io.Writer, a *itensor.ITensor) (*itensor.ITensor, error) {
	b := a.Copy()
	for _, f := range []float64{1e200, 1e200, 1e-200, 1e-200} {
		if err := b.MulReal(f); err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "B *= %g -> scale %s, shares storage with A: %t\n", f, b.Scale(), itensor.SharesStorage(a, b))
	}
	return b, nil
}
