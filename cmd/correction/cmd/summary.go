package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"correctionlib.dev/go/corrset"
	"correctionlib.dev/go/schema"
)

func newSummaryCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <file> [name]",
		Short: "print a human-readable summary of a correction's shape",
		Args:  cobra.RangeArgs(1, 2),
		RunE: mkRunE(c, func(cmd *Command, args []string) error {
			data, err := readCorrectionFile(args[0])
			if err != nil {
				fmt.Fprintf(cmd.Stderr(), "%v\n", err)
				return errPrintedError
			}
			cs, err := corrset.Load(data, schema.Options{})
			if err != nil {
				fmt.Fprintf(cmd.Stderr(), "%v\n", err)
				return errPrintedError
			}
			names := cs.Names()
			if len(args) == 2 {
				names = []string{args[1]}
			}
			w := cmd.OutOrStdout()
			for _, name := range names {
				c, ok := cs.Correction(name)
				if !ok {
					fmt.Fprintf(cmd.Stderr(), "no such correction %q\n", name)
					return errPrintedError
				}
				printSummary(w, c)
			}
			return nil
		}),
	}
	return cmd
}

func printSummary(w io.Writer, c *corrset.Correction) {
	fmt.Fprintf(w, "%s (v%d)\n", c.Name(), c.Version())
	if d := c.Description(); d != "" {
		fmt.Fprintf(w, "  %s\n", d)
	}
	s := c.Summary()

	kinds := make([]string, 0, len(s.NodeCounts))
	for k := range s.NodeCounts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	fmt.Fprint(w, "  node counts:")
	for _, k := range kinds {
		fmt.Fprintf(w, " %s=%d", k, s.NodeCounts[k])
	}
	fmt.Fprintln(w)

	for _, in := range c.Inputs() {
		is := s.Inputs[in.Name]
		fmt.Fprintf(w, "  input %s (%s)", in.Name, in.Type)
		switch {
		case len(is.Values) > 0 || len(is.IntValues) > 0:
			vals := append(append([]string{}, is.Values...), intsToStrings(is.IntValues)...)
			sort.Strings(vals)
			fmt.Fprintf(w, ": values=%v", vals)
			if is.HasDefault {
				fmt.Fprint(w, ", has default")
			}
		case is.Min <= is.Max:
			fmt.Fprintf(w, ": range=[%v, %v)", is.Min, is.Max)
			if is.Overflow {
				fmt.Fprint(w, ", overflow ok")
			}
		default:
			fmt.Fprint(w, ": unused")
		}
		if is.Transform {
			fmt.Fprint(w, ", has transform")
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  output %s (%s)\n", c.Output().Name, c.Output().Type)
}

func intsToStrings(ints []int64) []string {
	out := make([]string, len(ints))
	for i, v := range ints {
		out[i] = fmt.Sprint(v)
	}
	return out
}
