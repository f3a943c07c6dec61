package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"correctionlib.dev/go/schema"
)

func newValidateCmd(c *Command) *cobra.Command {
	var ignoreFloatInf bool
	cmd := &cobra.Command{
		Use:   "validate <file> [file...]",
		Short: "validate one or more correction JSON documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: mkRunE(c, func(cmd *Command, args []string) error {
			opts := schema.Options{IgnoreFloatInf: ignoreFloatInf}
			failed := false
			for _, path := range args {
				data, err := readCorrectionFile(path)
				if err != nil {
					fmt.Fprintf(cmd.Stderr(), "%s: %v\n", path, err)
					failed = true
					continue
				}
				loaded, err := schema.Load(data, opts)
				if err != nil {
					fmt.Fprintf(cmd.Stderr(), "%s: %v\n", path, err)
					failed = true
					continue
				}
				cmd.Printer().Fprintf(cmd.OutOrStdout(), "%s: ok, %d correction(s)\n", path, len(loaded.Corrections))
			}
			if failed {
				return errPrintedError
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&ignoreFloatInf, "ignore-float-inf", false,
		"accept non-finite numeric bin edges not spelled as \"inf\"/\"-inf\"")
	return cmd
}
