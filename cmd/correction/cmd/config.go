package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// newConfigCmd is the Go-appropriate analogue of the upstream CLI's
// "config" command: upstream prints the C++ compiler/linker flags
// (-I/-L) needed to embed the reference implementation in another
// build. Those have no Go equivalent, so this instead reports the
// module import path, the schema versions this build accepts, and the
// build metadata debug.ReadBuildInfo can recover (SPEC_FULL.md §12).
func newConfigCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "print build and module configuration",
		RunE: mkRunE(c, func(cmd *Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "module:          correctionlib.dev/go")
			fmt.Fprintln(w, "schema versions: 1 (normalized to 2 on load), 2")
			fmt.Fprintf(w, "go version:      %s\n", runtime.Version())

			bi, ok := debug.ReadBuildInfo()
			if !ok {
				return nil
			}
			if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
				fmt.Fprintf(w, "module version:  %s\n", bi.Main.Version)
			}
			for _, s := range bi.Settings {
				if s.Value == "" {
					continue
				}
				switch s.Key {
				case "vcs.revision", "vcs.time", "vcs.modified", "-tags", "-ldflags":
					fmt.Fprintf(w, "%16s %s\n", s.Key, s.Value)
				}
			}
			return nil
		}),
	}
	return cmd
}
