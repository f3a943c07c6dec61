// Package cmd implements the correction command-line tool: validating
// correction JSON documents, printing a human-readable summary of their
// shape, and merging several documents into one CorrectionSet (spec.md
// §4.7's expanded CLI surface, SPEC_FULL.md §10/§11).
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type runFunction func(cmd *Command, args []string) error

func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		return f(c, args)
	}
}

// Command wraps a *cobra.Command with a small amount of extra state:
// an error-tracking stderr writer so the process exit code reflects
// whether anything was printed to it, and a localized message.Printer
// for pluralized/numeric CLI output.
type Command struct {
	*cobra.Command

	root *cobra.Command

	hasErr bool
}

type errWriter Command

func (w *errWriter) Write(b []byte) (int, error) {
	c := (*Command)(w)
	c.hasErr = len(b) > 0
	return c.Command.OutOrStderr().Write(b)
}

// Stderr returns a writer that should be used for error messages;
// writing to it marks the run as failed for exit-code purposes.
func (c *Command) Stderr() io.Writer {
	return (*errWriter)(c)
}

// Printer returns a message.Printer for localized output. Locale is
// fixed to en for now: correction documents and their CLI output are
// not currently localized content, but the printer is still the
// idiomatic way to pluralize counts ("1 correction" vs "3
// corrections").
func (c *Command) Printer() *message.Printer {
	return message.NewPrinter(language.English)
}

// errPrintedError indicates an error message has already been printed
// to stderr, so Main should not print it again.
var errPrintedError = errPrinted{}

type errPrinted struct{}

func (errPrinted) Error() string { return "terminating because of errors" }

// New creates the top-level "correction" command with its
// subcommands attached.
func New(args []string) *Command {
	root := &cobra.Command{
		Use:           "correction",
		Short:         "validate, summarize, and merge correction definitions",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	c := &Command{Command: root, root: root}

	for _, sub := range []*cobra.Command{
		newValidateCmd(c),
		newSummaryCmd(c),
		newMergeCmd(c),
		newConfigCmd(c),
	} {
		root.AddCommand(sub)
	}

	root.SetArgs(args)
	return c
}

// Run executes the command tree, returning errPrintedError if output
// was already written to stderr (so Main avoids a double report).
func (c *Command) Run(context.Context) error {
	if err := c.root.Execute(); err != nil {
		return err
	}
	if c.hasErr {
		return errPrintedError
	}
	return nil
}

// Main runs the correction tool and returns a process exit code.
func Main() int {
	c := New(os.Args[1:])
	if err := c.Run(context.Background()); err != nil {
		if err != errPrintedError {
			os.Stderr.WriteString(err.Error() + "\n")
		}
		return 1
	}
	return 0
}
