package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"correctionlib.dev/go/schema"
)

// mergedDoc mirrors the top-level shape of a schema v2 document closely
// enough to concatenate several documents' corrections arrays without
// going through the fully-built (and therefore formula-compiled, no
// longer literally JSON-shaped) schema.CorrectionSet representation.
type mergedDoc struct {
	SchemaVersion       int               `json:"schema_version"`
	Description         string            `json:"description,omitempty"`
	Corrections         []json.RawMessage `json:"corrections"`
	CompoundCorrections []json.RawMessage `json:"compound_corrections,omitempty"`
}

func newMergeCmd(c *Command) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "merge <file> [file...]",
		Short: "merge several correction JSON documents into one CorrectionSet",
		Args:  cobra.MinimumNArgs(1),
		RunE: mkRunE(c, func(cmd *Command, args []string) error {
			merged := mergedDoc{SchemaVersion: 2, Description: "Merged from " + strings.Join(args, ", ")}
			for _, path := range args {
				data, err := readCorrectionFile(path)
				if err != nil {
					fmt.Fprintf(cmd.Stderr(), "%s: %v\n", path, err)
					return errPrintedError
				}
				var doc mergedDoc
				if err := json.Unmarshal(data, &doc); err != nil {
					fmt.Fprintf(cmd.Stderr(), "%s: invalid JSON: %v\n", path, err)
					return errPrintedError
				}
				if doc.SchemaVersion != 2 {
					fmt.Fprintf(cmd.Stderr(), "%s: merge requires schema_version 2 documents\n", path)
					return errPrintedError
				}
				merged.Corrections = append(merged.Corrections, doc.Corrections...)
				merged.CompoundCorrections = append(merged.CompoundCorrections, doc.CompoundCorrections...)
			}

			asJSON, err := json.Marshal(merged)
			if err != nil {
				fmt.Fprintf(cmd.Stderr(), "%v\n", err)
				return errPrintedError
			}
			if _, err := schema.Load(asJSON, schema.Options{}); err != nil {
				fmt.Fprintf(cmd.Stderr(), "merged document is invalid: %v\n", err)
				return errPrintedError
			}

			out, err := encodeMerged(merged, format)
			if err != nil {
				fmt.Fprintf(cmd.Stderr(), "%v\n", err)
				return errPrintedError
			}

			cmd.OutOrStdout().Write(out)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", "indented",
		"output format: compact, indented, pretty, or yaml")
	return cmd
}

func encodeMerged(doc mergedDoc, format string) ([]byte, error) {
	switch format {
	case "compact":
		return json.Marshal(doc)
	case "indented", "pretty":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "yaml":
		// round-trip through JSON so json.RawMessage fields decode into
		// plain maps before yaml.v3 marshals them.
		var generic interface{}
		asJSON, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(asJSON, &generic); err != nil {
			return nil, err
		}
		return yaml.Marshal(generic)
	default:
		return nil, fmt.Errorf("unknown merge format %q (want compact, indented, pretty, or yaml)", format)
	}
}
