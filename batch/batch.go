// Package batch implements columnar, broadcast-shaped evaluation over a
// Correction (spec.md §5/C7): the same tree is evaluated once per row
// of a set of input columns, with scalar arguments broadcast against
// any column arguments present, rather than requiring the caller to
// loop over Correction.Evaluate themselves.
package batch

import (
	"strconv"

	"correctionlib.dev/go/content"
	"correctionlib.dev/go/correrrors"
	"correctionlib.dev/go/corrset"
)

// Column is one positional argument to a batched evaluation: either a
// scalar value which every row. Name is used only in error messages.
type Column struct {
	Name   string
	Scalar interface{}   // set when this column has a single broadcast value
	Values []interface{} // set when this column varies per row; len must equal the batch length
}

func (c Column) at(row int) interface{} {
	if c.Values != nil {
		return c.Values[row]
	}
	return c.Scalar
}

func (c Column) len() (n int, isVector bool) {
	if c.Values != nil {
		return len(c.Values), true
	}
	return 0, false
}

// Evaluate runs corr over the row-wise broadcast of cols, in order,
// returning one result per row. All vector-valued columns must share
// the same length (spec.md §5's SHAPE_MISMATCH); scalar columns
// broadcast against that length. If every column is scalar the result
// has exactly one row. An error from a single row is reported with the
// segments "row" and that row's index added in front of the error's
// path (spec.md §7).
func Evaluate(corr *corrset.Correction, cols []Column) ([]float64, error) {
	n, err := batchLength(cols)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for row := 0; row < n; row++ {
		args := make([]interface{}, len(cols))
		for i, c := range cols {
			args[i] = c.at(row)
		}
		v, err := corr.Evaluate(args...)
		if err != nil {
			return nil, annotateRow(err, row)
		}
		out[row] = v
	}
	return out, nil
}

func batchLength(cols []Column) (int, error) {
	n := 1
	found := false
	for _, c := range cols {
		ln, isVector := c.len()
		if !isVector {
			continue
		}
		if !found {
			n = ln
			found = true
			continue
		}
		if ln != n {
			return 0, correrrors.New(correrrors.ShapeMismatch,
				"batch column %q has length %d, expected %d", c.Name, ln, n)
		}
	}
	return n, nil
}

func annotateRow(err error, row int) error {
	var ce correrrors.Error
	if correrrors.As(err, &ce) {
		withIndex := correrrors.WithPath(ce, strconv.Itoa(row), ce.Kind())
		return correrrors.WithPath(withIndex, "row", ce.Kind())
	}
	return err
}

// EvaluateValues is the typed equivalent of Evaluate, for callers who
// already hold rows of content.Value inputs (one []content.Value per
// row, evaluated directly against root) rather than loosely-typed
// interface{} columns.
func EvaluateValues(root content.Content, rows [][]content.Value) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, inputs := range rows {
		ctx := &content.EvalContext{Inputs: inputs}
		v, err := root.Eval(ctx)
		if err != nil {
			return nil, annotateRow(err, i)
		}
		out[i] = v
	}
	return out, nil
}
