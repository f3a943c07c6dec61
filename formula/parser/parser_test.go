package parser

import (
	"testing"

	"github.com/go-quicktest/qt"

	"correctionlib.dev/go/correrrors"
	"correctionlib.dev/go/formula/compile"
)

func mustEval(t *testing.T, expr string, variables []string, params, inputs []float64) float64 {
	t.Helper()
	e, err := Parse(expr, variables)
	qt.Assert(t, qt.IsNil(err))
	prog := compile.Compile(e)
	v, err := prog.Eval(params, inputs)
	qt.Assert(t, qt.IsNil(err))
	return v
}

func TestParseArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"2^10", 1024},
		{"-3+4", 1},
		{"10/4", 2.5},
	}
	for _, tt := range tests {
		got := mustEval(t, tt.expr, nil, nil, nil)
		qt.Check(t, qt.Equals(got, tt.want), qt.Commentf("expr=%q", tt.expr))
	}
}

func TestParseVariablesAndParams(t *testing.T) {
	got := mustEval(t, "[0]*x+[1]*y", []string{"x", "y"}, []float64{2, 3}, []float64{5, 7})
	qt.Assert(t, qt.Equals(got, 2*5+3*7))
}

func TestParseFunctionCalls(t *testing.T) {
	got := mustEval(t, "max(1,2)", nil, nil, nil)
	qt.Assert(t, qt.Equals(got, 2.0))
	got = mustEval(t, "sqrt(16)", nil, nil, nil)
	qt.Assert(t, qt.Equals(got, 4.0))
}

func TestParseComparisonAndLogical(t *testing.T) {
	got := mustEval(t, "(1<2) && (3>2)", nil, nil, nil)
	qt.Assert(t, qt.Equals(got, 1.0))
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("1+*2", nil)
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.FormulaParseError))
}

func TestMaxParamIndex(t *testing.T) {
	e, err := Parse("[0]+[3]*x", []string{"x"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(MaxParamIndex(e), 3))

	e2, err := Parse("x+y", []string{"x", "y"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(MaxParamIndex(e2), -1))
}

func TestUndeclaredVariableIsParseError(t *testing.T) {
	_, err := Parse("x+y", []string{"x"})
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.FormulaParseError))
}
