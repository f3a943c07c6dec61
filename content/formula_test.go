package content

import (
	"testing"

	"github.com/go-quicktest/qt"

	"correctionlib.dev/go/formula/compile"
	"correctionlib.dev/go/formula/parser"
)

func mustCompile(t *testing.T, expr string, variables []string) *compile.Program {
	t.Helper()
	e, err := parser.Parse(expr, variables)
	qt.Assert(t, qt.IsNil(err))
	return compile.Compile(e)
}

func TestFormulaEval(t *testing.T) {
	prog := mustCompile(t, "[0]*x+[1]", []string{"x"})
	f := &Formula{Program: prog, VarSlots: []int{0}, Params: []float64{2, 3}}
	qt.Assert(t, qt.Equals(evalFloat(t, f, RealValue(5)), 13.0))
}

func TestFormulaRefSharesProgram(t *testing.T) {
	prog := mustCompile(t, "x*x", []string{"x"})
	a := &FormulaRef{Formula{Program: prog, VarSlots: []int{0}}}
	b := &FormulaRef{Formula{Program: prog, VarSlots: []int{1}}}
	qt.Assert(t, qt.Equals(evalFloat(t, a, RealValue(3), RealValue(4)), 9.0))
	qt.Assert(t, qt.Equals(evalFloat(t, b, RealValue(3), RealValue(4)), 16.0))
}
