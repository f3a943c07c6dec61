package compile

import (
	"math"
	"testing"

	"github.com/go-quicktest/qt"

	"correctionlib.dev/go/correrrors"
	"correctionlib.dev/go/formula/ast"
)

func TestCompileLiteral(t *testing.T) {
	prog := Compile(&ast.Literal{Value: 3.5})
	v, err := prog.Eval(nil, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, 3.5))
}

func TestCompileParamOutOfRangeIsFormulaEvalError(t *testing.T) {
	prog := Compile(&ast.Param{Index: 2})
	_, err := prog.Eval([]float64{1, 2}, nil)
	var ce correrrors.Error
	qt.Assert(t, qt.IsTrue(correrrors.As(err, &ce)))
	qt.Assert(t, qt.Equals(ce.Kind(), correrrors.FormulaEvalError))
}

func TestCompileDivisionByZeroPropagatesAsInf(t *testing.T) {
	prog := Compile(&ast.Binary{
		Op: ast.Quo,
		X:  &ast.Literal{Value: 1},
		Y:  &ast.Literal{Value: 0},
	})
	v, err := prog.Eval(nil, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(math.IsInf(v, 1)))
}

func TestCompileVariableReadsInputSlot(t *testing.T) {
	prog := Compile(&ast.Variable{Slot: 1})
	v, err := prog.Eval(nil, []float64{10, 20})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v, 20.0))
}
