package content

import "correctionlib.dev/go/formula/compile"

// Formula evaluates a compiled TFormula-dialect expression against a
// subset of the enclosing correction's inputs, spec.md §3/§4.6. VarSlots
// maps each formula variable (x, y, z, t, x[i]) to the input slot that
// feeds it; Params supplies the formula's bracketed constant parameters
// ([0], [1], ...).
type Formula struct {
	Program  *compile.Program
	VarSlots []int
	Params   []float64
}

func (f *Formula) Eval(ctx *EvalContext) (float64, error) {
	vars := make([]float64, len(f.VarSlots))
	for i, slot := range f.VarSlots {
		vars[i] = ctx.Inputs[slot].AsFloat()
	}
	return f.Program.Eval(f.Params, vars)
}

// FormulaRef evaluates an indexed entry from the enclosing correction's
// generic_formulas table (spec.md §4.6), sharing its compiled Program
// with every other node that references the same index while supplying
// its own variable bindings and parameters. The schema loader resolves
// the index to the shared *compile.Program once at construction time.
type FormulaRef struct {
	Formula
}
