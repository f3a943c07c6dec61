// Package compile lowers a parsed TFormula AST (see [correctionlib.dev/go/formula/ast])
// into a compact postfix opcode program and evaluates it over a small fixed
// double stack, per spec.md §4.3. The compiled program is immutable and its
// Eval method is reentrant and allocation-free in steady state.
package compile

import (
	"math"

	"correctionlib.dev/go/correrrors"
	"correctionlib.dev/go/formula/ast"
)

// OpCode identifies a single instruction in a compiled Program.
type OpCode uint8

const (
	opLiteral OpCode = iota
	opVar
	opParam
	opNeg
	opAdd
	opSub
	opMul
	opQuo
	opPow
	opLss
	opLeq
	opGtr
	opGeq
	opEql
	opNeq
	opLAnd
	opLOr
	opCall
)

// callFn is a builtin math function taking a fixed number of float64
// arguments off the stack.
type callFn func(args []float64) float64

// instr is one opcode plus whichever operand it needs.
type instr struct {
	op    OpCode
	num   float64 // opLiteral
	idx   int     // opVar (input slot), opParam (parameter index)
	arity int      // opCall
	fn    callFn   // opCall
	name  string   // opCall, opVar: for error messages
}

// Program is a compiled formula: a flat postfix instruction list plus the
// stack depth required to evaluate it, computed once at compile time so
// Eval never allocates.
type Program struct {
	instrs   []instr
	maxDepth int
}

// Compile lowers an AST expression into a Program. It does not itself
// validate parameter indices against a parameter count. The schema
// package checks a Formula node's parameters against its expression at
// load time; a FormulaRef's parameter list is not checked at load, so an
// index it does not cover is reported by Eval as FormulaEvalError.
func Compile(e ast.Expr) *Program {
	p := &Program{}
	depth := p.emit(e)
	p.maxDepth = depth
	return p
}

// emit appends instructions for e in postorder and returns the stack depth
// needed to evaluate the subtree it just emitted.
func (p *Program) emit(e ast.Expr) int {
	switch n := e.(type) {
	case *ast.Literal:
		p.instrs = append(p.instrs, instr{op: opLiteral, num: n.Value})
		return 1
	case *ast.Variable:
		p.instrs = append(p.instrs, instr{op: opVar, idx: n.Slot, name: n.Name})
		return 1
	case *ast.Param:
		p.instrs = append(p.instrs, instr{op: opParam, idx: n.Index})
		return 1
	case *ast.Unary:
		d := p.emit(n.X)
		p.instrs = append(p.instrs, instr{op: opNeg})
		return d
	case *ast.Binary:
		dx := p.emit(n.X)
		dy := p.emit(n.Y)
		p.instrs = append(p.instrs, instr{op: binaryOpcode(n.Op)})
		depth := dx
		if 1+dy > depth {
			depth = 1 + dy
		}
		return depth
	case *ast.Call:
		maxArgDepth := 0
		for i, a := range n.Args {
			d := p.emit(a)
			if i+d > maxArgDepth {
				maxArgDepth = i + d
			}
		}
		p.instrs = append(p.instrs, instr{op: opCall, arity: len(n.Args), fn: builtins[n.Func], name: n.Func})
		depth := maxArgDepth
		if len(n.Args) > depth {
			depth = len(n.Args)
		}
		return depth
	}
	panic("compile: unhandled AST node")
}

func binaryOpcode(op ast.BinaryOp) OpCode {
	switch op {
	case ast.Add:
		return opAdd
	case ast.Sub:
		return opSub
	case ast.Mul:
		return opMul
	case ast.Quo:
		return opQuo
	case ast.Pow:
		return opPow
	case ast.Lss:
		return opLss
	case ast.Leq:
		return opLeq
	case ast.Gtr:
		return opGtr
	case ast.Geq:
		return opGeq
	case ast.Eql:
		return opEql
	case ast.Neq:
		return opNeq
	case ast.LAnd:
		return opLAnd
	case ast.LOr:
		return opLOr
	}
	panic("compile: unhandled binary operator")
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

// builtins is the fixed TFormula function set from spec.md §4.2. pow
// delegates to the standard library's pow, as required.
var builtins = map[string]callFn{
	"log":   func(a []float64) float64 { return math.Log(a[0]) },
	"log10": func(a []float64) float64 { return math.Log10(a[0]) },
	"exp":   func(a []float64) float64 { return math.Exp(a[0]) },
	"sqrt":  func(a []float64) float64 { return math.Sqrt(a[0]) },
	"abs":   func(a []float64) float64 { return math.Abs(a[0]) },
	"erf":   func(a []float64) float64 { return math.Erf(a[0]) },
	"cos":   func(a []float64) float64 { return math.Cos(a[0]) },
	"sin":   func(a []float64) float64 { return math.Sin(a[0]) },
	"tan":   func(a []float64) float64 { return math.Tan(a[0]) },
	"acos":  func(a []float64) float64 { return math.Acos(a[0]) },
	"asin":  func(a []float64) float64 { return math.Asin(a[0]) },
	"atan":  func(a []float64) float64 { return math.Atan(a[0]) },
	"cosh":  func(a []float64) float64 { return math.Cosh(a[0]) },
	"sinh":  func(a []float64) float64 { return math.Sinh(a[0]) },
	"tanh":  func(a []float64) float64 { return math.Tanh(a[0]) },
	"acosh": func(a []float64) float64 { return math.Acosh(a[0]) },
	"asinh": func(a []float64) float64 { return math.Asinh(a[0]) },
	"atanh": func(a []float64) float64 { return math.Atanh(a[0]) },
	"pow":   func(a []float64) float64 { return math.Pow(a[0], a[1]) },
	"atan2": func(a []float64) float64 { return math.Atan2(a[0], a[1]) },
	"max":   func(a []float64) float64 { return math.Max(a[0], a[1]) },
	"min":   func(a []float64) float64 { return math.Min(a[0], a[1]) },
}

// Eval executes the compiled program with the given parameter values and
// current input bindings (indexed the way Variable.Slot and the formula's
// declared `variables` list agree), returning the resulting double.
// Division by zero and similar IEEE exceptions are not errors: they
// propagate as +/-Inf or NaN, per spec.md §4.3. The only error this can
// return is FormulaEvalError, for an out-of-range parameter index that
// should have been caught at load time.
func (p *Program) Eval(params []float64, inputs []float64) (float64, error) {
	var stackBuf [32]float64
	stack := stackBuf[:0]
	if p.maxDepth > len(stackBuf) {
		stack = make([]float64, 0, p.maxDepth)
	}
	for _, in := range p.instrs {
		switch in.op {
		case opLiteral:
			stack = append(stack, in.num)
		case opVar:
			stack = append(stack, inputs[in.idx])
		case opParam:
			if in.idx < 0 || in.idx >= len(params) {
				return 0, correrrors.New(correrrors.FormulaEvalError,
					"parameter index [%d] is out of range (have %d parameters)", in.idx, len(params))
			}
			stack = append(stack, params[in.idx])
		case opNeg:
			top := len(stack) - 1
			stack[top] = -stack[top]
		case opAdd, opSub, opMul, opQuo, opPow, opLss, opLeq, opGtr, opGeq, opEql, opNeq, opLAnd, opLOr:
			y := stack[len(stack)-1]
			x := stack[len(stack)-2]
			stack = stack[:len(stack)-2]
			stack = append(stack, evalBinary(in.op, x, y))
		case opCall:
			args := stack[len(stack)-in.arity:]
			result := in.fn(args)
			stack = stack[:len(stack)-in.arity]
			stack = append(stack, result)
		}
	}
	return stack[len(stack)-1], nil
}

func evalBinary(op OpCode, x, y float64) float64 {
	switch op {
	case opAdd:
		return x + y
	case opSub:
		return x - y
	case opMul:
		return x * y
	case opQuo:
		return x / y
	case opPow:
		return math.Pow(x, y)
	case opLss:
		return boolToFloat(x < y)
	case opLeq:
		return boolToFloat(x <= y)
	case opGtr:
		return boolToFloat(x > y)
	case opGeq:
		return boolToFloat(x >= y)
	case opEql:
		return boolToFloat(x == y)
	case opNeq:
		return boolToFloat(x != y)
	case opLAnd:
		// Short-circuit semantics equivalent to full evaluation: both
		// operands were already evaluated eagerly (no side effects),
		// per spec.md §4.2/§9.
		return boolToFloat(x != 0 && y != 0)
	case opLOr:
		return boolToFloat(x != 0 || y != 0)
	}
	panic("compile: unhandled opcode")
}
