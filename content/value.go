// Package content implements the tagged-union correction tree node kinds
// (Binning, MultiBinning, Category, Transform, Formula, FormulaRef,
// HashPRNG, Switch, Constant — spec.md §3, §4.4) and their evaluator
// (spec.md C6). Nodes are built once by the schema loader and are
// immutable and safe for concurrent evaluation afterward; per-call state
// lives entirely in an EvalContext supplied by the caller.
package content

import (
	"math"
)

// VarType is the type of a correction input or output variable.
type VarType int

const (
	TypeString VarType = iota
	TypeInt
	TypeReal
)

func (t VarType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeReal:
		return "real"
	}
	return "unknown"
}

// Value is a tagged argument value bound to one correction input slot.
// Exactly one of the fields is meaningful, selected by Type.
type Value struct {
	Type VarType
	Real float64
	Int  int64
	Str  string
}

// AsFloat coerces a Value to float64 for arithmetic use (Binning,
// Switch, Transform rule evaluation, Formula variables). String values
// have no numeric coercion and AsFloat panics if called on one; callers
// must not reach this path for string-typed inputs (the schema loader
// rejects such references at construction time).
func (v Value) AsFloat() float64 {
	switch v.Type {
	case TypeReal:
		return v.Real
	case TypeInt:
		return float64(v.Int)
	default:
		panic("content: AsFloat called on a string value")
	}
}

func RealValue(f float64) Value { return Value{Type: TypeReal, Real: f} }
func IntValue(i int64) Value    { return Value{Type: TypeInt, Int: i} }
func StringValue(s string) Value { return Value{Type: TypeString, Str: s} }

// EvalContext carries the per-call mutable state for one scalar
// evaluation: the current bindings of every declared input, indexed the
// way the schema loader resolved input names to slots. Transform nodes
// temporarily overwrite a slot for the duration of evaluating their
// subtree and restore it afterward (spec.md §4.8); all other nodes only
// read it.
type EvalContext struct {
	Inputs []Value
}

// Content is implemented by every correction tree node kind usable in
// value position.
type Content interface {
	// Eval computes this node's contribution given the current input
	// bindings in ctx.
	Eval(ctx *EvalContext) (float64, error)
}

// Constant is a literal double, the simplest Content leaf.
type Constant float64

func (c Constant) Eval(*EvalContext) (float64, error) { return float64(c), nil }

// truncToInt rounds a double to the nearest integer for Transform and
// Category nodes feeding an integer input slot. spec.md §4.4's prose
// says "truncation toward zero", but the compiled reference rounds to
// nearest instead: a Category keyed on int 3 must still match an input
// of 2.999999, which truncation toward zero would send to key 2
// (original_source/tests/test_core.py's test_transform, spec.md §8 S5).
func truncToInt(f float64) int64 {
	return int64(math.Round(f))
}
