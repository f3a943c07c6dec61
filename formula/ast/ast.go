// Package ast declares the types used to represent a parsed TFormula
// expression: a small arithmetic dialect compatible with ROOT's TFormula,
// as described in spec.md §4.2.
package ast

import "correctionlib.dev/go/formula/token"

// Node is implemented by every AST node.
type Node interface {
	Pos() token.Pos
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

func (*Literal) exprNode()  {}
func (*Variable) exprNode() {}
func (*Param) exprNode()    {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Call) exprNode()     {}

// Literal is a numeric constant, e.g. 3.14 or 1e-3.
type Literal struct {
	ValuePos token.Pos
	Value    float64
}

func (l *Literal) Pos() token.Pos { return l.ValuePos }

// Variable is a reference to one of the formula's positional slots
// (x, y, z, t, or x[i]), already resolved to an index into the formula's
// declared `variables` list.
type Variable struct {
	NamePos token.Pos
	Name    string // the surface name, e.g. "x" or "x[2]", for diagnostics
	Slot    int    // index into the Formula's `variables` list
}

func (v *Variable) Pos() token.Pos { return v.NamePos }

// Param is a reference to a `[i]` parameter slot.
type Param struct {
	BracketPos token.Pos
	Index      int
}

func (p *Param) Pos() token.Pos { return p.BracketPos }

// UnaryOp identifies the operator of a Unary expression.
type UnaryOp int

const (
	Neg UnaryOp = iota // -x
)

// Unary is a unary operator expression.
type Unary struct {
	OpPos token.Pos
	Op    UnaryOp
	X     Expr
}

func (u *Unary) Pos() token.Pos { return u.OpPos }

// BinaryOp identifies the operator of a Binary expression.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Quo
	Pow
	Lss
	Leq
	Gtr
	Geq
	Eql
	Neq
	LAnd
	LOr
)

// Binary is a binary operator expression.
type Binary struct {
	OpPos       token.Pos
	Op          BinaryOp
	X, Y        Expr
}

func (b *Binary) Pos() token.Pos { return b.X.Pos() }

// Call is a function call from the fixed builtin set (log, sqrt, max, ...).
type Call struct {
	FuncPos token.Pos
	Func    string
	Args    []Expr
}

func (c *Call) Pos() token.Pos { return c.FuncPos }
