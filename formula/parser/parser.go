// Package parser implements a parser for the TFormula expression dialect
// described in spec.md §4.2. Parse lexes and parses a formula expression
// string into a [ast.Expr] tree, resolving x/y/z/t and x[i] references to
// indices into the formula's declared `variables` list.
package parser

import (
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"

	"correctionlib.dev/go/correrrors"
	"correctionlib.dev/go/formula/ast"
	"correctionlib.dev/go/formula/scanner"
	"correctionlib.dev/go/formula/token"
)

// positionalNames maps the TFormula positional slot letters onto indices
// into a Formula's `variables` list.
var positionalNames = map[string]int{"x": 0, "y": 1, "z": 2, "t": 3}

// FuncArity gives the required argument count for each builtin function in
// the TFormula dialect's fixed function set (spec.md §4.2). The parser
// uses it to reject unknown functions and wrong argument counts; the
// compile package keeps its own builtins table of the same functions.
var FuncArity = map[string]int{
	"log": 1, "log10": 1, "exp": 1, "sqrt": 1, "abs": 1, "erf": 1,
	"cos": 1, "sin": 1, "tan": 1, "acos": 1, "asin": 1, "atan": 1,
	"cosh": 1, "sinh": 1, "tanh": 1, "acosh": 1, "asinh": 1, "atanh": 1,
	"pow": 2, "atan2": 2, "max": 2, "min": 2,
}

// MaxParamIndex returns the highest [i] parameter index referenced anywhere
// in expr, or -1 if none is referenced.
func MaxParamIndex(expr ast.Expr) int {
	max := -1
	walk(expr, func(e ast.Expr) {
		if p, ok := e.(*ast.Param); ok && p.Index > max {
			max = p.Index
		}
	})
	return max
}

func walk(e ast.Expr, f func(ast.Expr)) {
	f(e)
	switch n := e.(type) {
	case *ast.Unary:
		walk(n.X, f)
	case *ast.Binary:
		walk(n.X, f)
		walk(n.Y, f)
	case *ast.Call:
		for _, a := range n.Args {
			walk(a, f)
		}
	}
}

// Parser holds parsing state for a single formula expression.
type Parser struct {
	src       string
	variables []string

	sc   scanner.Scanner
	pos  token.Pos
	tok  token.Token
	lit  string

	firstErr correrrors.Error
}

// Parse parses expr, an arithmetic expression in the TFormula dialect,
// resolving positional variables (x, y, z, t, x[i]) against variables. It
// returns a FormulaParseError (with position) on any lexical or syntax
// error, unknown identifier, undefined parameter reference syntax, or
// out-of-range x[i].
func Parse(expr string, variables []string) (ast.Expr, error) {
	p := &Parser{src: expr, variables: variables}
	p.sc.Init([]byte(expr), func(pos token.Pos, msg string) {
		p.recordError(pos, msg)
	})
	p.next()
	result := p.parseExpr(token.LowestPrec)
	if p.firstErr != nil {
		return nil, p.firstErr
	}
	if p.tok != token.EOF {
		p.errorf(p.pos, "unexpected token %q", p.tokenText())
		return nil, p.firstErr
	}
	return result, nil
}

func (p *Parser) tokenText() string {
	if p.lit != "" {
		return p.lit
	}
	return p.tok.String()
}

func (p *Parser) next() {
	p.pos, p.tok, p.lit = p.sc.Scan()
}

func (p *Parser) recordError(pos token.Pos, msg string) {
	if p.firstErr == nil {
		p.firstErr = correrrors.New(correrrors.FormulaParseError, "at offset %d: %s", int(pos), msg)
	}
}

func (p *Parser) errorf(pos token.Pos, format string, args ...interface{}) {
	p.recordError(pos, fmt.Sprintf(format, args...))
}

// parseExpr implements precedence-climbing for the binary operators, with
// ^ right-associative and above * / which is above + -, with comparisons
// and &&/|| at the bottom, per spec.md §4.2.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	lhs := p.parseUnary()
	for p.firstErr == nil {
		prec := p.tok.Precedence()
		if prec < minPrec || prec == token.LowestPrec {
			break
		}
		op := p.tok
		opPos := p.pos
		p.next()
		nextMin := prec + 1
		if op == token.POW {
			// right-associative: allow equal precedence to recurse
			nextMin = prec
		}
		rhs := p.parseExpr(nextMin)
		lhs = &ast.Binary{OpPos: opPos, Op: binOp(op), X: lhs, Y: rhs}
	}
	return lhs
}

func binOp(t token.Token) ast.BinaryOp {
	switch t {
	case token.ADD:
		return ast.Add
	case token.SUB:
		return ast.Sub
	case token.MUL:
		return ast.Mul
	case token.QUO:
		return ast.Quo
	case token.POW:
		return ast.Pow
	case token.LSS:
		return ast.Lss
	case token.LEQ:
		return ast.Leq
	case token.GTR:
		return ast.Gtr
	case token.GEQ:
		return ast.Geq
	case token.EQL:
		return ast.Eql
	case token.NEQ:
		return ast.Neq
	case token.LAND:
		return ast.LAnd
	case token.LOR:
		return ast.LOr
	}
	panic("unreachable")
}

func (p *Parser) parseUnary() ast.Expr {
	if p.tok == token.SUB {
		opPos := p.pos
		p.next()
		x := p.parseUnary()
		return &ast.Unary{OpPos: opPos, Op: ast.Neg, X: x}
	}
	if p.tok == token.ADD {
		// Unary plus is a no-op.
		p.next()
		return p.parseUnary()
	}
	return p.parsePow()
}

// parsePow handles the binding of unary minus beneath ^, so that -x^2
// parses as -(x^2) per spec.md §9.
func (p *Parser) parsePow() ast.Expr {
	base := p.parsePrimary()
	if p.tok == token.POW {
		opPos := p.pos
		p.next()
		exp := p.parseUnary()
		return &ast.Binary{OpPos: opPos, Op: ast.Pow, X: base, Y: exp}
	}
	return base
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.tok {
	case token.NUMBER:
		lit := p.lit
		pos := p.pos
		p.next()
		return &ast.Literal{ValuePos: pos, Value: parseNumber(lit)}
	case token.LPAREN:
		p.next()
		x := p.parseExpr(token.LowestPrec)
		if p.tok != token.RPAREN {
			p.errorf(p.pos, "mismatched parentheses")
			return x
		}
		p.next()
		return x
	case token.LBRACK:
		pos := p.pos
		p.next()
		if p.tok != token.NUMBER {
			p.errorf(p.pos, "expected parameter index after '['")
			return &ast.Literal{ValuePos: pos, Value: 0}
		}
		idx := int(parseNumber(p.lit))
		p.next()
		if p.tok != token.RBRACK {
			p.errorf(p.pos, "expected ']'")
			return &ast.Literal{ValuePos: pos, Value: 0}
		}
		p.next()
		return &ast.Param{BracketPos: pos, Index: idx}
	case token.IDENT:
		name := p.lit
		pos := p.pos
		p.next()
		if p.tok == token.LPAREN {
			return p.parseCall(name, pos)
		}
		if p.tok == token.LBRACK {
			p.next()
			if p.tok != token.NUMBER {
				p.errorf(p.pos, "expected index after '%s['", name)
				return &ast.Literal{ValuePos: pos, Value: 0}
			}
			idx := int(parseNumber(p.lit))
			p.next()
			if p.tok != token.RBRACK {
				p.errorf(p.pos, "expected ']'")
				return &ast.Literal{ValuePos: pos, Value: 0}
			}
			p.next()
			if name != "x" {
				p.errorf(pos, "indexed variable reference must use 'x[i]', got %q", name+"[...]")
				return &ast.Literal{ValuePos: pos, Value: 0}
			}
			if idx < 0 || idx >= len(p.variables) {
				p.errorf(pos, "variable index x[%d] out of range, have %d variables", idx, len(p.variables))
				return &ast.Literal{ValuePos: pos, Value: 0}
			}
			return &ast.Variable{NamePos: pos, Name: fmt.Sprintf("x[%d]", idx), Slot: idx}
		}
		return p.resolveIdent(name, pos)
	default:
		p.errorf(p.pos, "unexpected token %q in expression", p.tokenText())
		p.next()
		return &ast.Literal{ValuePos: p.pos, Value: 0}
	}
}

func (p *Parser) resolveIdent(name string, pos token.Pos) ast.Expr {
	if slot, ok := positionalNames[name]; ok {
		if slot >= len(p.variables) {
			p.errorf(pos, "unknown identifier %q: only %d variables declared", name, len(p.variables))
			return &ast.Literal{ValuePos: pos, Value: 0}
		}
		return &ast.Variable{NamePos: pos, Name: name, Slot: slot}
	}
	p.errorf(pos, "unknown identifier %q", name)
	return &ast.Literal{ValuePos: pos, Value: 0}
}

func (p *Parser) parseCall(name string, pos token.Pos) ast.Expr {
	arity, known := FuncArity[name]
	if !known {
		p.errorf(pos, "unknown function %q (TMath::* and other vendor-prefixed calls are rejected)", name)
	}
	p.next() // consume '('
	var args []ast.Expr
	if p.tok != token.RPAREN {
		for {
			args = append(args, p.parseExpr(token.LowestPrec))
			if p.tok != token.COMMA {
				break
			}
			p.next()
		}
	}
	if p.tok != token.RPAREN {
		p.errorf(p.pos, "mismatched parentheses in call to %q", name)
	} else {
		p.next()
	}
	if known && len(args) != arity {
		p.errorf(pos, "function %q takes %d argument(s), got %d", name, arity, len(args))
	}
	return &ast.Call{FuncPos: pos, Func: name, Args: args}
}

// parseNumber converts a scanned NUMBER literal to float64 by routing it
// through an apd.Decimal, so that scientific-notation and plain decimal
// forms inside formula expressions are read the same way. Numbers in the
// JSON document itself are decoded by encoding/json, not by this path.
func parseNumber(lit string) float64 {
	d, _, err := apd.NewFromString(lit)
	if err != nil {
		// The scanner only ever produces syntactically valid numeric
		// literals, so this path is unreachable in practice.
		return 0
	}
	f, err := d.Float64()
	if err != nil {
		// Magnitude overflowed float64; fall back to big.Float which
		// saturates to +/-Inf the same way strconv.ParseFloat would.
		bf, _, _ := big.ParseFloat(lit, 10, 64, big.ToNearestEven)
		v, _ := bf.Float64()
		return v
	}
	return f
}
