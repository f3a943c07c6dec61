package content

import "correctionlib.dev/go/correrrors"

// CompareOp is the comparison operator a Switch selection tests its
// input against.
type CompareOp int

const (
	OpGT CompareOp = iota
	OpLT
	OpGE
	OpLE
	OpEQ
	OpNE
)

// Selection is one `x OP value` test in a Switch node's selection list.
type Selection struct {
	InputSlot int
	Op        CompareOp
	Value     float64
	Content   Content
}

func (s Selection) matches(x float64) bool {
	switch s.Op {
	case OpGT:
		return x > s.Value
	case OpLT:
		return x < s.Value
	case OpGE:
		return x >= s.Value
	case OpLE:
		return x <= s.Value
	case OpEQ:
		return x == s.Value
	case OpNE:
		return x != s.Value
	}
	panic("content: unknown comparison op")
}

// Switch evaluates Selections in order and returns the Content of the
// first one whose `input OP value` test passes, falling back to
// Default, per spec.md §3/§4.4. A selection using `<=` or `>=` treats
// its boundary value as a match (inclusive), since that is simply what
// those operators mean; Switch applies no additional boundary policy of
// its own.
type Switch struct {
	Selections []Selection
	Default    Content // nil if this switch has no default
}

func (s *Switch) Eval(ctx *EvalContext) (float64, error) {
	for _, sel := range s.Selections {
		x := ctx.Inputs[sel.InputSlot].AsFloat()
		if sel.matches(x) {
			return sel.Content.Eval(ctx)
		}
	}
	if s.Default != nil {
		return s.Default.Eval(ctx)
	}
	return 0, correrrors.New(correrrors.OutOfRange, "switch matched no selection and has no default")
}
