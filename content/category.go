package content

import (
	"correctionlib.dev/go/correrrors"
)

// Category dispatches on a string- or int-typed input to a map of keyed
// subtrees, falling back to Default when the key is absent, per
// spec.md §3/§4.4.
type Category struct {
	InputSlot int
	KeyIsStr  bool
	StrKeys   map[string]Content
	IntKeys   map[int64]Content
	Default   Content // nil if this category has no default
}

func (c *Category) Eval(ctx *EvalContext) (float64, error) {
	v := ctx.Inputs[c.InputSlot]
	var sub Content
	var ok bool
	if c.KeyIsStr {
		sub, ok = c.StrKeys[v.Str]
	} else {
		key := v.Int
		if v.Type == TypeReal {
			key = truncToInt(v.Real)
		}
		sub, ok = c.IntKeys[key]
	}
	if !ok {
		if c.Default != nil {
			return c.Default.Eval(ctx)
		}
		return 0, correrrors.New(correrrors.OutOfRange, "category key has no match and no default")
	}
	return sub.Eval(ctx)
}
